package app

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"

	"github.com/llehouerou/cadence/internal/beepengine"
	"github.com/llehouerou/cadence/internal/item"
)

// ItemsFromArgs turns command-line arguments into queue items. URLs become
// stream items, directories are expanded to their playable files in name
// order, and files get their title, artist and album from their tags.
func ItemsFromArgs(args []string) ([]*item.AudioItem, error) {
	var items []*item.AudioItem
	for _, arg := range args {
		if isURL(arg) {
			it, err := item.NewStream(arg)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", arg)
		}
		if !info.IsDir() {
			it, err := fileItem(arg)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			continue
		}

		dirItems, err := dirItems(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, dirItems...)
	}
	return items, nil
}

func dirItems(dir string) ([]*item.AudioItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && beepengine.Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	items := make([]*item.AudioItem, 0, len(names))
	for _, name := range names {
		it, err := fileItem(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func fileItem(path string) (*item.AudioItem, error) {
	return item.NewFile(path, tagOptions(path)...)
}

// tagOptions reads the file tags. Unreadable tags yield no options.
func tagOptions(path string) []item.Option {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	var opts []item.Option
	if t := strings.TrimSpace(m.Title()); t != "" {
		opts = append(opts, item.WithTitle(t))
	}
	if a := strings.TrimSpace(m.Artist()); a != "" {
		opts = append(opts, item.WithArtist(a))
	}
	if a := strings.TrimSpace(m.Album()); a != "" {
		opts = append(opts, item.WithAlbum(a))
	}
	return opts
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
