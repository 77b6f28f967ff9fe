//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/llehouerou/cadence/internal/item"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func defaultArtDir() string {
	return filepath.Join(os.TempDir(), "cadence-art")
}

// artCache writes embedded artwork to files so it can be handed out as a
// file:// URL.
type artCache struct {
	dir string

	mu      sync.Mutex
	written map[string]string
}

func newArtCache(dir string) *artCache {
	return &artCache{dir: dir, written: make(map[string]string)}
}

// store writes art under key once and returns its path.
func (c *artCache) store(key string, art *item.Artwork) (string, error) {
	if art == nil || len(art.Data) == 0 {
		return "", item.ErrNoArtwork
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if path, ok := c.written[key]; ok {
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return "", errors.Wrap(err, "create art dir")
	}
	path := filepath.Join(c.dir, key+artExt(art.MIMEType))
	if err := os.WriteFile(path, art.Data, 0o600); err != nil {
		return "", errors.Wrap(err, "write art")
	}
	c.written[key] = path
	return path, nil
}

func artExt(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
