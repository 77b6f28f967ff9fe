package item

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
)

// ErrNoArtwork is returned when an item has no image.
var ErrNoArtwork = errors.New("no artwork")

// Artwork is raw image data with its MIME type.
type Artwork struct {
	Data     []byte
	MIMEType string
}

// ArtworkLoader fetches artwork lazily.
type ArtworkLoader func(ctx context.Context) (*Artwork, error)

// StaticArtwork returns a loader that always yields art.
func StaticArtwork(art *Artwork) ArtworkLoader {
	return func(context.Context) (*Artwork, error) {
		if art == nil || len(art.Data) == 0 {
			return nil, ErrNoArtwork
		}
		return art, nil
	}
}

// EmbeddedArtwork returns a loader reading the picture embedded in the audio
// file at path.
func EmbeddedArtwork(path string) ArtworkLoader {
	return func(ctx context.Context) (*Artwork, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open audio file")
		}
		defer f.Close()

		m, err := tag.ReadFrom(f)
		if err != nil {
			if errors.Is(err, tag.ErrNoTagsFound) {
				return nil, ErrNoArtwork
			}
			return nil, errors.Wrap(err, "read tags")
		}

		pic := m.Picture()
		if pic == nil || len(pic.Data) == 0 {
			return nil, ErrNoArtwork
		}
		return &Artwork{Data: pic.Data, MIMEType: pic.MIMEType}, nil
	}
}
