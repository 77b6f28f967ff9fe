// Package item defines the audio items the player loads and the queue orders.
package item

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrInvalidSourceLocator is returned for a malformed load target.
var ErrInvalidSourceLocator = errors.New("invalid source locator")

// SourceKind tells the engine how to reach an item's audio.
type SourceKind int

const (
	KindFile SourceKind = iota
	KindStream
)

// String returns the kind name.
func (k SourceKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// PitchAlgorithm is a processing hint passed through to the engine.
type PitchAlgorithm int

const (
	PitchLowQualityZeroLatency PitchAlgorithm = iota
	PitchTimeDomain
	PitchSpectral
	PitchVarispeed
)

// AudioItem is an immutable description of something playable.
//
// Construct it with NewFile, NewStream or New; the zero value is not valid.
// Items are passed by pointer but never mutated after construction, so a
// pointer can be shared between the queue and the engine.
type AudioItem struct {
	ID      uuid.UUID
	Locator string
	Kind    SourceKind
	Title   string
	Artist  string
	Album   string
	Pitch   PitchAlgorithm

	artwork ArtworkLoader
}

// Option customizes an AudioItem at construction.
type Option func(*AudioItem)

// WithTitle sets the display title.
func WithTitle(title string) Option { return func(a *AudioItem) { a.Title = title } }

// WithArtist sets the display artist.
func WithArtist(artist string) Option { return func(a *AudioItem) { a.Artist = artist } }

// WithAlbum sets the display album.
func WithAlbum(album string) Option { return func(a *AudioItem) { a.Album = album } }

// WithPitch sets the pitch processing hint.
func WithPitch(p PitchAlgorithm) Option { return func(a *AudioItem) { a.Pitch = p } }

// WithArtwork replaces the default artwork loader.
func WithArtwork(l ArtworkLoader) Option { return func(a *AudioItem) { a.artwork = l } }

// WithID forces the item identity, used when restoring a saved queue.
func WithID(id uuid.UUID) Option { return func(a *AudioItem) { a.ID = id } }

// New validates locator for kind and builds an item.
func New(locator string, kind SourceKind, opts ...Option) (*AudioItem, error) {
	normalized, err := ValidateLocator(locator, kind)
	if err != nil {
		return nil, err
	}
	a := &AudioItem{
		ID:      uuid.New(),
		Locator: normalized,
		Kind:    kind,
	}
	if kind == KindFile {
		a.artwork = EmbeddedArtwork(normalized)
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Title == "" && kind == KindFile {
		a.Title = filepath.Base(normalized)
	}
	return a, nil
}

// NewFile builds a file item.
func NewFile(path string, opts ...Option) (*AudioItem, error) {
	return New(path, KindFile, opts...)
}

// NewStream builds a stream item.
func NewStream(rawURL string, opts ...Option) (*AudioItem, error) {
	return New(rawURL, KindStream, opts...)
}

// ValidateLocator checks that locator can be loaded as kind and returns the
// form the engine should receive. File locators may be plain paths or
// file:// URLs and are returned as paths; stream locators must be absolute
// URLs with a host.
func ValidateLocator(locator string, kind SourceKind) (string, error) {
	if strings.TrimSpace(locator) == "" {
		return "", errors.Wrap(ErrInvalidSourceLocator, "empty locator")
	}

	switch kind {
	case KindFile:
		if strings.HasPrefix(locator, "file://") {
			u, err := url.Parse(locator)
			if err != nil || u.Path == "" {
				return "", errors.Wrapf(ErrInvalidSourceLocator, "%q", locator)
			}
			return filepath.FromSlash(u.Path), nil
		}
		if strings.Contains(locator, "://") {
			return "", errors.Wrapf(ErrInvalidSourceLocator, "%q is not a file path", locator)
		}
		return expandPath(locator), nil
	case KindStream:
		u, err := url.Parse(locator)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", errors.Wrapf(ErrInvalidSourceLocator, "%q", locator)
		}
		return u.String(), nil
	default:
		return "", errors.Wrapf(ErrInvalidSourceLocator, "unknown source kind %d", kind)
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Artwork returns the item's artwork, loading it on demand.
// Returns ErrNoArtwork when the item has none.
func (a *AudioItem) Artwork(ctx context.Context) (*Artwork, error) {
	if a.artwork == nil {
		return nil, ErrNoArtwork
	}
	return a.artwork(ctx)
}

// DisplayTitle returns the title, falling back to the locator.
func (a *AudioItem) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Locator
}
