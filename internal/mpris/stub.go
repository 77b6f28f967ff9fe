//go:build !linux

package mpris

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/remote"
)

// Player is the read side of the queued player the adapter reports on.
type Player interface {
	CurrentTime() float64
	NextItems() []*item.AudioItem
	PreviousItems() []*item.AudioItem
	Volume() float64
	SetVolume(level float64)
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger is accepted for parity with the Linux build.
func WithLogger(zerolog.Logger) Option {
	return func(*Adapter) {}
}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *remote.Controller, _ Player, _ ...Option) (*Adapter, error) {
	return &Adapter{}, nil
}

// Update is a no-op on non-Linux platforms.
func (a *Adapter) Update(nowplaying.Info) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

// FindAlbumArt returns empty on non-Linux platforms.
func FindAlbumArt(string) string {
	return ""
}
