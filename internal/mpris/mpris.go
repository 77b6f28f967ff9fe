//go:build linux

// Package mpris exposes the player on the session bus as an MPRIS media
// player.
package mpris

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/remote"
)

const (
	busName  = "cadence"
	identity = "Cadence"
	trackIDs = "/org/mpris/MediaPlayer2/Track/"
	noTrack  = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

// Player is the read side of the queued player the adapter reports on.
type Player interface {
	CurrentTime() float64
	NextItems() []*item.AudioItem
	PreviousItems() []*item.AudioItem
	Volume() float64
	SetVolume(level float64)
}

// Adapter serves MPRIS over D-Bus. It is a nowplaying.Sink: metadata and
// status come from the latest Info it was given.
type Adapter struct {
	server *server.Server
	player *playerAdapter
}

// Option configures an Adapter.
type Option func(*playerAdapter)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *playerAdapter) { p.log = l }
}

// New creates the adapter and starts serving in the background. Control
// methods are routed through ctl.
func New(ctl *remote.Controller, p Player, opts ...Option) (*Adapter, error) {
	if ctl == nil || p == nil {
		return nil, errors.New("mpris: nil controller or player")
	}
	pa := newPlayerAdapter(ctl, p, opts...)
	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{}, pa),
		player: pa,
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			pa.log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()
	return a, nil
}

// Update implements nowplaying.Sink.
func (a *Adapter) Update(info nowplaying.Info) {
	a.player.update(info)
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error            { return nil }
func (r *rootAdapter) Quit() error             { return nil }
func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return identity, nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctl    *remote.Controller
	player Player
	log    zerolog.Logger
	art    *artCache

	mu   sync.RWMutex
	info nowplaying.Info
}

func newPlayerAdapter(ctl *remote.Controller, p Player, opts ...Option) *playerAdapter {
	pa := &playerAdapter{
		ctl:    ctl,
		player: p,
		log:    zerolog.Nop(),
		art:    newArtCache(defaultArtDir()),
	}
	for _, opt := range opts {
		opt(pa)
	}
	return pa
}

func (p *playerAdapter) update(info nowplaying.Info) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.info = info
}

func (p *playerAdapter) current() nowplaying.Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.info
}

func (p *playerAdapter) handle(cmd remote.Command) error {
	if s := p.ctl.Handle(cmd); s != remote.Success {
		return errors.Newf("%s: %s", cmd.Kind(), s)
	}
	return nil
}

func (p *playerAdapter) Next() error      { return p.handle(remote.Next{}) }
func (p *playerAdapter) Previous() error  { return p.handle(remote.Previous{}) }
func (p *playerAdapter) Pause() error     { return p.handle(remote.Pause{}) }
func (p *playerAdapter) PlayPause() error { return p.handle(remote.TogglePlayPause{}) }
func (p *playerAdapter) Stop() error      { return p.handle(remote.Stop{}) }
func (p *playerAdapter) Play() error      { return p.handle(remote.Play{}) }

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	d := time.Duration(offset) * time.Microsecond
	switch {
	case d > 0:
		return p.handle(remote.SkipForward{Interval: d})
	case d < 0:
		return p.handle(remote.SkipBackward{Interval: -d})
	default:
		return nil
	}
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	// Stale requests for another track are ignored.
	if trackID != formatTrackID(p.current()) {
		return nil
	}
	seconds := (time.Duration(position) * time.Microsecond).Seconds()
	return p.handle(remote.ChangePlaybackPosition{Seconds: seconds})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.current().State), nil
}

func playbackStatus(s player.State) types.PlaybackStatus {
	switch s {
	case player.Playing, player.Buffering:
		return types.PlaybackStatusPlaying
	case player.Paused, player.Ready, player.Loading:
		return types.PlaybackStatusPaused
	case player.Idle:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	info := p.current()
	if !info.HasItem() {
		return types.Metadata{TrackId: noTrack}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(info)),
		Length:  types.Microseconds(secondsToDuration(info.Duration).Microseconds()),
		Title:   info.Title,
		Album:   info.Album,
	}
	if info.Artist != "" {
		meta.Artist = []string{info.Artist}
	}
	if art := p.artURL(info); art != "" {
		meta.ArtUrl = art
	}
	return meta, nil
}

func (p *playerAdapter) artURL(info nowplaying.Info) string {
	if path := FindAlbumArt(info.Locator); path != "" {
		return "file://" + path
	}
	if info.Artwork == nil {
		return ""
	}
	path, err := p.art.store(info.ItemID.String(), info.Artwork)
	if err != nil {
		p.log.Debug().Err(err).Msg("cache artwork")
		return ""
	}
	return "file://" + path
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.player.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.player.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return secondsToDuration(p.player.CurrentTime()).Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.ctl.Enabled(remote.KindNext) && len(p.player.NextItems()) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.ctl.Enabled(remote.KindPrevious) && len(p.player.PreviousItems()) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctl.Enabled(remote.KindPlay) && p.current().HasItem(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.ctl.Enabled(remote.KindPause) && p.current().HasItem(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.ctl.Enabled(remote.KindChangePlaybackPosition) && p.current().Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(info nowplaying.Info) string {
	if !info.HasItem() {
		return noTrack
	}
	return trackIDs + strings.ReplaceAll(info.ItemID.String(), "-", "")
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

var _ nowplaying.Sink = (*Adapter)(nil)
