// Package nowplaying keeps external displays in sync with what the queued
// player is doing.
package nowplaying

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/player"
)

const artworkTimeout = 5 * time.Second

// Info is a snapshot of the now-playing item and its progress.
type Info struct {
	ItemID      uuid.UUID
	Locator     string
	Title       string
	Artist      string
	Album       string
	Duration    float64
	CurrentTime float64
	Rate        float64
	State       player.State
	Artwork     *item.Artwork
}

// HasItem reports whether something is loaded.
func (i Info) HasItem() bool { return i.ItemID != uuid.Nil }

// Sink receives now-playing updates. Updates are delivered one at a time.
type Sink interface {
	Update(Info)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Info)

func (f SinkFunc) Update(i Info) { f(i) }

// Publisher pushes a fresh Info to its sinks on every state, time, seek,
// duration or current item change.
type Publisher struct {
	q    *playback.QueuedPlayer
	log  zerolog.Logger
	subs event.Subscription

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	sinks   []Sink
	artFor  uuid.UUID
	artwork *item.Artwork
	last    Info
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Publisher) { p.log = l }
}

// Attach starts publishing q's now-playing info to sinks.
func Attach(q *playback.QueuedPlayer, sinks []Sink, opts ...Option) *Publisher {
	p := &Publisher{
		q:     q,
		log:   zerolog.Nop(),
		sinks: sinks,
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(p)
	}

	pe := q.Player().Events()
	event.On(&p.subs, pe.StateChange, func(player.StateChange) { p.refresh() })
	event.On(&p.subs, pe.SecondElapsed, func(player.SecondElapsed) { p.refresh() })
	event.On(&p.subs, pe.Seek, func(player.SeekEvent) { p.refresh() })
	event.On(&p.subs, pe.UpdateDuration, func(player.UpdateDuration) { p.refresh() })
	event.On(&p.subs, q.Events().CurrentItemChange, func(playback.CurrentItemChange) { p.refresh() })
	return p
}

// AddSink adds s and sends it the latest snapshot.
func (p *Publisher) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
	s.Update(p.last)
}

// Last returns the most recently published snapshot.
func (p *Publisher) Last() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Refresh publishes a snapshot now.
func (p *Publisher) Refresh() { p.refresh() }

// Close stops publishing. Pending artwork loads are cancelled.
func (p *Publisher) Close() {
	p.subs.Close()
	p.cancel()
}

func (p *Publisher) refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil {
		return
	}
	info, cur := p.snapshot()
	info.Artwork = p.artworkLocked(cur)
	p.last = info
	for _, s := range p.sinks {
		s.Update(info)
	}
}

func (p *Publisher) snapshot() (Info, *item.AudioItem) {
	pl := p.q.Player()
	info := Info{
		State:       pl.State(),
		CurrentTime: pl.CurrentTime(),
		Duration:    pl.Duration(),
		Rate:        pl.Rate(),
	}
	cur := pl.CurrentItem()
	if cur == nil {
		cur = p.q.CurrentItem()
	}
	if cur != nil {
		info.ItemID = cur.ID
		info.Locator = cur.Locator
		info.Title = cur.DisplayTitle()
		info.Artist = cur.Artist
		info.Album = cur.Album
	}
	return info, cur
}

// artworkLocked returns the cached artwork for cur. The first call for a new
// item starts loading it in the background and returns nil; a refresh follows
// once it is loaded.
func (p *Publisher) artworkLocked(cur *item.AudioItem) *item.Artwork {
	var id uuid.UUID
	if cur != nil {
		id = cur.ID
	}
	if id == p.artFor {
		return p.artwork
	}
	p.artFor = id
	p.artwork = nil
	if cur == nil {
		return nil
	}

	go p.loadArtwork(cur)
	return nil
}

func (p *Publisher) loadArtwork(cur *item.AudioItem) {
	ctx, cancel := context.WithTimeout(p.ctx, artworkTimeout)
	defer cancel()
	art, err := cur.Artwork(ctx)
	if err != nil {
		if !errors.Is(err, item.ErrNoArtwork) {
			p.log.Debug().Err(err).Str("item", cur.ID.String()).Msg("load artwork")
		}
		return
	}

	p.mu.Lock()
	current := p.artFor == cur.ID
	if current {
		p.artwork = art
	}
	p.mu.Unlock()
	if current {
		p.refresh()
	}
}
