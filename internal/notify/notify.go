// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/mpris"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/player"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// ErrUnavailable is returned by New when no notification daemon can be
// reached.
var ErrUnavailable = errors.New("notifications unavailable")

// trackTimeout is how long a track notification stays up, in ms.
const trackTimeout = 4000

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// TrackNotifier announces each new item once it starts playing. It is a
// nowplaying.Sink.
type TrackNotifier struct {
	n   Notifier
	log zerolog.Logger

	mu     sync.Mutex
	shown  uuid.UUID
	lastID uint32
}

// NewTrackNotifier sends track notifications through n.
func NewTrackNotifier(n Notifier, log zerolog.Logger) *TrackNotifier {
	return &TrackNotifier{n: n, log: log}
}

func (t *TrackNotifier) Update(info nowplaying.Info) {
	if !info.HasItem() || info.State != player.Playing {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if info.ItemID == t.shown {
		return
	}
	t.shown = info.ItemID

	id, err := t.n.Notify(trackNotification(info, t.lastID))
	if err != nil {
		t.log.Debug().Err(err).Msg("track notification")
		return
	}
	t.lastID = id
}

func trackNotification(info nowplaying.Info, replaces uint32) Notification {
	title := info.Title
	if title == "" {
		title = info.Locator
	}
	body := info.Artist
	if info.Album != "" {
		if body != "" {
			body += " - "
		}
		body += info.Album
	}
	return Notification{
		Title:      title,
		Body:       body,
		Icon:       mpris.FindAlbumArt(info.Locator),
		Timeout:    trackTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}
}

var _ nowplaying.Sink = (*TrackNotifier)(nil)
