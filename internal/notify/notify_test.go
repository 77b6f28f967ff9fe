package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/player"
)

type fakeNotifier struct {
	sent   []Notification
	nextID uint32
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(uint32) error { return nil }

func playing(id uuid.UUID, title string) nowplaying.Info {
	return nowplaying.Info{
		ItemID:  id,
		Locator: "/music/" + title + ".mp3",
		Title:   title,
		Artist:  "Artist",
		Album:   "Album",
		State:   player.Playing,
	}
}

func TestTrackNotifier_OncePerItem(t *testing.T) {
	f := &fakeNotifier{}
	n := NewTrackNotifier(f, zerolog.Nop())
	a, b := uuid.New(), uuid.New()

	n.Update(playing(a, "one"))
	n.Update(playing(a, "one"))
	n.Update(playing(b, "two"))

	require.Len(t, f.sent, 2)
	assert.Equal(t, "one", f.sent[0].Title)
	assert.Equal(t, "Artist - Album", f.sent[0].Body)
	assert.Zero(t, f.sent[0].ReplacesID)
	assert.Equal(t, "two", f.sent[1].Title)
	assert.Equal(t, uint32(1), f.sent[1].ReplacesID, "replaces the previous track notification")
}

func TestTrackNotifier_IgnoresNotPlaying(t *testing.T) {
	f := &fakeNotifier{}
	n := NewTrackNotifier(f, zerolog.Nop())

	info := playing(uuid.New(), "one")
	info.State = player.Paused
	n.Update(info)
	n.Update(nowplaying.Info{State: player.Playing})

	assert.Empty(t, f.sent)

	info.State = player.Playing
	n.Update(info)
	assert.Len(t, f.sent, 1)
}

func TestTrackNotification_Fallbacks(t *testing.T) {
	got := trackNotification(nowplaying.Info{Locator: "/x/song.mp3", Album: "Album"}, 7)
	assert.Equal(t, "/x/song.mp3", got.Title)
	assert.Equal(t, "Album", got.Body)
	assert.Equal(t, uint32(7), got.ReplacesID)
	assert.Equal(t, UrgencyLow, got.Urgency)
}

func TestUrgencyValues(t *testing.T) {
	assert.Equal(t, Urgency(0), UrgencyLow)
	assert.Equal(t, Urgency(1), UrgencyNormal)
	assert.Equal(t, Urgency(2), UrgencyCritical)
}
