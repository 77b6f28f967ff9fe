//go:build linux

package mpris

import (
	"testing"
	"testing/synctest"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/item"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/remote"
)

var _ Player = (*playback.QueuedPlayer)(nil)

func newTestAdapter(t *testing.T) (*playerAdapter, *playback.QueuedPlayer, *engine.Mock) {
	t.Helper()
	m := engine.NewMock()
	p, err := player.New(func() (engine.Engine, error) { return m, nil })
	require.NoError(t, err)
	qp := playback.New(p)
	pa := newPlayerAdapter(remote.NewController(qp), qp)
	pa.art = newArtCache(t.TempDir())
	return pa, qp, m
}

func addItems(t *testing.T, qp *playback.QueuedPlayer, names ...string) []*item.AudioItem {
	t.Helper()
	var items []*item.AudioItem
	for _, name := range names {
		it, err := item.NewFile("/music/"+name+".mp3", item.WithTitle(name), item.WithArtwork(nil))
		require.NoError(t, err)
		items = append(items, it)
	}
	require.NoError(t, qp.AddItems(items, false))
	return items
}

func TestPlayerAdapter_Controls(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, qp, _ := newTestAdapter(t)
		defer qp.Close()
		items := addItems(t, qp, "a", "b")
		synctest.Wait()

		require.NoError(t, pa.PlayPause())
		synctest.Wait()
		assert.Equal(t, player.Playing, qp.State())

		require.NoError(t, pa.Pause())
		synctest.Wait()
		assert.Equal(t, player.Paused, qp.State())

		require.NoError(t, pa.Next())
		synctest.Wait()
		assert.Same(t, items[1], qp.CurrentItem())
		assert.Error(t, pa.Next(), "end of queue")

		require.NoError(t, pa.Previous())
		synctest.Wait()
		assert.Same(t, items[0], qp.CurrentItem())

		require.NoError(t, pa.Stop())
		synctest.Wait()
		assert.Equal(t, player.Idle, qp.State())
	})
}

func TestPlayerAdapter_Seek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, qp, m := newTestAdapter(t)
		defer qp.Close()
		addItems(t, qp, "a")
		synctest.Wait()
		m.SetPosition(2)

		require.NoError(t, pa.Seek(types.Microseconds(3_000_000)))
		require.NoError(t, pa.Seek(types.Microseconds(-10_000_000)))
		synctest.Wait()

		calls := m.SeekCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, 5.0, calls[0].Seconds)
		assert.Equal(t, 0.0, calls[1].Seconds)
	})
}

func TestPlayerAdapter_SetPosition(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, qp, m := newTestAdapter(t)
		defer qp.Close()
		items := addItems(t, qp, "a")
		synctest.Wait()
		info := nowplaying.Info{ItemID: items[0].ID, Duration: 10}
		pa.update(info)

		require.NoError(t, pa.SetPosition("/org/mpris/MediaPlayer2/Track/other", 1_000_000))
		require.NoError(t, pa.SetPosition(formatTrackID(info), 4_000_000))
		synctest.Wait()

		calls := m.SeekCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, 4.0, calls[0].Seconds)
	})
}

func TestPlayerAdapter_ControlsWithoutItem(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, qp, _ := newTestAdapter(t)
		defer qp.Close()

		assert.Error(t, pa.Play())
		assert.Error(t, pa.Pause())
		canPlay, _ := pa.CanPlay()
		assert.False(t, canPlay)
		canNext, _ := pa.CanGoNext()
		assert.False(t, canNext)
	})
}

func TestPlayerAdapter_DisabledCommand(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, qp, _ := newTestAdapter(t)
		defer qp.Close()
		addItems(t, qp, "a", "b")
		synctest.Wait()

		pa.ctl.Enable(remote.KindPlay, remote.KindPause)

		assert.Error(t, pa.Next())
		canNext, _ := pa.CanGoNext()
		assert.False(t, canNext)
		assert.Equal(t, 0, qp.CurrentIndex())
	})
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	pa := newPlayerAdapter(remote.NewController(nil), nil)
	pa.art = newArtCache(t.TempDir())

	meta, err := pa.Metadata()
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath(noTrack), meta.TrackId)

	id := uuid.MustParse("0b4f8c2e-3a6d-4e1f-9c7b-2d5e8f1a6b3c")
	pa.update(nowplaying.Info{
		ItemID:   id,
		Locator:  "/nowhere/song.mp3",
		Title:    "Song",
		Artist:   "Band",
		Album:    "Record",
		Duration: 2.5,
		State:    player.Playing,
		Artwork:  &item.Artwork{Data: []byte("jpg"), MIMEType: "image/jpeg"},
	})

	meta, err = pa.Metadata()
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/org/mpris/MediaPlayer2/Track/0b4f8c2e3a6d4e1f9c7b2d5e8f1a6b3c"), meta.TrackId)
	assert.Equal(t, types.Microseconds(2_500_000), meta.Length)
	assert.Equal(t, "Song", meta.Title)
	assert.Equal(t, []string{"Band"}, meta.Artist)
	assert.Equal(t, "Record", meta.Album)
	assert.Contains(t, meta.ArtUrl, "file://")
	assert.Contains(t, meta.ArtUrl, id.String()+".jpg")

	status, err := pa.PlaybackStatus()
	require.NoError(t, err)
	assert.Equal(t, types.PlaybackStatusPlaying, status)
}

func TestPlaybackStatus(t *testing.T) {
	tests := map[player.State]types.PlaybackStatus{
		player.Idle:      types.PlaybackStatusStopped,
		player.Loading:   types.PlaybackStatusPaused,
		player.Ready:     types.PlaybackStatusPaused,
		player.Paused:    types.PlaybackStatusPaused,
		player.Playing:   types.PlaybackStatusPlaying,
		player.Buffering: types.PlaybackStatusPlaying,
	}
	for state, want := range tests {
		assert.Equal(t, want, playbackStatus(state), state.String())
	}
}
