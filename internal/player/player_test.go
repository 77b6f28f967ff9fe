package player

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/event"
	"github.com/llehouerou/cadence/internal/item"
)

type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func record[T any](bus *event.Bus[T]) *recorder[T] {
	r := &recorder[T]{}
	bus.Subscribe(func(e T) {
		r.mu.Lock()
		r.got = append(r.got, e)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

type mockFactory struct {
	mu    sync.Mutex
	mocks []*engine.Mock
	setup func(*engine.Mock)
}

func (f *mockFactory) build() (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := engine.NewMock()
	if f.setup != nil {
		f.setup(m)
	}
	f.mocks = append(f.mocks, m)
	return m, nil
}

func (f *mockFactory) get(i int) *engine.Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mocks[i]
}

func (f *mockFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mocks)
}

func newTestPlayer(t *testing.T, setup func(*engine.Mock)) (*Player, *mockFactory) {
	t.Helper()
	f := &mockFactory{setup: setup}
	p, err := New(f.build)
	require.NoError(t, err)
	return p, f
}

func testItem(t *testing.T, name string) *item.AudioItem {
	t.Helper()
	it, err := item.NewFile("/music/"+name+".mp3", item.WithArtwork(nil))
	require.NoError(t, err)
	return it
}

func states(changes []StateChange) []State {
	out := make([]State, len(changes))
	for i, c := range changes {
		out[i] = c.Current
	}
	return out
}

func TestNew_Fresh(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, nil)

		assert.Equal(t, Idle, p.State())
		assert.Zero(t, p.CurrentTime())
		assert.Zero(t, p.Duration())
		assert.Zero(t, p.Rate())
		assert.Nil(t, p.CurrentItem())
		synctest.Wait()
	})
}

func TestNew_NilFactory(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestLoad_WithoutPlayWhenReady_StopsAtReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		changes := record(p.Events().StateChange)
		durations := record(p.Events().UpdateDuration)
		it := testItem(t, "a")

		require.NoError(t, p.Load(it, false))
		synctest.Wait()

		assert.Equal(t, Ready, p.State())
		assert.Equal(t, []State{Loading, Ready}, states(changes.all()))
		assert.NotContains(t, states(changes.all()), Playing)
		assert.Equal(t, []UpdateDuration{{Seconds: 10}}, durations.all())
		assert.Equal(t, 10.0, p.Duration())
		assert.Same(t, it, p.CurrentItem())
		assert.Equal(t, 0, f.get(0).PlayCalls())
	})
}

func TestLoad_WithPlayWhenReady_Plays(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		changes := record(p.Events().StateChange)

		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		assert.Equal(t, Playing, p.State())
		assert.Equal(t, []State{Loading, Ready, Playing}, states(changes.all()))
		assert.Equal(t, 1, f.get(0).PlayCalls())
		assert.Equal(t, 1.0, p.Rate())

		calls := f.get(0).LoadCalls()
		require.Len(t, calls, 1)
		assert.True(t, calls[0].PlayWhenReady)
	})
}

func TestLoad_InvalidItem(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, nil)

		err := p.Load(nil, true)
		assert.ErrorIs(t, err, item.ErrInvalidSourceLocator)

		err = p.Load(&item.AudioItem{Locator: "http://host/x", Kind: item.KindFile}, true)
		assert.ErrorIs(t, err, item.ErrInvalidSourceLocator)
		assert.Equal(t, Idle, p.State())
		synctest.Wait()
	})
}

func TestLoad_Options(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		headers := map[string]string{"Authorization": "token"}

		require.NoError(t, p.Load(testItem(t, "a"), false, WithInitialTime(42), WithHeaders(headers)))
		synctest.Wait()

		calls := f.get(0).LoadCalls()
		require.Len(t, calls, 1)
		require.NotNil(t, calls[0].InitialTime)
		assert.Equal(t, 42.0, *calls[0].InitialTime)
		assert.Equal(t, headers, calls[0].Headers)
		assert.Equal(t, 42.0, p.CurrentTime())
	})
}

func TestLoad_DropsSignalsFromPreviousLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		first := testItem(t, "a")
		second := testItem(t, "b")

		require.NoError(t, p.Load(first, true))
		synctest.Wait()
		require.NoError(t, p.Load(second, true))
		synctest.Wait()

		sinks := f.get(0).Sinks()
		require.Len(t, sinks, 2)
		sinks[0](engine.StatusChanged{Status: engine.StatusReady})
		sinks[0](engine.ItemDidPlayToEnd{})
		synctest.Wait()

		assert.Equal(t, Loading, p.State())
		assert.Same(t, second, p.CurrentItem())
		assert.Equal(t, 0, f.get(0).PlayCalls())

		sinks[1](engine.StatusChanged{Status: engine.StatusReady})
		synctest.Wait()
		assert.Equal(t, Ready, p.State())
		assert.Equal(t, 1, f.get(0).PlayCalls())
	})
}

func TestStop_ResetsToIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		p.Stop()
		synctest.Wait()

		assert.Equal(t, Idle, p.State())
		assert.Nil(t, p.CurrentItem())
		assert.Zero(t, p.CurrentTime())
		assert.Zero(t, p.Duration())
		assert.Zero(t, p.Rate())
		assert.Equal(t, 1, f.get(0).StopCalls())
		assert.Equal(t, 1, f.get(0).PauseCalls())

		p.Stop()
		synctest.Wait()
		assert.Equal(t, 1, f.get(0).StopCalls())
	})
}

func TestControls_WithoutItem(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, nil)

		require.ErrorIs(t, p.Play(), ErrNoLoadedItem)
		require.ErrorIs(t, p.Pause(), ErrNoLoadedItem)
		require.ErrorIs(t, p.TogglePlaying(), ErrNoLoadedItem)
		_, err := p.Seek(3)
		require.ErrorIs(t, err, ErrNoLoadedItem)
		synctest.Wait()
	})
}

func TestPause_Twice_NoDuplicateEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, nil)
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()
		changes := record(p.Events().StateChange)

		require.NoError(t, p.Pause())
		synctest.Wait()
		require.NoError(t, p.Pause())
		synctest.Wait()

		assert.Equal(t, Paused, p.State())
		assert.Equal(t, []StateChange{{Previous: Playing, Current: Paused}}, changes.all())
	})
}

func TestTogglePlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, nil)
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		require.NoError(t, p.TogglePlaying())
		synctest.Wait()
		assert.Equal(t, Paused, p.State())

		require.NoError(t, p.TogglePlaying())
		synctest.Wait()
		assert.Equal(t, Playing, p.State())
	})
}

func TestPlayBeforeReady_UpdatesIntent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()

		require.NoError(t, p.Play())
		synctest.Wait()
		assert.True(t, p.PlayWhenReady())
		assert.Equal(t, 0, f.get(0).PlayCalls())

		f.get(0).Emit(engine.StatusChanged{Status: engine.StatusReady})
		synctest.Wait()
		assert.Equal(t, 1, f.get(0).PlayCalls())
	})
}

func TestPauseBeforeReady_CancelsIntent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		require.NoError(t, p.TogglePlaying())
		f.get(0).Emit(engine.StatusChanged{Status: engine.StatusReady})
		synctest.Wait()

		assert.False(t, p.PlayWhenReady())
		assert.Equal(t, Ready, p.State())
		assert.Equal(t, 0, f.get(0).PlayCalls())
	})
}

func TestTimeControl_Mapping(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()
		m := f.get(0)

		m.Emit(engine.TimeControlChanged{TimeControl: engine.TimeControlPaused})
		synctest.Wait()
		assert.Equal(t, Loading, p.State(), "paused before ready")

		m.Emit(engine.TimeControlChanged{TimeControl: engine.TimeControlWaitingToPlayAtRate})
		synctest.Wait()
		assert.Equal(t, Loading, p.State(), "waiting before ready")

		m.Emit(engine.StatusChanged{Status: engine.StatusReady})
		m.Emit(engine.TimeControlChanged{TimeControl: engine.TimeControlWaitingToPlayAtRate})
		synctest.Wait()
		assert.Equal(t, Buffering, p.State())

		m.Emit(engine.TimeControlChanged{TimeControl: engine.TimeControlPlaying})
		synctest.Wait()
		assert.Equal(t, Playing, p.State())

		m.Emit(engine.TimeControlChanged{TimeControl: engine.TimeControlPaused})
		synctest.Wait()
		assert.Equal(t, Paused, p.State())
	})
}

func TestBoundaryReached_ForcesPlaying(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		f.get(0).Emit(engine.BoundaryReached{})
		synctest.Wait()

		assert.Equal(t, Playing, p.State())
	})
}

func TestSeek_Clamps(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		seeks := record(p.Events().Seek)
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()

		tok1, err := p.Seek(-5)
		require.NoError(t, err)
		synctest.Wait()
		tok2, err := p.Seek(999)
		require.NoError(t, err)
		synctest.Wait()

		assert.Less(t, tok1, tok2)
		assert.Equal(t, []engine.SeekCall{
			{Seconds: 0, Token: tok1},
			{Seconds: 10, Token: tok2},
		}, f.get(0).SeekCalls())
		assert.Equal(t, []SeekEvent{
			{Token: tok1, Seconds: 0, Finished: true, Latest: true},
			{Token: tok2, Seconds: 10, Finished: true, Latest: true},
		}, seeks.all())
	})
}

func TestSeek_SupersededIsNotLatest(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		seeks := record(p.Events().Seek)
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()

		tok1, _ := p.Seek(2.4)
		tok2, _ := p.Seek(5.6)
		synctest.Wait()
		f.get(0).Emit(engine.SeekCompleted{Token: tok1, Seconds: 2.4, Finished: false})
		f.get(0).Emit(engine.SeekCompleted{Token: tok2, Seconds: 5.6, Finished: true})
		synctest.Wait()

		assert.Equal(t, []SeekEvent{
			{Token: tok1, Seconds: 2, Finished: false, Latest: false},
			{Token: tok2, Seconds: 6, Finished: true, Latest: true},
		}, seeks.all())
	})
}

// stallingEngine blocks in Seek until release is closed, holding up every
// command queued behind it.
type stallingEngine struct {
	*engine.Mock
	release chan struct{}
}

func (e *stallingEngine) Seek(seconds float64, token uint64) {
	<-e.release
	e.Mock.Seek(seconds, token)
}

func TestLoad_PendingLoadHidesPreviousItemTiming(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := engine.NewMock()
		eng := &stallingEngine{Mock: m, release: make(chan struct{})}
		p, err := New(func() (engine.Engine, error) { return eng, nil })
		require.NoError(t, err)

		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()
		m.SetPosition(123)
		assert.Equal(t, 123.0, p.CurrentTime())

		_, err = p.Seek(5)
		require.NoError(t, err)
		b := testItem(t, "b")
		require.NoError(t, p.Load(b, false))
		synctest.Wait()

		assert.Equal(t, Loading, p.State())
		assert.Same(t, b, p.CurrentItem())
		assert.Zero(t, p.CurrentTime(), "engine still holds the previous item")
		assert.Zero(t, p.Duration())

		close(eng.release)
		synctest.Wait()
		assert.Equal(t, Ready, p.State())
		assert.Zero(t, p.CurrentTime())
		assert.Equal(t, 10.0, p.Duration())
		require.NoError(t, p.Close())
	})
}

func TestSeek_ClampsToEngineDurationBeforeUpdate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()
		require.Equal(t, 10.0, p.Duration(), "falls back to the engine once it has the load")

		tok, err := p.Seek(999)
		require.NoError(t, err)
		synctest.Wait()

		assert.Equal(t, []engine.SeekCall{{Seconds: 10, Token: tok}}, f.get(0).SeekCalls())
	})
}

func TestTogglePlaying_BeforeReadyFlipsIntent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, func(m *engine.Mock) { m.SetAutoRespond(false) })
		require.NoError(t, p.Load(testItem(t, "a"), false))
		synctest.Wait()

		require.NoError(t, p.TogglePlaying())
		assert.True(t, p.PlayWhenReady())
		require.NoError(t, p.TogglePlaying())
		assert.False(t, p.PlayWhenReady())
		synctest.Wait()
		assert.Zero(t, f.get(0).PlayCalls())
		assert.Zero(t, f.get(0).PauseCalls())
	})
}

func TestItemDidComplete(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		completed := record(p.Events().ItemDidComplete)
		it := testItem(t, "a")
		require.NoError(t, p.Load(it, true))
		synctest.Wait()

		f.get(0).Emit(engine.ItemDidPlayToEnd{})
		synctest.Wait()

		require.Len(t, completed.all(), 1)
		assert.Same(t, it, completed.all()[0].Item)
		assert.Equal(t, Playing, p.State())
	})
}

func TestPeriodicTime_PublishesSecondElapsed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		ticks := record(p.Events().SecondElapsed)
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		f.get(0).Emit(engine.PeriodicTime{Seconds: 1})
		f.get(0).Emit(engine.PeriodicTime{Seconds: 2})
		synctest.Wait()

		assert.Equal(t, []SecondElapsed{{Seconds: 1}, {Seconds: 2}}, ticks.all())
	})
}

func TestFailure_BeforeReady_GoesIdleAndRecreatesEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		boom := errors.New("boom")
		p, f := newTestPlayer(t, nil)
		f.get(0).SetLoadError(boom)
		fails := record(p.Events().Fail)
		recreated := record(p.Events().EngineRecreated)
		it := testItem(t, "a")

		require.NoError(t, p.Load(it, true))
		synctest.Wait()

		assert.Equal(t, Idle, p.State())
		assert.Nil(t, p.CurrentItem())
		require.Len(t, fails.all(), 1)
		got := fails.all()[0]
		assert.Same(t, it, got.Item)
		require.ErrorIs(t, got.Err, ErrEngineFailure)
		require.ErrorIs(t, got.Err, boom)
		var ee *EngineError
		require.ErrorAs(t, got.Err, &ee)
		assert.True(t, ee.BeforeReady)

		require.NoError(t, p.Load(it, true))
		synctest.Wait()

		assert.Equal(t, 2, f.count())
		assert.True(t, f.get(0).Closed())
		assert.Len(t, recreated.all(), 1)
		assert.Equal(t, Playing, p.State())
		assert.Len(t, f.get(1).LoadCalls(), 1)
	})
}

func TestFailure_AfterReady_KeepsState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		fails := record(p.Events().Fail)
		it := testItem(t, "a")
		require.NoError(t, p.Load(it, false))
		synctest.Wait()

		f.get(0).Emit(engine.Failed{Err: errors.New("network lost")})
		synctest.Wait()

		assert.Equal(t, Ready, p.State())
		assert.Same(t, it, p.CurrentItem())
		require.Len(t, fails.all(), 1)
		assert.Same(t, it, fails.all()[0].Item)
		assert.ErrorIs(t, fails.all()[0].Err, ErrEngineFailure)
	})
}

func TestVolume(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)

		p.SetVolume(1.5)
		assert.Equal(t, 1.0, p.Volume())
		p.SetVolume(0.25)
		synctest.Wait()

		assert.Equal(t, 0.25, p.Volume())
		assert.Equal(t, 0.25, f.get(0).Volume())
	})
}

func TestClose(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, f := newTestPlayer(t, nil)
		require.NoError(t, p.Load(testItem(t, "a"), true))
		synctest.Wait()

		require.NoError(t, p.Close())
		require.NoError(t, p.Close())

		assert.True(t, f.get(0).Closed())
		assert.Equal(t, Idle, p.State())
		assert.ErrorIs(t, p.Load(testItem(t, "b"), true), ErrClosed)
		synctest.Wait()
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Loading, "loading"},
		{Buffering, "buffering"},
		{Ready, "ready"},
		{Playing, "playing"},
		{Paused, "paused"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
