package engine

import (
	"math"
	"sync"
)

// SeekCall records one Seek invocation on a Mock.
type SeekCall struct {
	Seconds float64
	Token   uint64
}

// Mock is a test double for Engine.
//
// With auto-respond on (the default) it behaves like a well-mannered engine:
// Load reports ready and the duration, Play and Pause report time-control
// changes, Seek completes immediately. Turn it off to drive every signal by
// hand with Emit.
type Mock struct {
	mu sync.Mutex

	autoRespond bool
	duration    float64
	loadErr     error

	sink        Sink
	sinks       []Sink
	hasItem     bool
	timeControl TimeControl
	position    float64
	volume      float64
	closed      bool

	loadCalls  []LoadRequest
	playCalls  int
	pauseCalls int
	stopCalls  int
	seekCalls  []SeekCall
}

// NewMock creates a mock engine that auto-responds and reports a 10 second
// duration.
func NewMock() *Mock {
	return &Mock{
		autoRespond: true,
		duration:    10,
		volume:      1,
	}
}

func (m *Mock) Load(req LoadRequest, sink Sink) {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, req)
	m.sink = sink
	m.sinks = append(m.sinks, sink)
	m.hasItem = true
	m.timeControl = TimeControlPaused
	m.position = 0
	if req.InitialTime != nil {
		m.position = *req.InitialTime
	}
	auto, loadErr, duration := m.autoRespond, m.loadErr, m.duration
	m.mu.Unlock()

	if !auto {
		return
	}
	if loadErr != nil {
		sink(StatusChanged{Status: StatusFailed, Err: loadErr})
		return
	}
	sink(DurationUpdated{Seconds: duration})
	sink(StatusChanged{Status: StatusReady})
}

func (m *Mock) Play() {
	m.mu.Lock()
	m.playCalls++
	if !m.hasItem {
		m.mu.Unlock()
		return
	}
	m.timeControl = TimeControlPlaying
	sink, auto := m.sink, m.autoRespond
	m.mu.Unlock()

	if auto && sink != nil {
		sink(TimeControlChanged{TimeControl: TimeControlPlaying})
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.pauseCalls++
	if !m.hasItem {
		m.mu.Unlock()
		return
	}
	m.timeControl = TimeControlPaused
	sink, auto := m.sink, m.autoRespond
	m.mu.Unlock()

	if auto && sink != nil {
		sink(TimeControlChanged{TimeControl: TimeControlPaused})
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.hasItem = false
	m.timeControl = TimeControlPaused
	m.position = 0
	m.sink = nil
}

func (m *Mock) Seek(seconds float64, token uint64) {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, SeekCall{Seconds: seconds, Token: token})
	m.position = seconds
	sink, auto := m.sink, m.autoRespond
	m.mu.Unlock()

	if auto && sink != nil {
		sink(SeekCompleted{Token: token, Seconds: seconds, Finished: true})
	}
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasItem {
		return math.NaN()
	}
	return m.position
}

func (m *Mock) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasItem {
		return math.NaN()
	}
	return m.duration
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeControl == TimeControlPlaying {
		return 1
	}
	return 0
}

func (m *Mock) HasCurrentItem() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasItem
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sink = nil
	return nil
}

// Test helpers

// SetAutoRespond toggles automatic signal emission.
func (m *Mock) SetAutoRespond(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoRespond = on
}

// SetDuration sets the duration reported for loaded items.
func (m *Mock) SetDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = seconds
}

// SetLoadError makes auto-responding loads fail with err.
func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetPosition sets the reported playhead.
func (m *Mock) SetPosition(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = seconds
}

// Emit delivers sig to the sink of the latest load. It is a no-op when nothing
// is loaded.
func (m *Mock) Emit(sig Signal) {
	m.mu.Lock()
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink(sig)
	}
}

// Sinks returns every sink handed to Load, oldest first.
func (m *Mock) Sinks() []Sink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sink(nil), m.sinks...)
}

func (m *Mock) LoadCalls() []LoadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LoadRequest(nil), m.loadCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SeekCalls() []SeekCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeekCall(nil), m.seekCalls...)
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
