package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/remote"
)

const volumeStep = 0.05

// Model is the bubbletea model of the player screen.
type Model struct {
	qp     *playback.QueuedPlayer
	ctl    *remote.Controller
	sub    *playback.Subscription
	stderr <-chan string

	state   player.State
	banner  string
	status  string
	elapsed float64
	width   int
	height  int
}

// NewModel creates the model and subscribes to the player. stderr may be
// nil.
func NewModel(svc *Services, banner string, stderr <-chan string) Model {
	return Model{
		qp:     svc.Queue,
		ctl:    svc.Remote,
		sub:    svc.Queue.Subscribe(),
		stderr: stderr,
		state:  svc.Queue.State(),
		banner: banner,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.WatchServiceEvents(), m.WatchStderr(), TickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		if m.state.HasItem() {
			m.elapsed = m.qp.CurrentTime()
		}
		return m, TickCmd()

	case StateChangedMsg:
		m.state = msg.Current
		if msg.Current == player.Idle {
			m.elapsed = 0
		}
		return m, m.WatchServiceEvents()

	case ElapsedMsg:
		m.elapsed = msg.Seconds
		return m, m.WatchServiceEvents()

	case ItemChangedMsg:
		m.status = ""
		m.elapsed = 0
		return m, m.WatchServiceEvents()

	case QueueChangedMsg:
		return m, m.WatchServiceEvents()

	case FailedMsg:
		m.status = "Playback failed: " + msg.Err.Error()
		return m, m.WatchServiceEvents()

	case StderrMsg:
		m.status = msg.Line
		return m, m.WatchStderr()

	case ServiceClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd remote.Command
	switch msg.String() {
	case "q", "ctrl+c":
		m.sub.Close()
		return m, tea.Quit
	case " ":
		cmd = remote.TogglePlayPause{}
	case "n":
		cmd = remote.Next{}
	case "p":
		cmd = remote.Previous{}
	case "right", "l":
		cmd = remote.SkipForward{}
	case "left", "h":
		cmd = remote.SkipBackward{}
	case "s":
		cmd = remote.Stop{}
	case "+", "=":
		m.qp.SetVolume(m.qp.Volume() + volumeStep)
		return m, nil
	case "-":
		m.qp.SetVolume(m.qp.Volume() - volumeStep)
		return m, nil
	default:
		return m, nil
	}

	if st := m.ctl.Handle(cmd); st != remote.Success {
		m.status = fmt.Sprintf("%s: %s", cmd.Kind(), st)
	} else {
		m.status = ""
	}
	return m, nil
}
