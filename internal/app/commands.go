package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 500 * time.Millisecond

// TickCmd schedules the next playhead refresh.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WatchServiceEvents returns a command that waits for the next player or
// queue event and converts it to a tea.Msg.
func (m Model) WatchServiceEvents() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return StateChangedMsg{Previous: e.Previous, Current: e.Current}
		case e := <-sub.Elapsed:
			return ElapsedMsg{Seconds: e.Seconds}
		case e := <-sub.ItemChanged:
			return ItemChangedMsg{Index: e.Index}
		case <-sub.QueueChanged:
			return QueueChangedMsg{}
		case e := <-sub.Failed:
			return FailedMsg{Err: e.Err}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

// WatchStderr waits for the next captured stderr line.
func (m Model) WatchStderr() tea.Cmd {
	if m.stderr == nil {
		return nil
	}
	lines := m.stderr
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg{Line: line}
	}
}
