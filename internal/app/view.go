package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/cadence/internal/player"
)

var playerBarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var (
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// maxQueueLines bounds the queue listing when the height is unknown.
const maxQueueLines = 10

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(m.banner))
	b.WriteString("\n\n")
	b.WriteString(m.renderQueue())
	b.WriteString("\n")
	b.WriteString(m.renderPlayerBar())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("space play/pause  n/p next/prev  ←/→ skip  +/- volume  s stop  q quit"))
	return b.String()
}

func (m Model) renderQueue() string {
	items := m.qp.Items()
	if len(items) == 0 {
		return dimStyle.Render("  (empty)") + "\n"
	}
	cur := m.qp.CurrentIndex()

	lines := maxQueueLines
	if m.height > 0 {
		// banner, blank line, bar (3), status, help
		lines = max(m.height-7, 1)
	}
	start := 0
	if len(items) > lines {
		start = min(max(cur-lines/2, 0), len(items)-lines)
	}
	end := min(start+lines, len(items))

	var b strings.Builder
	for i := start; i < end; i++ {
		it := items[i]
		line := fmt.Sprintf("%3d. %s", i+1, it.DisplayTitle())
		if it.Artist != "" {
			line += " - " + it.Artist
		}
		if i == cur {
			b.WriteString(currentStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderPlayerBar() string {
	it := m.qp.CurrentItem()
	title := "Nothing playing"
	if it != nil {
		title = it.DisplayTitle()
		if it.Artist != "" {
			title = it.Artist + " - " + title
		}
	}

	left := fmt.Sprintf(" %s  %s", stateIcon(m.state), title)
	right := fmt.Sprintf("%s / %s  vol %d%% ",
		formatDuration(secondsDuration(m.elapsed)),
		formatDuration(secondsDuration(m.qp.Duration())),
		int(math.Round(m.qp.Volume()*100)))

	innerWidth := max(m.width-2, lipgloss.Width(left)+lipgloss.Width(right)+2)
	padding := max(innerWidth-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return playerBarStyle.Width(innerWidth).Render(left + strings.Repeat(" ", padding) + right)
}

func stateIcon(s player.State) string {
	switch s {
	case player.Playing:
		return "▶"
	case player.Paused, player.Ready:
		return "⏸"
	case player.Loading, player.Buffering:
		return "…"
	default:
		return "■"
	}
}

func secondsDuration(s float64) time.Duration {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
