package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusInterval is how often the view re-checks whether snapshots stalled.
const statusInterval = 250 * time.Millisecond

// TickMsg is sent to refresh time-based parts of the view.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends one tick message after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
