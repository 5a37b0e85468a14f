package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/game"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

// staleAfter is how long without a snapshot before the view warns.
const staleAfter = time.Second

// IntentSender is the part of the matchmaker the player view needs.
type IntentSender interface {
	RecordIntent(seat multiplayer.Seat, intent core.Intent) bool
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	voteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// PlayerModel is the Bubble Tea model of one seated SSH player. It renders
// the room's snapshots and turns key presses into intents.
type PlayerModel struct {
	session *multiplayer.ChannelSession
	sender  IntentSender
	seat    multiplayer.Seat

	keys KeyMap
	help help.Model

	screen   *core.Screen
	snapshot game.Snapshot
	hasSnap  bool
	lastSnap time.Time
	lastVote core.Intent
	voted    bool
	now      func() time.Time

	width    int
	height   int
	closed   bool
	quitting bool
}

// NewPlayerModel creates the view for a session already seated at seat.
func NewPlayerModel(seat multiplayer.Seat, session *multiplayer.ChannelSession, sender IntentSender) PlayerModel {
	return PlayerModel{
		session: session,
		sender:  sender,
		seat:    seat,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		screen:  core.NewScreen(0, 0),
		now:     time.Now,
	}
}

// Init starts listening for room events.
func (m PlayerModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tickCmd(statusInterval))
}

// waitForEvent returns a command that waits for the next room event.
// It returns nil once the session has ended.
func (m PlayerModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-m.session.Events():
			return evt
		case <-m.session.Done():
			return nil
		}
	}
}

// Update handles messages.
func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.closed {
			return m, nil
		}
		return m, tickCmd(statusInterval)

	case multiplayer.JoinedEvent:
		return m, m.waitForEvent()

	case multiplayer.SnapshotEvent:
		m.snapshot = msg.Snapshot
		m.hasSnap = true
		m.lastSnap = m.now()
		return m, m.waitForEvent()

	case multiplayer.RoomClosedEvent:
		// The room is gone for good; end the program so the SSH session
		// closes instead of holding server shutdown open.
		m.closed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PlayerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.closed {
		return m, nil
	}
	if intent, ok := m.keys.Intent(msg); ok {
		m.sender.RecordIntent(m.seat, intent)
		m.lastVote = intent
		m.voted = true
	}
	return m, nil
}

// View renders the field, a status line and the key help.
func (m PlayerModel) View() string {
	if m.quitting {
		return ""
	}

	var board string
	if m.hasSnap {
		DrawSnapshot(m.screen, m.snapshot)
		board = RenderScreen(m.screen)
	} else {
		board = statusStyle.Render("waiting for the first tick...")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		board,
		m.statusLine(),
		m.help.View(m.keys),
	)

	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m PlayerModel) statusLine() string {
	switch {
	case m.closed:
		return warnStyle.Render("room closed by the server")
	case m.hasSnap && m.now().Sub(m.lastSnap) > staleAfter:
		return warnStyle.Render("no updates from the server...")
	}

	vote := "none"
	if m.voted {
		vote = m.lastVote.String()
	}
	room := string(m.seat.Room)
	if len(room) > 8 {
		room = room[:8]
	}
	return statusStyle.Render(fmt.Sprintf("room %s  your vote ", room)) + voteStyle.Render(vote)
}

// Quitting reports whether the player asked to leave.
func (m PlayerModel) Quitting() bool {
	return m.quitting
}
