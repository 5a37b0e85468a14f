// Package tui serves the game to terminals: every SSH session becomes a
// seated player with a Bubble Tea view of its room.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

// sessionBuffer is how many room events an SSH player may fall behind by.
const sessionBuffer = 64

// SSHServerConfig configures the terminal front end.
type SSHServerConfig struct {
	Address     string        // listen address, e.g. ":23234"
	HostKeyPath string        // generated on first start when missing; empty means ~/.coopsnake/host_key
	IdleTimeout time.Duration // zero disables the idle cutoff

	Matchmaker *multiplayer.Matchmaker
	Logger     *log.Logger
}

// SSHServer seats every interactive SSH session through the matchmaker.
type SSHServer struct {
	addr   string
	mm     *multiplayer.Matchmaker
	logger *log.Logger
	server *ssh.Server
}

// NewSSHServer builds the wish server. It does not listen yet.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	if cfg.Matchmaker == nil {
		return nil, errors.New("tui: ssh server needs a matchmaker")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	keyPath, err := hostKeyPath(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	s := &SSHServer{
		addr:   cfg.Address,
		mm:     cfg.Matchmaker,
		logger: logger.WithPrefix("ssh"),
	}

	// wish runs middleware last to first: log, require a PTY, then play.
	s.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(keyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.newPlayer),
			activeterm.Middleware(),
			s.logSessions,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: create ssh server: %w", err)
	}
	return s, nil
}

// hostKeyPath resolves the key location and makes sure its directory exists.
func hostKeyPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("tui: resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".coopsnake", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("tui: create host key directory: %w", err)
	}
	return path, nil
}

// newPlayer seats the session and returns the model Bubble Tea will run.
// The seat is released when the SSH connection goes away.
func (s *SSHServer) newPlayer(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	id := multiplayer.SessionID(fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr()))
	channel := multiplayer.NewChannelSession(id, sessionBuffer)

	seat, err := s.mm.Connect(channel)
	if err != nil {
		s.logger.Warn("no seat for session", "session", id, "err", err)
		wish.Fatalln(sess, "coop-snake is shutting down, try again later")
		return nil, nil
	}
	s.logger.Info("seated", "session", id, "room", seat.Room, "player", seat.Player)

	go func() {
		<-sess.Context().Done()
		channel.Close()
		s.mm.Disconnect(seat)
	}()

	return NewPlayerModel(seat, channel, s.mm), []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *SSHServer) logSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Debug("connect", "user", sess.User(), "remote", sess.RemoteAddr().String())
		next(sess)
		s.logger.Info("disconnect",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe blocks until Shutdown. A clean shutdown returns nil.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting sessions and waits for open ones up to ctx.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.addr
}
