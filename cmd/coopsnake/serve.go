package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coop-snake/internal/config"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
	"github.com/vovakirdan/coop-snake/internal/platform/tui"
	"github.com/vovakirdan/coop-snake/internal/platform/web"
)

const shutdownTimeout = 10 * time.Second

var (
	flagWSAddr  string
	flagSSHAddr string
	flagHostKey string
	flagNoSSH   bool
	flagSeed    int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game servers",
	Long: `Start the WebSocket server and, unless disabled, the SSH server.

Every connection is seated in the first room with a free seat. A room
starts ticking when it is created and is torn down when its last player
leaves.

Endpoints:
  GET /ws?codec=json|msgpack   - Game connection
  GET /health                  - Liveness check
  GET /stats                   - Room and player counts

Examples:
  coopsnake serve                        # WebSocket on :4000, SSH on :23234
  coopsnake serve --ws :8080 --no-ssh    # WebSocket only
  coopsnake serve --seed 42              # Reproducible fruit placement

Terminal players connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "WebSocket server address (host:port)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (auto-generated if missing)")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Disable the SSH server")
	serveCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
}

// applyServeFlags overrides the loaded config with explicitly set flags.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ws") {
		cfg.Server.WSAddr = flagWSAddr
	}
	if flags.Changed("ssh") {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagNoSSH {
		cfg.Server.SSHEnabled = false
	}
	if flags.Changed("seed") {
		cfg.Game.Seed = flagSeed
	}
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "coopsnake",
	})
	logger.SetLevel(lvl)
	return logger, nil
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyServeFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	mm := multiplayer.NewMatchmaker(cfg.Rooms(), logger)

	httpServer := web.NewServer(web.ServerConfig{
		Addr:       cfg.Server.WSAddr,
		Matchmaker: mm,
		Logger:     logger,
	})

	var sshServer *tui.SSHServer
	if cfg.Server.SSHEnabled {
		sshServer, err = tui.NewSSHServer(tui.SSHServerConfig{
			Address:     cfg.Server.SSHAddr,
			HostKeyPath: cfg.Server.HostKeyPath,
			IdleTimeout: cfg.Server.IdleTimeout(),
			Matchmaker:  mm,
			Logger:      logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating SSH server: %v\n", err)
			os.Exit(1)
		}
	}

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("websocket server: %w", err)
		}
	}()
	if sshServer != nil {
		go func() {
			if err := sshServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("ssh server: %w", err)
			}
		}()
		logger.Info("terminal players can connect", "command", "ssh localhost -p "+portOf(sshServer.Addr()))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Error("server failed", "error", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := shutdown(ctx, mm, httpServer, sshServer)
	if shutdownErr != nil {
		logger.Warn("unclean shutdown", "error", shutdownErr)
	}
	if serveErr != nil {
		os.Exit(1)
	}
	logger.Info("stopped")
}

// shutdown stops the rooms first: every seated client is told its room
// closed and disconnects, so the servers have no open sessions to wait on.
func shutdown(ctx context.Context, mm *multiplayer.Matchmaker, httpServer *web.Server, sshServer *tui.SSHServer) error {
	mm.Shutdown()

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("websocket server: %w", err))
	}
	if sshServer != nil {
		if err := sshServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("ssh server: %w", err))
		}
	}
	return errors.Join(errs...)
}

// portOf returns the port part of a listen address such as ":23234".
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
