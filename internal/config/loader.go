package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/coop-snake/internal/game"
)

// Load builds the effective configuration.
// File search order: customPath -> ~/.coopsnake/config.yaml -> ./configs/coopsnake.yaml -> embedded default.
// Values from the file are layered over the embedded defaults, then .env and
// the process environment override them.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		cfg = Default()
	}

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "coopsnake.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		fromFile := cfg
		if err := yaml.Unmarshal(data, &fromFile); err == nil {
			return fromFile, nil
		}
	}

	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".coopsnake", filename)
}

// ApplyEnv overrides cfg with the server's environment variables.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		host, _, err := net.SplitHostPort(cfg.Server.WSAddr)
		if err != nil {
			host = ""
		}
		cfg.Server.WSAddr = net.JoinHostPort(host, port)
	}
	if addr, ok := lookup("SSH_ADDR"); ok && addr != "" {
		cfg.Server.SSHAddr = addr
	}
	if level, ok := lookup("LOG_LEVEL"); ok && level != "" {
		cfg.Log.Level = level
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"ROOM_TICK", &cfg.Room.TickIntervalMs},
		{"ROOM_CAPACITY", &cfg.Room.Capacity},
		{"CONSENSUS_WINDOW_MS", &cfg.Game.ConsensusWindowMs},
		{"GRID_WIDTH", &cfg.Game.GridWidth},
		{"GRID_HEIGHT", &cfg.Game.GridHeight},
	}
	for _, v := range ints {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.name, raw, err)
		}
		*v.dst = n
	}
	return nil
}

// Validate reports every setting the server cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Room.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("room.tick_interval_ms must be positive, got %d", c.Room.TickIntervalMs))
	}
	if c.Room.Capacity < 1 || c.Room.Capacity > game.MaxPlayers {
		errs = append(errs, fmt.Errorf("room.capacity must be between 1 and %d, got %d", game.MaxPlayers, c.Room.Capacity))
	}
	if c.Game.ConsensusWindowMs <= 0 {
		errs = append(errs, fmt.Errorf("game.consensus_window_ms must be positive, got %d", c.Game.ConsensusWindowMs))
	}
	if c.Game.SnakeLength < 1 {
		errs = append(errs, fmt.Errorf("game.snake_length must be at least 1, got %d", c.Game.SnakeLength))
	}
	if c.Game.InitialFruits < 0 {
		errs = append(errs, fmt.Errorf("game.initial_fruits must not be negative, got %d", c.Game.InitialFruits))
	}
	if c.Game.MaxFruitValue < 1 {
		errs = append(errs, fmt.Errorf("game.max_fruit_value must be at least 1, got %d", c.Game.MaxFruitValue))
	}
	if c.Game.GridWidth <= 0 || c.Game.GridHeight <= 0 {
		errs = append(errs, fmt.Errorf("game grid must be positive, got %dx%d", c.Game.GridWidth, c.Game.GridHeight))
	} else if !c.Game.fitsInitialSnake() {
		errs = append(errs, fmt.Errorf("game grid %dx%d cannot hold a snake of length %d",
			c.Game.GridWidth, c.Game.GridHeight, c.Game.SnakeLength))
	}
	if c.Server.WSAddr == "" {
		errs = append(errs, errors.New("server.ws_addr must be set"))
	}
	if c.Server.SSHEnabled && c.Server.SSHAddr == "" {
		errs = append(errs, errors.New("server.ssh_addr must be set when ssh is enabled"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// fitsInitialSnake reports whether the snake laid out left of the center,
// heading right, keeps both cells of every segment on the grid.
func (g GameConfig) fitsInitialSnake() bool {
	cx, cy := g.GridWidth/2, g.GridHeight/2
	return cx-(g.SnakeLength-1) >= 0 && cy+1 < g.GridHeight
}
