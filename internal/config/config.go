// Package config provides YAML-based server configuration with embedded
// defaults, .env and environment overrides, and validation.
package config

import (
	"time"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/game"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

// Config contains all configuration for the coop-snake server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Room   RoomConfig   `yaml:"room"`
	Game   GameConfig   `yaml:"game"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig defines the listening transports.
type ServerConfig struct {
	WSAddr         string `yaml:"ws_addr"`
	SSHAddr        string `yaml:"ssh_addr"`
	SSHEnabled     bool   `yaml:"ssh_enabled"`
	HostKeyPath    string `yaml:"host_key_path"`
	IdleTimeoutSec int    `yaml:"idle_timeout_sec"` // SSH sessions idle longer than this are closed
}

// RoomConfig defines the scheduling of each room.
type RoomConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
	Capacity       int `yaml:"capacity"` // 1 or 2; solo rooms never reach consensus
}

// GameConfig defines the rules of a match.
type GameConfig struct {
	GridWidth         int   `yaml:"grid_width"`
	GridHeight        int   `yaml:"grid_height"`
	SnakeLength       int   `yaml:"snake_length"`
	InitialFruits     int   `yaml:"initial_fruits"`
	MaxFruitValue     int   `yaml:"max_fruit_value"`
	ConsensusWindowMs int   `yaml:"consensus_window_ms"`
	Seed              int64 `yaml:"seed"` // 0 = time based
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// IdleTimeout returns the SSH idle timeout as a duration.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSec) * time.Second
}

// TickInterval returns the room tick period as a duration.
func (r RoomConfig) TickInterval() time.Duration {
	return time.Duration(r.TickIntervalMs) * time.Millisecond
}

// ConsensusWindow returns the intent freshness window as a duration.
func (g GameConfig) ConsensusWindow() time.Duration {
	return time.Duration(g.ConsensusWindowMs) * time.Millisecond
}

// Rules converts the game section into the simulation's config.
func (g GameConfig) Rules() game.Config {
	return game.Config{
		Bounds:          core.Bounds{Width: g.GridWidth, Height: g.GridHeight},
		SnakeLength:     g.SnakeLength,
		InitialFruits:   g.InitialFruits,
		MaxFruitValue:   g.MaxFruitValue,
		ConsensusWindow: g.ConsensusWindow(),
		Seed:            g.Seed,
	}
}

// Rooms returns the settings the matchmaker applies to every room.
func (c Config) Rooms() multiplayer.RoomConfig {
	return multiplayer.RoomConfig{
		Game:         c.Game.Rules(),
		TickInterval: c.Room.TickInterval(),
		Capacity:     c.Room.Capacity,
	}
}
