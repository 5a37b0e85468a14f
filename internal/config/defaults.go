package config

import (
	_ "embed"
)

//go:embed defaults/coopsnake.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/coopsnake.yaml.
func Default() Config {
	return Config{
		Server: ServerConfig{
			WSAddr:         ":4000",
			SSHAddr:        ":23234",
			SSHEnabled:     true,
			HostKeyPath:    ".ssh/coopsnake_ed25519",
			IdleTimeoutSec: 1800,
		},
		Room: RoomConfig{
			TickIntervalMs: 100,
			Capacity:       2,
		},
		Game: GameConfig{
			GridWidth:         20,
			GridHeight:        20,
			SnakeLength:       4,
			InitialFruits:     3,
			MaxFruitValue:     5,
			ConsensusWindowMs: 120,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
