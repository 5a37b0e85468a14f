// coopsnake is a server for a two-player cooperative snake game. Both players
// steer the same snake: it only turns when they agree on a direction.
//
// Usage:
//
//	coopsnake serve    - Start the WebSocket and SSH servers
//	coopsnake config   - Print the effective configuration
//
// Global flags:
//
//	--config <path>      - Config file (default: ~/.coopsnake/config.yaml)
//	--log-level <level>  - Override the configured log level
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/coop-snake/internal/config"
)

var (
	// Global flags
	flagConfigPath string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coopsnake",
	Short: "Co-op Snake - two players, one snake",
	Long: `Co-op Snake pairs players into rooms of two. Both players steer the
same snake and it only turns when both press the same direction within
the consensus window. Otherwise it keeps going straight.

Players connect over WebSocket (browser clients) or SSH (terminal).

Available commands:
  serve    - Start the game servers
  config   - Print the effective configuration

Examples:
  coopsnake serve
  coopsnake serve --ws :8080 --no-ssh
  coopsnake config --config ./coopsnake.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}
