// Command glossd runs the gloss daemon in the foreground. It is the
// service-manager twin of `gloss start`, which launches the same runtime
// detached; running glossd directly keeps logs on stdout for systemd or a
// terminal session.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gloss/internal/config"
	"gloss/internal/daemonrun"
	_ "gloss/internal/llm/providers" // register vendors
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var socketPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:           "glossd",
		Short:         "Run the gloss daemon in the foreground",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}
			level := strings.TrimSpace(logLevel)
			if level == "" {
				level = cfg.Logging.Level
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   level,
				SocketPath: strings.TrimSpace(socketPath),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	cmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path for the IPC server")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level for this run")
	return cmd
}
