package main

import (
	"strings"

	"github.com/spf13/cobra"

	"gloss/internal/daemonrun"
)

// newDaemonRunCommand returns the hidden foreground daemon command. `gloss
// start` launches it detached; running it directly keeps logs on stdout.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the gloss daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			level := strings.TrimSpace(logLevel)
			if level == "" {
				level = cfg.Logging.Level
			}
			socket := ""
			if ctx.socketFlag != nil {
				socket = strings.TrimSpace(*ctx.socketFlag)
			}

			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   level,
				SocketPath: socket,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level for the daemon run")
	return cmd
}
