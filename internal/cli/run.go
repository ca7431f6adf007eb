package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/daemon"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the contextd daemon",
	Long: `Run the contextd daemon.

The daemon hosts the trigger engine and the HTTP ingest/status API, and
keeps running until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := daemon.New(cfg)
		if err != nil {
			return err
		}
		return d.Run(ctx)
	},
}
