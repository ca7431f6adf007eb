// Package cli provides the contextd command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextd-io/contextd/internal/config"
	"github.com/contextd-io/contextd/internal/db"
	"github.com/contextd-io/contextd/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "contextd",
	Short: "Location and activity aware scenario automation",
	Long: `contextd watches device location and activity updates and fires
configured scenario actions on qualifying geofence entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logging.Setup(cfg.LogLevel, cfg.LogConsole)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./contextd.yaml, ~/.contextd/contextd.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openDatabase opens the configured SQLite database and runs migrations.
func openDatabase(cmd *cobra.Command) (*db.DB, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(cmd.Context()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// apiURL builds an absolute URL for the configured daemon API.
func apiURL(path string) string {
	return fmt.Sprintf("http://%s%s", cfg.HTTP.Addr(), path)
}
