// Command tally serves the persons, rewards, punishments and scores API and
// carries the admin subcommands that operate on the same database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dukerupert/tally/internal/config"
	"github.com/dukerupert/tally/internal/logging"
	"github.com/spf13/cobra"
)

const appName = "tally"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags override the corresponding TALLY_* variables when set.
type globalFlags struct {
	envFile  string
	driver   string
	dsn      string
	logLevel string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Track rewards and punishments for a group of people",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	pf.StringVar(&flags.driver, "db-driver", "", "Database driver: sqlite or postgres (overrides TALLY_DB_DRIVER)")
	pf.StringVar(&flags.dsn, "db-dsn", "", "Database DSN or SQLite path (overrides TALLY_DB_DSN)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides TALLY_LOG_LEVEL)")

	cmd.AddCommand(
		serveCmd(&flags),
		migrateCmd(&flags),
		scoresCmd(&flags),
		hashTokenCmd(),
	)
	return cmd
}

// load reads configuration and applies flag overrides, then sets up logging.
func (f *globalFlags) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return nil, nil, err
	}
	if f.driver != "" {
		cfg.DBDriver = f.driver
	}
	if f.dsn != "" {
		cfg.DBDSN = f.dsn
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, logging.Setup(cfg.LogLevel, cfg.LogFormat), nil
}
