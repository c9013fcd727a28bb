// Package commands implements CLI command handlers for cofreq.
//
// Every stage reads its data plane from stdin and writes it to stdout;
// configuration comes from cofreq.yaml / COFREQ_* environment defaults
// with command-line flags overriding both.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cofreq/internal/config"
	"github.com/Sumatoshi-tech/cofreq/internal/logutil"
)

// loadConfig resolves the --config persistent flag and loads defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	return config.Load(path)
}

// stageLogger builds the stage's stderr logger. The flag value wins over
// the configured verbosity when the flag was set explicitly.
func stageLogger(cmd *cobra.Command, cfg *config.Config, flagVerbose int) *slog.Logger {
	verbose := cfg.Logging.Verbose
	if cmd.Flags().Changed("verbose") {
		verbose = flagVerbose
	}

	return logutil.New(verbose, cfg.Logging.Format)
}
