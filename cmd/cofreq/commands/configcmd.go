package commands

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand returns the config inspection command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Prints the effective configuration as YAML after merging built-in
defaults, the config file, and COFREQ_* environment variables. Redirect to
cofreq.yaml to bootstrap a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}

	return cmd
}
