package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cofreq/internal/config"
	"github.com/Sumatoshi-tech/cofreq/internal/vocab"
)

// NewVocabCommand returns the vocabulary builder command: stdin corpus in,
// ranked "word count" table on stdout.
func NewVocabCommand() *cobra.Command {
	var (
		minCount int64
		maxVocab int64
		verbose  int
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build a frequency-ranked vocabulary from stdin",
		Long: `Reads whitespace-delimited tokens from stdin and writes "word count"
lines sorted by descending count (ties alphabetical) to stdout. Words below
--min-count are dropped; --max-vocab caps the vocabulary size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			stageCfg := resolveVocabConfig(cmd, cfg, minCount, maxVocab)
			logger := stageLogger(cmd, cfg, verbose)

			return vocab.Run(cmd.InOrStdin(), cmd.OutOrStdout(), stageCfg, logger)
		},
	}

	cmd.Flags().Int64Var(&minCount, "min-count", 1, "discard words occurring fewer than this many times")
	cmd.Flags().Int64Var(&maxVocab, "max-vocab", 0, "upper bound on vocabulary size (0 = no cap)")
	cmd.Flags().IntVar(&verbose, "verbose", 2, "verbosity: 0, 1, or 2")

	return cmd
}

// resolveVocabConfig merges configured defaults with explicitly set flags.
func resolveVocabConfig(cmd *cobra.Command, cfg *config.Config, minCount, maxVocab int64) vocab.Config {
	out := vocab.Config{
		MinCount: cfg.Vocab.MinCount,
		MaxVocab: cfg.Vocab.MaxVocab,
	}

	if cmd.Flags().Changed("min-count") {
		out.MinCount = minCount
	}

	if cmd.Flags().Changed("max-vocab") {
		out.MaxVocab = maxVocab
	}

	return out
}
