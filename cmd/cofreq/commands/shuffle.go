package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cofreq/internal/config"
	"github.com/Sumatoshi-tech/cofreq/internal/shuffle"
)

// shuffleFlags holds the shuffler's flag values before resolution against
// the configured defaults.
type shuffleFlags struct {
	tempFile  string
	memoryGB  float64
	arraySize int64
	seed      int64
	verbose   int
}

// NewShuffleCommand returns the shuffler command: binary record stream on
// stdin, permuted binary record stream on stdout.
func NewShuffleCommand() *cobra.Command {
	var flags shuffleFlags

	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Permute a binary co-occurrence record stream",
		Long: `Reads a binary co-occurrence record stream from stdin and writes a
uniformly permuted stream of identical content to stdout, shuffling in
memory-bounded chunks spilled to temporary run files. The permutation is
reproducible for a given --seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			stageCfg, err := resolveShuffleConfig(cmd, cfg, flags)
			if err != nil {
				return err
			}

			logger := stageLogger(cmd, cfg, flags.verbose)

			return shuffle.Run(cmd.InOrStdin(), cmd.OutOrStdout(), stageCfg, logger)
		},
	}

	cmd.Flags().StringVar(&flags.tempFile, "temp-file", "temp_shuffle", "filename prefix for temporary run files")
	cmd.Flags().Float64Var(&flags.memoryGB, "memory", 4.0, "soft memory limit in gigabytes")
	cmd.Flags().Int64Var(&flags.arraySize, "array-size", 0, "override the computed chunk buffer capacity")
	cmd.Flags().Int64Var(&flags.seed, "seed", 1, "random seed for a reproducible permutation")
	cmd.Flags().IntVar(&flags.verbose, "verbose", 2, "verbosity: 0, 1, or 2")

	return cmd
}

// resolveShuffleConfig merges configured defaults with explicitly set flags.
func resolveShuffleConfig(cmd *cobra.Command, cfg *config.Config, flags shuffleFlags) (shuffle.Config, error) {
	memoryGB, err := cfg.Shuffle.MemoryGB()
	if err != nil {
		return shuffle.Config{}, err
	}

	seed := cfg.Shuffle.Seed

	out := shuffle.Config{
		TempPrefix: cfg.Shuffle.TempFile,
		MemoryGB:   memoryGB,
		ArraySize:  cfg.Shuffle.ArraySize,
	}

	if cmd.Flags().Changed("temp-file") {
		out.TempPrefix = flags.tempFile
	}

	if cmd.Flags().Changed("memory") {
		out.MemoryGB = flags.memoryGB
	}

	if cmd.Flags().Changed("array-size") {
		out.ArraySize = flags.arraySize
	}

	if cmd.Flags().Changed("seed") {
		seed = flags.seed
	}

	if seed < 0 {
		return shuffle.Config{}, fmt.Errorf("%w: got %d", config.ErrInvalidSeed, seed)
	}

	out.Seed = uint64(seed)

	return out, nil
}
