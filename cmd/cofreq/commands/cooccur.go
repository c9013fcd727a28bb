package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cofreq/internal/config"
	"github.com/Sumatoshi-tech/cofreq/internal/cooc"
)

// cooccurFlags holds the accumulator's flag values before resolution
// against the configured defaults.
type cooccurFlags struct {
	vocabFile      string
	overflowFile   string
	memoryGB       float64
	windowSize     int
	maxProduct     int64
	overflowLength int64
	symmetric      bool
	verbose        int
}

// NewCooccurCommand returns the co-occurrence accumulator command: stdin
// corpus plus vocab file in, sorted binary record stream on stdout.
func NewCooccurCommand() *cobra.Command {
	var flags cooccurFlags

	cmd := &cobra.Command{
		Use:   "cooccur",
		Short: "Accumulate windowed co-occurrence counts from stdin",
		Long: `Reads the tokenized corpus from stdin and the ranked vocabulary from
--vocab-file, accumulates 1/distance-weighted co-occurrence counts within
--window-size positions on each line, and writes the sorted, deduplicated
binary record stream to stdout. Frequent pairs accumulate in memory; the
sparse rest spills to sorted run files merged on completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			stageCfg, err := resolveCooccurConfig(cmd, cfg, flags)
			if err != nil {
				return err
			}

			logger := stageLogger(cmd, cfg, flags.verbose)

			return cooc.Run(cmd.InOrStdin(), cmd.OutOrStdout(), stageCfg, logger)
		},
	}

	cmd.Flags().StringVar(&flags.vocabFile, "vocab-file", "vocab.txt", "ranked vocabulary file produced by 'cofreq vocab'")
	cmd.Flags().StringVar(&flags.overflowFile, "overflow-file", "overflow", "filename prefix for temporary run files")
	cmd.Flags().Float64Var(&flags.memoryGB, "memory", 4.0, "soft memory limit in gigabytes")
	cmd.Flags().IntVar(&flags.windowSize, "window-size", 15, "number of context words to the left (and right if symmetric)")
	cmd.Flags().Int64Var(&flags.maxProduct, "max-product", 0, "override the computed frequency-rank product cutoff")
	cmd.Flags().Int64Var(&flags.overflowLength, "overflow-length", 0, "override the computed overflow buffer capacity")
	cmd.Flags().BoolVar(&flags.symmetric, "symmetric", true, "use left and right context (false: left only)")
	cmd.Flags().IntVar(&flags.verbose, "verbose", 2, "verbosity: 0, 1, or 2")

	return cmd
}

// resolveCooccurConfig merges configured defaults with explicitly set flags.
func resolveCooccurConfig(cmd *cobra.Command, cfg *config.Config, flags cooccurFlags) (cooc.Config, error) {
	memoryGB, err := cfg.Cooccur.MemoryGB()
	if err != nil {
		return cooc.Config{}, err
	}

	out := cooc.Config{
		VocabFile:      cfg.Cooccur.VocabFile,
		OverflowPrefix: cfg.Cooccur.OverflowFile,
		WindowSize:     cfg.Cooccur.WindowSize,
		Symmetric:      cfg.Cooccur.Symmetric,
		MemoryGB:       memoryGB,
		MaxProduct:     cfg.Cooccur.MaxProduct,
		OverflowLength: cfg.Cooccur.Overflow,
	}

	if cmd.Flags().Changed("vocab-file") {
		out.VocabFile = flags.vocabFile
	}

	if cmd.Flags().Changed("overflow-file") {
		out.OverflowPrefix = flags.overflowFile
	}

	if cmd.Flags().Changed("memory") {
		out.MemoryGB = flags.memoryGB
	}

	if cmd.Flags().Changed("window-size") {
		out.WindowSize = flags.windowSize
	}

	if cmd.Flags().Changed("max-product") {
		out.MaxProduct = flags.maxProduct
	}

	if cmd.Flags().Changed("overflow-length") {
		out.OverflowLength = flags.overflowLength
	}

	if cmd.Flags().Changed("symmetric") {
		out.Symmetric = flags.symmetric
	}

	return out, nil
}
