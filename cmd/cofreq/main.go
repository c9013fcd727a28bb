// Package main provides the entry point for the cofreq pipeline tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cofreq/cmd/cofreq/commands"
)

// Build metadata, overridden at link time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cofreq",
		Short: "cofreq - corpus co-occurrence pipeline",
		Long: `cofreq turns a whitespace-tokenized corpus into a shuffled binary
stream of weighted word-word co-occurrence records.

Commands:
  vocab     Build a frequency-ranked vocabulary from stdin
  cooccur   Accumulate windowed co-occurrence counts from stdin
  shuffle   Permute a binary co-occurrence record stream`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./cofreq.yaml)")

	// Add commands.
	rootCmd.AddCommand(commands.NewVocabCommand())
	rootCmd.AddCommand(commands.NewCooccurCommand())
	rootCmd.AddCommand(commands.NewShuffleCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "cofreq %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
