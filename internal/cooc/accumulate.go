package cooc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/cofreq/internal/memplan"
	"github.com/Sumatoshi-tech/cofreq/internal/vocab"
	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
	"github.com/Sumatoshi-tech/cofreq/pkg/safeconv"
	"github.com/Sumatoshi-tech/cofreq/pkg/textio"
)

// tokenProgressInterval is the corpus token count between progress logs.
const tokenProgressInterval = 100000

// ErrWindowSize indicates a non-positive context window.
var ErrWindowSize = errors.New("window size must be at least 1")

// Config holds the accumulator settings.
type Config struct {
	// VocabFile is the ranked vocabulary produced by the vocab stage.
	VocabFile string

	// OverflowPrefix names the intermediate run files.
	OverflowPrefix string

	// WindowSize is the maximum distance between context and target.
	WindowSize int

	// Symmetric mirrors every left-context contribution to the right.
	Symmetric bool

	// MemoryGB is the soft memory limit in gigabytes.
	MemoryGB float64

	// MaxProduct overrides the computed rank-product cutoff when positive.
	MaxProduct int64

	// OverflowLength overrides the computed overflow capacity when positive.
	OverflowLength int64
}

// Run streams the corpus on in, accumulates windowed co-occurrence weights
// against the vocabulary, and writes the merged sorted record stream to out.
func Run(in io.Reader, out io.Writer, cfg Config, logger *slog.Logger) error {
	if cfg.WindowSize < 1 {
		return ErrWindowSize
	}

	plan := memplan.PlanCooc(cfg.MemoryGB, crec.RecordSize, cfg.MaxProduct, cfg.OverflowLength)

	logger.Info("counting co-occurrences",
		"window_size", cfg.WindowSize,
		"symmetric", cfg.Symmetric,
		"max_product", plan.MaxProduct,
		"overflow_length", plan.OverflowLength,
	)

	ranks, vocabSize, err := vocab.LoadRanks(cfg.VocabFile, logger)
	if err != nil {
		return err
	}

	if vocabSize > math.MaxInt32 {
		return fmt.Errorf("%w: %d words", ErrVocabTooLarge, vocabSize)
	}

	dense, err := NewDense(vocabSize, plan.MaxProduct)
	if err != nil {
		return err
	}

	logger.Debug("lookup table built", "cells", humanize.Comma(dense.Cells()))

	numRuns, err := accumulate(in, cfg, plan, ranks, dense, logger)
	if err != nil {
		return err
	}

	_, err = MergeRuns(cfg.OverflowPrefix, numRuns, out, logger)

	return err
}

// accumulate performs the streaming pass: dense and overflow accumulation,
// overflow spills, and the final dense dump to run 0000. It returns the
// total number of run files written.
func accumulate(
	in io.Reader,
	cfg Config,
	plan memplan.CoocPlan,
	ranks *vocab.Table,
	dense *Dense,
	logger *slog.Logger,
) (int, error) {
	overflow := NewOverflow(plan.OverflowLength)
	history := make([]int64, cfg.WindowSize)
	scanner := textio.NewScanner(in)
	window := int64(cfg.WindowSize)

	// Overflow spills occupy run indices 1 and up; the dense region is
	// written to run 0 after the pass.
	runIndex := 1

	var j, tokens int64

	for {
		if overflow.NearCapacity(cfg.WindowSize) {
			err := overflow.FlushToRun(cfg.OverflowPrefix, runIndex)
			if err != nil {
				return 0, err
			}

			runIndex++
		}

		tok, lineBreak, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return 0, err
		}

		if lineBreak {
			j = 0

			continue
		}

		tokens++
		if tokens%tokenProgressInterval == 0 {
			logger.Debug("processing tokens", "tokens", humanize.Comma(tokens))
		}

		// Out-of-vocabulary tokens do not advance j: they are invisible
		// to the window.
		w2, ok := ranks.Get(tok)
		if !ok {
			continue
		}

		lo := j - window
		if lo < 0 {
			lo = 0
		}

		for k := j - 1; k >= lo; k-- {
			w1 := history[k%window]
			weight := 1.0 / float64(j-k)

			if dense.Contains(w1, w2) {
				dense.Add(w1, w2, weight)

				if cfg.Symmetric {
					dense.Add(w2, w1, weight)
				}

				continue
			}

			overflow.Append(record(w1, w2, weight))

			if cfg.Symmetric {
				overflow.Append(record(w2, w1, weight))
			}
		}

		history[j%window] = w2
		j++
	}

	logger.Debug("corpus pass complete", "tokens", humanize.Comma(tokens))

	// Final spill; the buffer may be partial or even empty.
	err := overflow.FlushToRun(cfg.OverflowPrefix, runIndex)
	if err != nil {
		return 0, err
	}

	err = writeDenseRun(dense, cfg.OverflowPrefix)
	if err != nil {
		return 0, err
	}

	return runIndex + 1, nil
}

// writeDenseRun dumps the dense region as run 0, already sorted and
// duplicate-free by construction.
func writeDenseRun(dense *Dense, prefix string) error {
	w, err := crec.CreateRun(prefix, 0)
	if err != nil {
		return err
	}

	err = dense.WriteTo(w)

	closeErr := w.Close()

	if err != nil {
		return err
	}

	return closeErr
}

func record(w1, w2 int64, weight float64) crec.Record {
	return crec.Record{
		Word1: safeconv.MustInt64ToInt32(w1),
		Word2: safeconv.MustInt64ToInt32(w2),
		Val:   weight,
	}
}
