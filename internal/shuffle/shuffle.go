// Package shuffle permutes a binary co-occurrence record stream without
// loading it whole.
//
// Phase 1 cuts the input into memory-bounded chunks, Fisher-Yates shuffles
// each, and spills them as run files. Phase 2 re-reads the runs in
// round-robin slices, reshuffling each assembled buffer before emission.
// The result is empirically indistinguishable from a uniform permutation;
// exactness is not claimed.
package shuffle

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/cofreq/internal/memplan"
	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

// progressInterval is the record count between progress logs.
const progressInterval = 100000

// ErrArraySize indicates the chunk buffer capacity resolved to zero.
var ErrArraySize = errors.New("shuffle buffer capacity must be at least 1 record")

// Config holds the shuffler settings.
type Config struct {
	// TempPrefix names the intermediate run files.
	TempPrefix string

	// MemoryGB is the soft memory limit in gigabytes.
	MemoryGB float64

	// ArraySize overrides the computed chunk capacity when positive.
	ArraySize int64

	// Seed seeds the PCG source; a fixed seed reproduces the permutation.
	Seed uint64
}

// Run reads the record stream on in and writes a permutation of it to out.
func Run(in io.Reader, out io.Writer, cfg Config, logger *slog.Logger) error {
	arraySize := memplan.ShuffleArraySize(cfg.MemoryGB, crec.RecordSize, cfg.ArraySize)
	if arraySize < 1 {
		return ErrArraySize
	}

	logger.Info("shuffling records", "array_size", arraySize, "seed", cfg.Seed)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	numRuns, err := shuffleByChunks(in, cfg.TempPrefix, arraySize, rng, logger)
	if err != nil {
		return err
	}

	return mergeShuffle(out, cfg.TempPrefix, numRuns, arraySize, rng, logger)
}

// shuffleByChunks fills chunk buffers from in, shuffles each, and writes
// them as run files. It returns the number of runs written; the final chunk
// is written even when partial or empty, so there is always at least one.
func shuffleByChunks(
	in io.Reader,
	prefix string,
	arraySize int64,
	rng *rand.Rand,
	logger *slog.Logger,
) (int, error) {
	reader := crec.NewReader(in)
	buf := make([]crec.Record, 0, arraySize)

	runIndex := 0

	var total int64

	for {
		rec, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return 0, err
		}

		buf = append(buf, rec)

		if int64(len(buf)) >= arraySize {
			total += int64(len(buf))
			logger.Debug("chunk shuffled", "records", humanize.Comma(total))

			err = writeShuffledRun(prefix, runIndex, buf, rng)
			if err != nil {
				return 0, err
			}

			runIndex++
			buf = buf[:0]
		}
	}

	total += int64(len(buf))

	err := writeShuffledRun(prefix, runIndex, buf, rng)
	if err != nil {
		return 0, err
	}

	logger.Debug("chunk phase complete", "records", humanize.Comma(total), "runs", runIndex+1)

	return runIndex + 1, nil
}

// writeShuffledRun shuffles buf in place and writes it as run file index.
func writeShuffledRun(prefix string, index int, buf []crec.Record, rng *rand.Rand) error {
	fisherYates(buf, rng)

	w, err := crec.CreateRun(prefix, index)
	if err != nil {
		return err
	}

	for _, rec := range buf {
		err = w.Write(rec)
		if err != nil {
			w.Close()

			return err
		}
	}

	return w.Close()
}

// mergeShuffle re-reads the runs in round-robin slices of arraySize/k
// records, reshuffles each assembled buffer, and emits it to out. Run files
// are deleted on success.
func mergeShuffle(
	out io.Writer,
	prefix string,
	numRuns int,
	arraySize int64,
	rng *rand.Rand,
	logger *slog.Logger,
) error {
	readers := make([]*crec.Reader, numRuns)

	defer func() {
		for _, r := range readers {
			if r != nil {
				r.Close()
			}
		}
	}()

	for i := range numRuns {
		r, err := crec.OpenRun(prefix, i)
		if err != nil {
			return err
		}

		readers[i] = r
	}

	perRun := arraySize / int64(numRuns)
	if perRun < 1 {
		perRun = 1
	}

	w := crec.NewWriter(out)
	buf := make([]crec.Record, 0, arraySize)

	var total int64

	for {
		buf = buf[:0]

		for i, r := range readers {
			if r == nil {
				continue
			}

			for range perRun {
				rec, err := r.Read()
				if err != nil {
					if errors.Is(err, io.EOF) {
						closeErr := r.Close()
						readers[i] = nil

						if closeErr != nil {
							return closeErr
						}

						break
					}

					return fmt.Errorf("read shuffle run %d: %w", i, err)
				}

				buf = append(buf, rec)
			}
		}

		if len(buf) == 0 {
			break
		}

		fisherYates(buf, rng)

		for _, rec := range buf {
			err := w.Write(rec)
			if err != nil {
				return err
			}
		}

		total += int64(len(buf))
		if total%progressInterval < int64(len(buf)) {
			logger.Debug("merge-shuffling", "records", humanize.Comma(total))
		}
	}

	err := w.Flush()
	if err != nil {
		return err
	}

	err = crec.RemoveRuns(prefix, numRuns)
	if err != nil {
		return err
	}

	logger.Info("shuffle complete", "records", humanize.Comma(total), "runs", numRuns)

	return nil
}

// fisherYates performs an in-place uniform shuffle over the full buffer.
func fisherYates(records []crec.Record, rng *rand.Rand) {
	for i := len(records) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		records[i], records[j] = records[j], records[i]
	}
}
