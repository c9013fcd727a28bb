package vocab

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/cofreq/pkg/textio"
)

// ReservedToken may not appear in a corpus: it is claimed by downstream
// consumers for out-of-vocabulary words.
const ReservedToken = "<unk>"

// progressInterval is the token count between progress log records.
const progressInterval = 100000

// ErrReservedToken is returned when the corpus contains ReservedToken.
var ErrReservedToken = errors.New("reserved token <unk> found in corpus")

// Config holds the vocabulary builder settings.
type Config struct {
	// MinCount drops words occurring fewer than this many times.
	MinCount int64

	// MaxVocab caps the vocabulary size; 0 means no cap. When the cap
	// cuts into a band of equal-count words, the survivors are sampled
	// pseudo-randomly across the alphabet.
	MaxVocab int64
}

// Count streams whitespace-delimited tokens from r into a fresh table and
// returns it with the total token count.
func Count(r io.Reader, logger *slog.Logger) (*Table, int64, error) {
	table := NewTable()
	scanner := textio.NewScanner(r)
	reserved := []byte(ReservedToken)

	var tokens int64

	for {
		tok, lineBreak, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, tokens, err
		}

		if lineBreak {
			continue
		}

		if bytes.Equal(tok, reserved) {
			return nil, tokens, ErrReservedToken
		}

		table.Incr(tok)

		tokens++
		if tokens%progressInterval == 0 {
			logger.Debug("counting tokens", "tokens", humanize.Comma(tokens))
		}
	}

	return table, tokens, nil
}

// Rank migrates table into canonical ranked order: descending count with
// ties broken by ascending byte order. When maxVocab cuts the vocabulary,
// the array is first sorted on count alone so that equal-count words at the
// boundary are dropped in pseudo-random alphabetic order, then truncated
// and re-sorted with the tie-break.
func Rank(table *Table, maxVocab int64) []Entry {
	entries := table.Entries()

	if maxVocab > 0 && maxVocab < int64(len(entries)) {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
		entries = entries[:maxVocab]
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}

		return entries[i].Word < entries[j].Word
	})

	return entries
}

// Run builds a vocabulary from the corpus on in and writes the ranked
// "word count" table to out, one entry per line, stopping at the first
// entry below cfg.MinCount.
func Run(in io.Reader, out io.Writer, cfg Config, logger *slog.Logger) error {
	logger.Info("building vocabulary", "min_count", cfg.MinCount, "max_vocab", cfg.MaxVocab)

	table, tokens, err := Count(in, logger)
	if err != nil {
		return err
	}

	unique := table.Len()
	logger.Debug("counted tokens", "tokens", humanize.Comma(tokens), "unique_words", humanize.Comma(int64(unique)))

	entries := Rank(table, cfg.MaxVocab)

	w := bufio.NewWriter(out)

	var emitted int64

	for _, e := range entries {
		if e.Count < cfg.MinCount {
			logger.Info("truncating vocabulary at min count", "min_count", cfg.MinCount)

			break
		}

		_, err = fmt.Fprintf(w, "%s %d\n", e.Word, e.Count)
		if err != nil {
			return fmt.Errorf("write vocabulary: %w", err)
		}

		emitted++
	}

	if emitted == int64(len(entries)) && len(entries) < unique {
		logger.Info("truncating vocabulary at size cap", "max_vocab", cfg.MaxVocab)
	}

	err = w.Flush()
	if err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}

	logger.Info("vocabulary complete", "size", emitted)

	return nil
}
