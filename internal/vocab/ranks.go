package vocab

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

// ReadRanks loads a ranked vocabulary ("word count" lines) into a table
// mapping each word to its 1-based line number. The count column is
// ignored: rank is positional. A duplicate word cannot occur in a
// well-formed vocabulary and is logged as a consistency warning; the first
// rank wins.
func ReadRanks(r io.Reader, logger *slog.Logger) (*Table, int64, error) {
	table := NewTable()
	scanner := bufio.NewScanner(r)

	var rank int64

	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) == 0 {
			continue
		}

		word := fields[0]

		rank++
		if table.Insert(word, rank) {
			logger.Warn("duplicate vocabulary entry", "word", string(word))

			rank--
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("read vocabulary: %w", err)
	}

	return table, int64(table.Len()), nil
}

// LoadRanks opens path and reads it with ReadRanks.
func LoadRanks(path string, logger *slog.Logger) (*Table, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open vocab file: %w", err)
	}

	defer f.Close()

	table, size, err := ReadRanks(f, logger)
	if err != nil {
		return nil, 0, err
	}

	logger.Debug("vocabulary loaded", "path", path, "words", humanize.Comma(size))

	return table, size, nil
}
