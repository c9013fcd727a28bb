package shuffle

import (
	"bytes"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cofreq/internal/logutil"
	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

func makeRecords(n int) []crec.Record {
	out := make([]crec.Record, n)
	for i := range out {
		out[i] = crec.Record{
			Word1: int32(i/7 + 1),
			Word2: int32(i%7 + 1),
			Val:   float64(i) + 0.5,
		}
	}

	return out
}

func encode(t *testing.T, records []crec.Record) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	w := crec.NewWriter(&buf)
	for _, rec := range records {
		require.NoError(t, w.Write(rec))
	}

	require.NoError(t, w.Flush())

	return &buf
}

func decode(t *testing.T, r io.Reader) []crec.Record {
	t.Helper()

	reader := crec.NewReader(r)

	var out []crec.Record

	for {
		rec, err := reader.Read()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)

			return out
		}

		out = append(out, rec)
	}
}

func sortRecords(records []crec.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Word1 != records[j].Word1 {
			return records[i].Word1 < records[j].Word1
		}

		if records[i].Word2 != records[j].Word2 {
			return records[i].Word2 < records[j].Word2
		}

		return records[i].Val < records[j].Val
	})
}

func runShuffle(t *testing.T, input []crec.Record, cfg Config) []crec.Record {
	t.Helper()

	cfg.TempPrefix = filepath.Join(t.TempDir(), "temp_shuffle")
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	var out bytes.Buffer

	require.NoError(t, Run(encode(t, input), &out, cfg, logutil.Discard()))

	return decode(t, &out)
}

func TestRunPreservesMultiset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		records   int
		arraySize int64
	}{
		{name: "single_chunk", records: 50, arraySize: 1000},
		{name: "exact_chunks", records: 64, arraySize: 16},
		{name: "partial_final_chunk", records: 77, arraySize: 16},
		{name: "chunk_of_one", records: 9, arraySize: 1},
		{name: "empty_input", records: 0, arraySize: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := makeRecords(tt.records)
			got := runShuffle(t, input, Config{ArraySize: tt.arraySize})

			require.Len(t, got, len(input))

			wantSorted := append([]crec.Record(nil), input...)
			sortRecords(wantSorted)
			sortRecords(got)
			assert.Equal(t, wantSorted, got)
		})
	}
}

func TestRunActuallyPermutes(t *testing.T) {
	t.Parallel()

	input := makeRecords(500)
	got := runShuffle(t, input, Config{ArraySize: 64})

	require.Len(t, got, len(input))
	assert.NotEqual(t, input, got, "500 records should not survive in input order")
}

func TestRunDeterministicForSeed(t *testing.T) {
	t.Parallel()

	input := makeRecords(200)

	first := runShuffle(t, input, Config{ArraySize: 32, Seed: 42})
	second := runShuffle(t, input, Config{ArraySize: 32, Seed: 42})
	assert.Equal(t, first, second)

	other := runShuffle(t, input, Config{ArraySize: 32, Seed: 43})
	assert.NotEqual(t, first, other)
}

func TestRunCleansUpRunFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{
		TempPrefix: filepath.Join(dir, "temp_shuffle"),
		ArraySize:  8,
		Seed:       1,
	}

	var out bytes.Buffer

	require.NoError(t, Run(encode(t, makeRecords(30)), &out, cfg, logutil.Discard()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRejectsZeroArraySize(t *testing.T) {
	t.Parallel()

	err := Run(&bytes.Buffer{}, &bytes.Buffer{}, Config{MemoryGB: 0, ArraySize: 0}, logutil.Discard())
	assert.ErrorIs(t, err, ErrArraySize)
}

func TestRunTruncatedInput(t *testing.T) {
	t.Parallel()

	buf := encode(t, makeRecords(3))
	buf.Write([]byte{0x01, 0x02})

	cfg := Config{
		TempPrefix: filepath.Join(t.TempDir(), "temp_shuffle"),
		ArraySize:  8,
		Seed:       1,
	}

	err := Run(buf, &bytes.Buffer{}, cfg, logutil.Discard())
	assert.ErrorIs(t, err, crec.ErrTruncatedRecord)
}

func TestFisherYatesFullLength(t *testing.T) {
	t.Parallel()

	// Every position must be able to move, including the last two: the
	// shuffle covers the full populated length.
	rng := rand.New(rand.NewPCG(7, 7))
	moved := make([]bool, 10)

	for trial := 0; trial < 200; trial++ {
		records := makeRecords(10)
		fisherYates(records, rng)

		for i, rec := range records {
			if rec != makeRecords(10)[i] {
				moved[i] = true
			}
		}
	}

	for i, m := range moved {
		assert.True(t, m, "position %d never moved", i)
	}
}
