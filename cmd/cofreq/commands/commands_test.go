package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

// newTestRoot mirrors the production root command: persistent --config
// flag plus all stage commands.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "cofreq", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(NewVocabCommand())
	root.AddCommand(NewCooccurCommand())
	root.AddCommand(NewShuffleCommand())
	root.AddCommand(NewConfigCommand())

	return root
}

// execute runs the root command with args and the given stdin, returning
// captured stdout.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	root := newTestRoot()
	root.SetArgs(args)

	if stdin != nil {
		root.SetIn(stdin)
	}

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(io.Discard)

	err := root.Execute()

	return out.String(), err
}

func TestVocabCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("default_flags", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("b a c b\nc a b"), "vocab", "--verbose", "0")
		require.NoError(t, err)
		assert.Equal(t, "b 3\na 2\nc 2\n", out)
	})

	t.Run("min_count_flag", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("a a a b b c"), "vocab", "--min-count", "2", "--verbose", "0")
		require.NoError(t, err)
		assert.Equal(t, "a 3\nb 2\n", out)
	})

	t.Run("reserved_token_fails", func(t *testing.T) {
		_, err := execute(t, strings.NewReader("a <unk> b"), "vocab", "--verbose", "0")
		assert.Error(t, err)
	})
}

func TestVocabCommandConfigPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())

	cfgPath := filepath.Join(t.TempDir(), "cofreq.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vocab:\n  min_count: 3\nlogging:\n  verbose: 0\n"), 0o600))

	t.Run("config_file_supplies_default", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("a a a b b c"), "vocab", "--config", cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "a 3\n", out)
	})

	t.Run("flag_overrides_config", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("a a a b b c"), "vocab", "--config", cfgPath, "--min-count", "1")
		require.NoError(t, err)
		assert.Equal(t, "a 3\nb 2\nc 1\n", out)
	})

	t.Run("missing_explicit_config_fails", func(t *testing.T) {
		_, err := execute(t, strings.NewReader("a"), "vocab", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestCooccurCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	vocabPath := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte("a 3\nb 2\nc 1\n"), 0o600))

	out, err := execute(t, strings.NewReader("a b a c\nb a"),
		"cooccur",
		"--vocab-file", vocabPath,
		"--overflow-file", filepath.Join(t.TempDir(), "overflow"),
		"--window-size", "2",
		"--memory", "0.01",
		"--verbose", "0",
	)
	require.NoError(t, err)

	records := decodeRecords(t, strings.NewReader(out))
	want := []crec.Record{
		{Word1: 1, Word2: 1, Val: 1.0},
		{Word1: 1, Word2: 2, Val: 3.0},
		{Word1: 1, Word2: 3, Val: 1.0},
		{Word1: 2, Word2: 1, Val: 3.0},
		{Word1: 2, Word2: 3, Val: 0.5},
		{Word1: 3, Word2: 1, Val: 1.0},
		{Word1: 3, Word2: 2, Val: 0.5},
	}
	assert.Equal(t, want, records)
}

func TestShuffleCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	input := []crec.Record{
		{Word1: 1, Word2: 1, Val: 1},
		{Word1: 1, Word2: 2, Val: 2},
		{Word1: 2, Word2: 1, Val: 3},
		{Word1: 2, Word2: 2, Val: 4},
		{Word1: 3, Word2: 1, Val: 5},
	}

	var in bytes.Buffer

	w := crec.NewWriter(&in)
	for _, rec := range input {
		require.NoError(t, w.Write(rec))
	}

	require.NoError(t, w.Flush())

	out, err := execute(t, &in,
		"shuffle",
		"--temp-file", filepath.Join(t.TempDir(), "temp_shuffle"),
		"--array-size", "2",
		"--seed", "7",
		"--verbose", "0",
	)
	require.NoError(t, err)

	got := decodeRecords(t, strings.NewReader(out))
	require.Len(t, got, len(input))

	sortByKey := func(records []crec.Record) {
		sort.Slice(records, func(i, j int) bool { return records[i].Less(records[j]) })
	}

	wantSorted := append([]crec.Record(nil), input...)
	sortByKey(wantSorted)
	sortByKey(got)
	assert.Equal(t, wantSorted, got)
}

func TestShuffleCommandRejectsNegativeSeed(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, strings.NewReader(""), "shuffle", "--seed", "-1", "--array-size", "4")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, nil, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "vocab_file: vocab.txt")
	assert.Contains(t, out, "window_size: 15")
	assert.Contains(t, out, "temp_file: temp_shuffle")
}

func decodeRecords(t *testing.T, r io.Reader) []crec.Record {
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
