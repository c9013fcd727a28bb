package cooc

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

func TestOverflowNearCapacity(t *testing.T) {
	t.Parallel()

	o := NewOverflow(10)

	for range 7 {
		o.Append(crec.Record{Word1: 1, Word2: 1, Val: 1})
	}

	assert.False(t, o.NearCapacity(2))

	o.Append(crec.Record{Word1: 1, Word2: 1, Val: 1})
	assert.True(t, o.NearCapacity(2))
}

func TestOverflowFlushSortsAndDedups(t *testing.T) {
	t.Parallel()

	prefix := filepath.Join(t.TempDir(), "overflow")
	o := NewOverflow(100)

	o.Append(crec.Record{Word1: 2, Word2: 1, Val: 0.5})
	o.Append(crec.Record{Word1: 1, Word2: 3, Val: 1.0})
	o.Append(crec.Record{Word1: 2, Word2: 1, Val: 0.25})
	o.Append(crec.Record{Word1: 1, Word2: 2, Val: 1.0})

	require.NoError(t, o.FlushToRun(prefix, 1))
	assert.Equal(t, 0, o.Len())

	r, err := crec.OpenRun(prefix, 1)
	require.NoError(t, err)

	defer r.Close()

	var got []crec.Record

	for {
		rec, readErr := r.Read()
		if readErr != nil {
			require.ErrorIs(t, readErr, io.EOF)

			break
		}

		got = append(got, rec)
	}

	want := []crec.Record{
		{Word1: 1, Word2: 2, Val: 1.0},
		{Word1: 1, Word2: 3, Val: 1.0},
		{Word1: 2, Word2: 1, Val: 0.75},
	}
	assert.Equal(t, want, got)
}

func TestOverflowFlushEmptyWritesRun(t *testing.T) {
	t.Parallel()

	prefix := filepath.Join(t.TempDir(), "overflow")
	o := NewOverflow(10)

	require.NoError(t, o.FlushToRun(prefix, 1))

	r, err := crec.OpenRun(prefix, 1)
	require.NoError(t, err)

	defer r.Close()

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}
