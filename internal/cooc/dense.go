// Package cooc accumulates weighted word-word co-occurrence counts in a
// single streaming pass over the corpus.
//
// Pairs of frequent words (rank product below a cutoff) accumulate in a
// packed in-memory region; the sparse rest buffers in memory and spills to
// sorted, deduplicated run files, which an external k-way merge combines
// with the dense region into one sorted stream.
package cooc

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
	"github.com/Sumatoshi-tech/cofreq/pkg/safeconv"
)

// ErrVocabTooLarge indicates the vocabulary exceeds the rank range of the
// record layout.
var ErrVocabTooLarge = errors.New("vocabulary too large for record layout")

// Dense is the packed table of co-occurrence weights for word pairs whose
// rank product is below the cutoff.
//
// Row w1 reserves min(vocabSize, maxProduct/w1) cells, exactly the range of
// valid w2 values, and all rows pack into one flat allocation. A lookup
// table translates w1 into a row offset such that the cell for (w1, w2) is
// cells[lookup[w1-1]+w2-2]; lookup[0] = 1 biases the formula so (1, 1)
// lands on cell zero.
type Dense struct {
	lookup     []int64
	cells      []float64
	maxProduct int64
	vocabSize  int64
}

// NewDense builds the lookup table and zeroed cell region for the given
// vocabulary size and rank-product cutoff.
func NewDense(vocabSize, maxProduct int64) (*Dense, error) {
	if vocabSize < 0 || maxProduct < 1 {
		return nil, fmt.Errorf("invalid dense geometry: vocab %d, max product %d", vocabSize, maxProduct)
	}

	lookup := make([]int64, vocabSize+1)
	lookup[0] = 1

	for a := int64(1); a <= vocabSize; a++ {
		width := maxProduct / a
		if width >= vocabSize {
			width = vocabSize
		}

		lookup[a] = lookup[a-1] + width
	}

	return &Dense{
		lookup:     lookup,
		cells:      make([]float64, lookup[vocabSize]),
		maxProduct: maxProduct,
		vocabSize:  vocabSize,
	}, nil
}

// Contains reports whether the ordered pair (w1, w2) belongs to the dense
// region. The predicate uses truncating division, mirroring the row widths
// reserved by the lookup table.
func (d *Dense) Contains(w1, w2 int64) bool {
	return w1 < d.maxProduct/w2
}

// Add accumulates weight at (w1, w2). The caller must have checked
// Contains for the pair (or its mirror, which shares the same product).
func (d *Dense) Add(w1, w2 int64, weight float64) {
	d.cells[d.lookup[w1-1]+w2-2] += weight
}

// Cells returns the total number of reserved cells.
func (d *Dense) Cells() int64 {
	return d.lookup[d.vocabSize]
}

// rowWidth returns the number of w2 cells reserved for row w1.
func (d *Dense) rowWidth(w1 int64) int64 {
	return d.lookup[w1] - d.lookup[w1-1]
}

// WriteTo emits every nonzero cell as a sorted record stream on w.
func (d *Dense) WriteTo(w *crec.Writer) error {
	for x := int64(1); x <= d.vocabSize; x++ {
		base := d.lookup[x-1] - 2

		for y := int64(1); y <= d.rowWidth(x); y++ {
			v := d.cells[base+y]
			if v == 0 {
				continue
			}

			err := w.Write(crec.Record{
				Word1: safeconv.MustInt64ToInt32(x),
				Word2: safeconv.MustInt64ToInt32(y),
				Val:   v,
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
