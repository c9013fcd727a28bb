package cooc

import (
	"sort"

	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

// Overflow buffers sparse co-occurrence contributions until they spill to a
// sorted, deduplicated run file.
//
// Capacity carries one slot of slack. The near-capacity check runs only
// before each token, and a symmetric token appends up to twice the window
// width, so the buffer may exceed its nominal length by up to window-1
// records before the next flush; append grows the slice past the slack slot
// when needed.
type Overflow struct {
	buf    []crec.Record
	length int64
}

// NewOverflow returns a buffer with the given nominal capacity.
func NewOverflow(length int64) *Overflow {
	return &Overflow{
		buf:    make([]crec.Record, 0, length+1),
		length: length,
	}
}

// Append adds one sparse contribution.
func (o *Overflow) Append(rec crec.Record) {
	o.buf = append(o.buf, rec)
}

// NearCapacity reports whether at most one window width of nominal slots
// remains.
func (o *Overflow) NearCapacity(window int) bool {
	return int64(len(o.buf)) >= o.length-int64(window)
}

// Len returns the number of buffered records.
func (o *Overflow) Len() int {
	return len(o.buf)
}

// FlushToRun sorts the buffer, combines adjacent duplicates, writes the
// result as run file index for prefix, and clears the buffer. An empty
// buffer still produces the (empty) run file, keeping run numbering dense.
func (o *Overflow) FlushToRun(prefix string, index int) error {
	w, err := crec.CreateRun(prefix, index)
	if err != nil {
		return err
	}

	err = writeSortedChunk(o.buf, w)

	closeErr := w.Close()

	if err == nil {
		err = closeErr
	}

	if err != nil {
		return err
	}

	o.buf = o.buf[:0]

	return nil
}

// writeSortedChunk sorts records by (Word1, Word2), merges adjacent
// duplicates by summing their weights, and writes the result to w.
func writeSortedChunk(records []crec.Record, w *crec.Writer) error {
	if len(records) == 0 {
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Less(records[j])
	})

	old := records[0]

	for _, rec := range records[1:] {
		if rec.SameKey(old) {
			old.Val += rec.Val

			continue
		}

		err := w.Write(old)
		if err != nil {
			return err
		}

		old = rec
	}

	return w.Write(old)
}
