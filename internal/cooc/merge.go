package cooc

import (
	"container/heap"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/cofreq/pkg/crec"
)

// mergeProgressInterval is the written-record count between progress logs.
const mergeProgressInterval = 100000

// mergeItem is one buffered record tagged with its source run index.
type mergeItem struct {
	rec crec.Record
	src int
}

// mergeHeap is a min-heap over (Word1, Word2) with ties broken on the
// source run index, which keeps duplicate merging stable across runs.
type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if c := h[i].rec.Compare(h[j].rec); c != 0 {
		return c < 0
	}

	return h[i].src < h[j].src
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(mergeItem))
}

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// MergeRuns combines run files [0, numRuns) for prefix into one sorted,
// duplicate-free record stream on out and returns the number of records
// written. Empty run files are tolerated; a partial record in any run is
// fatal. Run files are deleted only on success.
func MergeRuns(prefix string, numRuns int, out io.Writer, logger *slog.Logger) (int64, error) {
	readers := make([]*crec.Reader, numRuns)

	defer func() {
		for _, r := range readers {
			if r != nil {
				r.Close()
			}
		}
	}()

	h := make(mergeHeap, 0, numRuns)

	for i := range numRuns {
		r, err := crec.OpenRun(prefix, i)
		if err != nil {
			return 0, err
		}

		readers[i] = r

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			continue
		}

		if err != nil {
			return 0, fmt.Errorf("prime run %d: %w", i, err)
		}

		h = append(h, mergeItem{rec: rec, src: i})
	}

	heap.Init(&h)

	w := crec.NewWriter(out)

	var written int64

	pop := func() (mergeItem, error) {
		item := heap.Pop(&h).(mergeItem)

		next, err := readers[item.src].Read()
		if errors.Is(err, io.EOF) {
			return item, nil
		}

		if err != nil {
			return item, fmt.Errorf("read run %d: %w", item.src, err)
		}

		heap.Push(&h, mergeItem{rec: next, src: item.src})

		return item, nil
	}

	if h.Len() == 0 {
		// All runs empty: an empty corpus yields an empty output.
		err := w.Flush()
		if err != nil {
			return 0, err
		}

		for i, r := range readers {
			err = r.Close()
			readers[i] = nil

			if err != nil {
				return 0, err
			}
		}

		return 0, crec.RemoveRuns(prefix, numRuns)
	}

	old, err := pop()
	if err != nil {
		return 0, err
	}

	for h.Len() > 0 {
		item, popErr := pop()
		if popErr != nil {
			return written, popErr
		}

		if item.rec.SameKey(old.rec) {
			old.rec.Val += item.rec.Val

			continue
		}

		err = w.Write(old.rec)
		if err != nil {
			return written, err
		}

		old = item

		written++
		if written%mergeProgressInterval == 0 {
			logger.Debug("merging runs", "records", humanize.Comma(written))
		}
	}

	err = w.Write(old.rec)
	if err != nil {
		return written, err
	}

	written++

	err = w.Flush()
	if err != nil {
		return written, err
	}

	for i, r := range readers {
		err = r.Close()
		readers[i] = nil

		if err != nil {
			return written, err
		}
	}

	err = crec.RemoveRuns(prefix, numRuns)
	if err != nil {
		return written, err
	}

	logger.Info("merge complete", "runs", numRuns, "records", humanize.Comma(written))

	return written, nil
}
