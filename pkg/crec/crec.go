// Package crec defines the weighted co-occurrence record exchanged between
// pipeline stages and its fixed binary layout.
//
// A record is two 1-based frequency ranks plus a float64 weight, written in
// host byte order with no framing. The layout is shared by the accumulator
// output, the shuffler input/output, and every intermediate run file, and it
// is deliberately not portable across architectures.
package crec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// RecordSize is the on-disk and on-pipe size of one record in bytes:
// two int32 ranks followed by one float64 weight.
const RecordSize = 4 + 4 + 8

// ErrTruncatedRecord indicates a read that ended mid-record. A clean EOF on
// a record boundary is reported as io.EOF instead.
var ErrTruncatedRecord = errors.New("truncated co-occurrence record")

// Record is a weighted co-occurrence of two words identified by their
// 1-based frequency ranks. Records order lexicographically by (Word1, Word2);
// two records with equal ranks are duplicates and merge by summing Val.
type Record struct {
	Word1 int32
	Word2 int32
	Val   float64
}

// Less reports whether r sorts strictly before other in (Word1, Word2) order.
func (r Record) Less(other Record) bool {
	if r.Word1 != other.Word1 {
		return r.Word1 < other.Word1
	}

	return r.Word2 < other.Word2
}

// SameKey reports whether r and other refer to the same ordered word pair.
func (r Record) SameKey(other Record) bool {
	return r.Word1 == other.Word1 && r.Word2 == other.Word2
}

// Compare returns -1, 0, or +1 ordering r against other by (Word1, Word2).
func (r Record) Compare(other Record) int {
	switch {
	case r.Word1 != other.Word1 && r.Word1 < other.Word1:
		return -1
	case r.Word1 != other.Word1:
		return 1
	case r.Word2 < other.Word2:
		return -1
	case r.Word2 > other.Word2:
		return 1
	default:
		return 0
	}
}

// Marshal encodes r into buf, which must hold at least RecordSize bytes.
func (r Record) Marshal(buf []byte) {
	binary.NativeEndian.PutUint32(buf[0:4], uint32(r.Word1))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(r.Word2))
	binary.NativeEndian.PutUint64(buf[8:16], math.Float64bits(r.Val))
}

// Unmarshal decodes a record from buf, which must hold RecordSize bytes.
func Unmarshal(buf []byte) Record {
	return Record{
		Word1: int32(binary.NativeEndian.Uint32(buf[0:4])),
		Word2: int32(binary.NativeEndian.Uint32(buf[4:8])),
		Val:   math.Float64frombits(binary.NativeEndian.Uint64(buf[8:16])),
	}
}

// ReadRecord reads exactly one record from r. It returns io.EOF when the
// stream ends on a record boundary and ErrTruncatedRecord when it ends
// mid-record.
func ReadRecord(r io.Reader, buf []byte) (Record, error) {
	n, err := io.ReadFull(r, buf[:RecordSize])

	switch {
	case err == nil:
		return Unmarshal(buf), nil
	case errors.Is(err, io.EOF) && n == 0:
		return Record{}, io.EOF
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedRecord, n, RecordSize)
	default:
		return Record{}, fmt.Errorf("read record: %w", err)
	}
}

// WriteRecord writes one record to w.
func WriteRecord(w io.Writer, buf []byte, rec Record) error {
	rec.Marshal(buf[:RecordSize])

	_, err := w.Write(buf[:RecordSize])
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return nil
}
