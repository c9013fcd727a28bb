package crec

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// RunPath returns the name of the index-th intermediate run file for the
// given prefix, e.g. "overflow_0003.bin".
func RunPath(prefix string, index int) string {
	return fmt.Sprintf("%s_%04d.bin", prefix, index)
}

// Writer writes records to an underlying stream through a buffer.
// Close on a file-backed Writer flushes before closing the file.
type Writer struct {
	bw   *bufio.Writer
	file *os.File
	buf  [RecordSize]byte
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// CreateRun creates (truncating) the index-th run file for prefix and
// returns a Writer on it.
func CreateRun(prefix string, index int) (*Writer, error) {
	path := RunPath(prefix, index)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run file %s: %w", path, err)
	}

	return &Writer{bw: bufio.NewWriter(f), file: f}, nil
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	return WriteRecord(w.bw, w.buf[:], rec)
}

// Flush forces buffered records to the underlying stream.
func (w *Writer) Flush() error {
	err := w.bw.Flush()
	if err != nil {
		return fmt.Errorf("flush records: %w", err)
	}

	return nil
}

// Close flushes and, for file-backed writers, closes the file.
func (w *Writer) Close() error {
	err := w.Flush()

	if w.file != nil {
		closeErr := w.file.Close()

		if err == nil && closeErr != nil {
			err = fmt.Errorf("close run file: %w", closeErr)
		}
	}

	return err
}

// Reader reads records from an underlying stream through a buffer.
type Reader struct {
	br   *bufio.Reader
	file *os.File
	buf  [RecordSize]byte
}

// NewReader returns a Reader consuming from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// OpenRun opens the index-th run file for prefix and returns a Reader on it.
func OpenRun(prefix string, index int) (*Reader, error) {
	path := RunPath(prefix, index)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run file %s: %w", path, err)
	}

	return &Reader{br: bufio.NewReader(f), file: f}, nil
}

// Read returns the next record. It returns io.EOF at a clean end of stream
// and ErrTruncatedRecord when the stream ends mid-record.
func (r *Reader) Read() (Record, error) {
	return ReadRecord(r.br, r.buf[:])
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	if err != nil {
		return fmt.Errorf("close run file: %w", err)
	}

	return nil
}

// RemoveRuns deletes run files [0, count) for prefix. The first error is
// returned but removal continues for the remaining files.
func RemoveRuns(prefix string, count int) error {
	var firstErr error

	for i := range count {
		err := os.Remove(RunPath(prefix, i))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove run file: %w", err)
		}
	}

	return firstErr
}
