// Package textio provides byte-level tokenization of whitespace-delimited
// corpora. Tokens are opaque byte runs separated by space, tab, or newline;
// carriage returns are discarded and no Unicode segmentation is performed.
package textio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MaxTokenLength is the maximum token length in bytes. Longer runs are
// truncated to this length and the remainder of the run is dropped.
const MaxTokenLength = 1000

// Scanner reads whitespace-delimited tokens from a byte stream.
//
// A newline that arrives with no accumulated token bytes is reported as a
// line break; a newline that terminates a token is deferred so the token is
// returned first and the line break on the next call.
type Scanner struct {
	r   *bufio.Reader
	tok []byte
}

// NewScanner returns a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r:   bufio.NewReader(r),
		tok: make([]byte, 0, MaxTokenLength),
	}
}

// Next returns the next token, or lineBreak=true at an empty-token newline.
// The returned slice is reused by subsequent calls. A final token that runs
// into EOF is returned normally; the following call reports io.EOF.
func (s *Scanner) Next() (token []byte, lineBreak bool, err error) {
	s.tok = s.tok[:0]

	for {
		ch, err := s.r.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, false, fmt.Errorf("read corpus: %w", err)
			}

			if len(s.tok) > 0 {
				return s.tok, false, nil
			}

			return nil, false, io.EOF
		}

		switch ch {
		case '\r':
			continue
		case ' ', '\t', '\n':
			if len(s.tok) > 0 {
				// Defer a token-terminating newline so the caller sees the
				// token before the line break.
				if ch == '\n' {
					_ = s.r.UnreadByte()
				}

				return s.tok, false, nil
			}

			if ch == '\n' {
				return nil, true, nil
			}
		default:
			if len(s.tok) < MaxTokenLength {
				s.tok = append(s.tok, ch)
			}
		}
	}
}
