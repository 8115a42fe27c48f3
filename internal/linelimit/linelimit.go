// Package linelimit reads newline-delimited text while bounding how much of
// any single line is kept in memory, discarding the remainder of an
// oversized line rather than growing without bound.
package linelimit

import (
	"bufio"
	"errors"
	"io"
)

// Reader wraps a *bufio.Reader and reads one line at a time, truncating at
// maxBytes and discarding the rest of the line up to (and including) the
// next newline.
type Reader struct {
	br *bufio.Reader
}

// New wraps r for line-limited reading.
func New(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns up to maxBytes of the next line (excluding the trailing
// newline), with truncated set if the line was longer than maxBytes. err is
// io.EOF when the stream ends with no more data; a partial final line
// without a trailing newline is still returned with a nil error and EOF
// reported on the next call.
func (r *Reader) ReadLine(maxBytes int) (line []byte, truncated bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, rerr := r.br.ReadLine()
		if len(chunk) > 0 {
			if len(buf) < maxBytes {
				room := maxBytes - len(buf)
				if len(chunk) <= room {
					buf = append(buf, chunk...)
				} else {
					buf = append(buf, chunk[:room]...)
					truncated = true
				}
			} else {
				truncated = true
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) && len(buf) > 0 {
				return buf, truncated, nil
			}
			return buf, truncated, rerr
		}
		if !isPrefix {
			return buf, truncated, nil
		}
	}
}
