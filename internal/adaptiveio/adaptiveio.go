// Package adaptiveio adapts a raw bidirectional byte stream (stdin/stdout by
// default) so that whatever message framing the peer speaks on the wire —
// newline-delimited JSON or LSP-style Content-Length headers — is translated
// into the canonical newline-delimited JSON stream the MCP server machinery
// expects, and replies are translated back into the peer's own framing.
// Detection happens once, from the peer's first message, and is shared
// between the read and write sides so a client that opens with LSP framing
// gets LSP framing back for every response.
package adaptiveio

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"mcp-launch/internal/framing"
)

// Stream wraps a raw connection and exposes Reader/Writer sides speaking
// canonical newline-delimited JSON internally.
type Stream struct {
	in  io.Reader
	out io.Writer

	shared        *framing.SharedFormat
	maxLineLength int
}

// New wraps in/out with adaptive framing translation.
func New(in io.Reader, out io.Writer) *Stream {
	return &Stream{in: in, out: out, shared: framing.NewSharedFormat(), maxLineLength: -1}
}

// SetMaxLineLength bounds JsonLines message size on the inbound side; lines
// longer than n are discarded rather than ever reaching the server. A
// negative value (the default) means unbounded.
func (s *Stream) SetMaxLineLength(n int) { s.maxLineLength = n }

// DetectedFormat reports the framing detected from the peer, if any has been
// detected yet.
func (s *Stream) DetectedFormat() (framing.Format, bool) { return s.shared.TryGet() }

// Reader returns an io.Reader presenting one complete JSON message per line
// regardless of how the peer actually framed it on the wire. The returned
// reader is backed by a goroutine that pumps bytes off the underlying
// connection as soon as Reader is called; callers should call it at most
// once.
func (s *Stream) Reader() io.Reader {
	pr, pw := io.Pipe()
	dec := framing.NewDecoder(s.shared)
	if s.maxLineLength >= 0 {
		dec.SetMaxLineLength(s.maxLineLength)
	}
	go pumpIn(s.in, pw, dec)
	return pr
}

// Writer returns an io.Writer that accepts canonical newline-delimited JSON
// (one message per Write call, trailing newline optional) and re-encodes
// each message using whichever framing Reader's pump detected on the peer,
// defaulting to JsonLines until something has been detected.
func (s *Stream) Writer() io.Writer {
	return &outWriter{
		underlying: s.out,
		enc:        framing.NewEncoder(s.shared),
		dec:        framing.NewDecoder(nil),
	}
}

func pumpIn(r io.Reader, pw *io.PipeWriter, dec *framing.Decoder) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				var raw json.RawMessage
				ok, decErr := dec.Decode(&raw)
				if decErr != nil {
					if errors.Is(decErr, framing.ErrMaxLineLengthExceeded) {
						continue
					}
					pw.CloseWithError(decErr)
					return
				}
				if !ok {
					break
				}
				line := append(append([]byte(nil), raw...), '\n')
				if _, werr := pw.Write(line); werr != nil {
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				pw.Close()
			} else {
				pw.CloseWithError(err)
			}
			return
		}
	}
}

type outWriter struct {
	underlying io.Writer
	enc        *framing.Encoder
	dec        *framing.Decoder
}

func (w *outWriter) Write(p []byte) (int, error) {
	w.dec.Feed(p)
	var out []byte
	for {
		var raw json.RawMessage
		ok, err := w.dec.Decode(&raw)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		out, err = w.enc.Encode(out, raw)
		if err != nil {
			return 0, err
		}
	}
	if len(out) > 0 {
		if _, err := w.underlying.Write(out); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// InstallStdio replaces the process's os.Stdin/os.Stdout with a pipe pair
// driven by a Stream wrapping the real stdin/stdout, so that any code
// downstream (an MCP transport that reads/writes os.Stdin/os.Stdout
// directly) transparently gets the canonical newline-delimited JSON view
// while the peer outside the process can speak either JsonLines or LSP
// framing. Restore undoes the substitution; callers should defer it.
func InstallStdio() (restore func(), err error) {
	realIn, realOut := os.Stdin, os.Stdout

	inRead, inWrite, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	outRead, outWrite, err := os.Pipe()
	if err != nil {
		inRead.Close()
		inWrite.Close()
		return nil, err
	}

	stream := New(realIn, realOut)
	dec := framing.NewDecoder(stream.shared)
	go pumpIn(realIn, inWrite, dec)
	go pumpOut(outRead, stream.Writer())

	os.Stdin = inRead
	os.Stdout = outWrite

	return func() {
		os.Stdin = realIn
		os.Stdout = realOut
		inWrite.Close()
		outRead.Close()
	}, nil
}

func pumpOut(r io.Reader, w io.Writer) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
