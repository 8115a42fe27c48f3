// Package framing implements the adaptive stdio message framing used by the
// gateway: it auto-detects whether a peer speaks newline-delimited JSON
// ("JsonLines", the default MCP stdio wire format) or LSP-style
// Content-Length-prefixed framing, and replies in whatever format it detected.
package framing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Format is a detected or forced message framing.
type Format int

const (
	// Undetected means no bytes have been seen yet.
	Undetected Format = iota
	// JsonLines is newline-delimited JSON, one message per line.
	JsonLines
	// Lsp is Content-Length-prefixed framing as used by the Language Server Protocol.
	Lsp
)

func (f Format) String() string {
	switch f {
	case JsonLines:
		return "JsonLines"
	case Lsp:
		return "Lsp"
	default:
		return "Undetected"
	}
}

// ErrMaxLineLengthExceeded is returned by Decoder.Decode when a JsonLines
// message exceeds the configured MaxLineLength and the offending line has
// been discarded.
var ErrMaxLineLengthExceeded = errors.New("framing: max line length exceeded")

// SharedFormat is a first-writer-wins cell shared between a connection's
// decoder and encoder so that once either side detects the peer's framing,
// the other side adopts it for replies. Detection races are resolved with a
// non-blocking TryLock: a side that cannot acquire the lock immediately
// simply keeps its own pending detection and tries again later, mirroring
// the try_write/try_read semantics of the original shared RwLock cell.
type SharedFormat struct {
	mu    sync.Mutex
	value Format
}

// NewSharedFormat returns an empty shared-format cell.
func NewSharedFormat() *SharedFormat {
	return &SharedFormat{value: Undetected}
}

// TrySet stores format if the lock is immediately available and no format
// has been stored yet; the first stored format is kept. It never blocks;
// if the lock is contended the store is simply skipped, matching the
// original's "encoder will get the format on next attempt" behavior.
func (s *SharedFormat) TrySet(format Format) {
	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()
	if s.value == Undetected {
		s.value = format
	}
}

// TryGet returns the stored format and whether the lock was acquired and a
// format had been set. It never blocks.
func (s *SharedFormat) TryGet() (Format, bool) {
	if !s.mu.TryLock() {
		return Undetected, false
	}
	defer s.mu.Unlock()
	if s.value == Undetected {
		return Undetected, false
	}
	return s.value, true
}

// DetectFormat peeks at buf (which may be a prefix of the full message) and
// returns the detected format, or Undetected if more data is required before
// a determination can be made.
func DetectFormat(buf []byte) (Format, bool) {
	start := 0
	for start < len(buf) && isASCIISpace(buf[start]) {
		start++
	}
	if start >= len(buf) {
		return Undetected, false
	}

	first := buf[start]
	if first == 'C' {
		rest := buf[start:]
		const prefix = "Content-Length:"
		if len(rest) >= len(prefix) {
			if strings.HasPrefix(string(rest), prefix) {
				return Lsp, true
			}
		} else {
			// Could still be a partial "Content-Length:", need more data.
			if len(rest) < 15 {
				return Undetected, false
			}
		}
	}

	if first == '{' {
		return JsonLines, true
	}

	// Unknown leading byte: default to JsonLines, matching the original.
	return JsonLines, true
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// ParseLspHeaders looks for the header/body separator "\r\n\r\n" in buf and,
// if found, returns the parsed Content-Length value and the byte offset
// where the body begins. ok is false if the separator has not arrived yet or
// no Content-Length header is present.
func ParseLspHeaders(buf []byte) (contentLength int, bodyStart int, ok bool) {
	sep := []byte("\r\n\r\n")
	idx := bytes.Index(buf, sep)
	if idx < 0 {
		return 0, 0, false
	}
	header := string(buf[:idx])
	for _, line := range strings.Split(header, "\r\n") {
		line = strings.TrimSpace(line)
		value, found := strings.CutPrefix(line, "Content-Length:")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, 0, false
		}
		return n, idx + len(sep), true
	}
	return 0, 0, false
}

func withoutCarriageReturn(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

// Decoder incrementally decodes messages from a byte stream whose framing is
// auto-detected on the first message. It is not safe for concurrent use; a
// connection's read side owns one Decoder.
type Decoder struct {
	shared *SharedFormat

	format Format

	// JsonLines scanning state.
	maxLineLength int
	nextIndex     int
	discarding    bool

	// Lsp scanning state.
	expectedContentLength int
	haveExpectedLength    bool

	buf []byte
}

// NewDecoder returns a Decoder with no line-length limit. If shared is
// non-nil, the detected format is published to it for the paired Encoder.
func NewDecoder(shared *SharedFormat) *Decoder {
	return &Decoder{shared: shared, maxLineLength: -1}
}

// SetMaxLineLength bounds JsonLines message size; lines longer than n are
// discarded and ErrMaxLineLengthExceeded is returned once. A negative value
// means unbounded.
func (d *Decoder) SetMaxLineLength(n int) { d.maxLineLength = n }

// DetectedFormat reports the format this decoder has settled on, if any.
func (d *Decoder) DetectedFormat() (Format, bool) {
	if d.format == Undetected {
		return Undetected, false
	}
	return d.format, true
}

// Feed appends newly read bytes to the decoder's internal buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Decode attempts to pull one complete message out of the buffered bytes.
// ok is false when more data must be Fed before a message is available. A
// non-nil error other than ErrMaxLineLengthExceeded indicates malformed JSON
// and is unrecoverable for that message.
func (d *Decoder) Decode(v any) (ok bool, err error) {
	if len(d.buf) == 0 {
		return false, nil
	}

	if d.format == Undetected {
		f, detected := DetectFormat(d.buf)
		if !detected {
			return false, nil
		}
		d.format = f
	}
	if d.shared != nil {
		d.shared.TrySet(d.format)
	}

	switch d.format {
	case Lsp:
		return d.decodeLsp(v)
	default:
		return d.decodeJSONLines(v)
	}
}

func (d *Decoder) decodeLsp(v any) (bool, error) {
	for {
		if d.haveExpectedLength {
			if len(d.buf) >= d.expectedContentLength {
				body := d.buf[:d.expectedContentLength]
				d.buf = d.buf[d.expectedContentLength:]
				d.haveExpectedLength = false
				d.expectedContentLength = 0
				if err := json.Unmarshal(body, v); err != nil {
					return false, fmt.Errorf("framing: decode lsp body: %w", err)
				}
				return true, nil
			}
			return false, nil
		}

		length, bodyStart, ok := ParseLspHeaders(d.buf)
		if !ok {
			return false, nil
		}
		d.buf = d.buf[bodyStart:]
		d.expectedContentLength = length
		d.haveExpectedLength = true
	}
}

func (d *Decoder) decodeJSONLines(v any) (bool, error) {
	for {
		readTo := len(d.buf)
		if d.maxLineLength >= 0 {
			limit := d.maxLineLength + 1
			if limit < readTo {
				readTo = limit
			}
		}
		if d.nextIndex > readTo {
			d.nextIndex = readTo
		}

		var newlineOffset = -1
		for i := d.nextIndex; i < readTo; i++ {
			if d.buf[i] == '\n' {
				newlineOffset = i - d.nextIndex
				break
			}
		}

		switch {
		case d.discarding && newlineOffset >= 0:
			d.buf = d.buf[newlineOffset+d.nextIndex+1:]
			d.discarding = false
			d.nextIndex = 0
		case d.discarding && newlineOffset < 0:
			d.buf = d.buf[readTo:]
			d.nextIndex = 0
			if len(d.buf) == 0 {
				return false, nil
			}
		case !d.discarding && newlineOffset >= 0:
			newlineIndex := newlineOffset + d.nextIndex
			d.nextIndex = 0
			line := d.buf[:newlineIndex]
			d.buf = d.buf[newlineIndex+1:]
			line = withoutCarriageReturn(line)
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if err := json.Unmarshal(line, v); err != nil {
				return false, fmt.Errorf("framing: decode jsonl line: %w", err)
			}
			return true, nil
		case !d.discarding && d.maxLineLength >= 0 && len(d.buf) > d.maxLineLength:
			d.discarding = true
			return false, ErrMaxLineLengthExceeded
		default:
			d.nextIndex = readTo
			return false, nil
		}
	}
}

// Encoder serializes messages using either the format it was told to use
// directly, or (absent that) whatever the paired shared format cell has
// settled on, defaulting to JsonLines if neither is known yet — matching the
// original "local detected, else shared, else JsonLines" priority.
type Encoder struct {
	shared *SharedFormat
	format Format
}

// NewEncoder returns an Encoder that consults shared for its framing once a
// peer format has been detected.
func NewEncoder(shared *SharedFormat) *Encoder {
	return &Encoder{shared: shared}
}

// SetFormat pins the encoder to a specific format, bypassing the shared cell.
func (e *Encoder) SetFormat(f Format) { e.format = f }

// Encode serializes v and appends the framed bytes to dst, returning the
// extended slice.
func (e *Encoder) Encode(dst []byte, v any) ([]byte, error) {
	format := e.format
	if format == Undetected && e.shared != nil {
		if f, ok := e.shared.TryGet(); ok {
			format = f
		}
	}
	if format == Undetected {
		format = JsonLines
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return dst, fmt.Errorf("framing: marshal: %w", err)
	}

	switch format {
	case Lsp:
		header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
		dst = append(dst, header...)
		dst = append(dst, payload...)
	default:
		dst = append(dst, payload...)
		dst = append(dst, '\n')
	}
	return dst, nil
}
