package adaptiveio

import (
	"bufio"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-launch/internal/framing"
)

func TestStreamReaderTranslatesJsonLinesToCanonical(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"ping"}` + "\n")
	s := New(in, io.Discard)

	r := bufio.NewReader(s.Reader())
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","method":"ping"}`+"\n", line)
}

func TestStreamReaderTranslatesLspToCanonical(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"ping"}`
	in := bytes.NewBufferString("Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body)
	s := New(in, io.Discard)

	r := bufio.NewReader(s.Reader())
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, body+"\n", line)
}

func TestStreamWriterRepliesInDetectedFraming(t *testing.T) {
	in := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"ping"}` + "\n")
	var out bytes.Buffer
	s := New(in, &out)

	rd := bufio.NewReader(s.Reader())
	_, err := rd.ReadString('\n')
	require.NoError(t, err)

	// Give the shared-format cell time to settle; TrySet is non-blocking so
	// a slow scheduler could in principle delay it past the read above.
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := s.DetectedFormat(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("format never detected")
		}
		time.Sleep(time.Millisecond)
	}

	w := s.Writer()
	_, err = w.Write([]byte(`{"jsonrpc":"2.0","result":{}}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","result":{}}`+"\n", out.String())
}

func TestStreamWriterUsesLspFramingWhenDetected(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"ping"}`
	in := bytes.NewBufferString("Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body)
	var out bytes.Buffer
	s := New(in, &out)

	rd := bufio.NewReader(s.Reader())
	_, err := rd.ReadString('\n')
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for {
		if f, ok := s.DetectedFormat(); ok {
			assert.Equal(t, framing.Lsp, f)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("format never detected")
		}
		time.Sleep(time.Millisecond)
	}

	w := s.Writer()
	reply := `{"jsonrpc":"2.0","result":{}}`
	_, err = w.Write([]byte(reply + "\n"))
	require.NoError(t, err)
	assert.Equal(t, "Content-Length: "+itoa(len(reply))+"\r\n\r\n"+reply, out.String())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
