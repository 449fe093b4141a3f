package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/zusictl/internal/protocol"
)

const maxStage = 64 * 1024

// ErrDesync is returned by a Conn once a read failed part-way through a
// message. The stream no longer sits on a message boundary.
var ErrDesync = errors.New("frame: stream out of sync")

// Flusher is implemented by buffered streams.
type Flusher interface {
	Flush() error
}

// WriteFrame encodes one complete message to w and flushes after the
// outermost end-of-node marker. When w does not buffer on its own, the
// message is staged in a bufio.Writer so it leaves in as few writes as
// possible.
func WriteFrame(w io.Writer, n *protocol.Node) error {
	if n == nil {
		return protocol.ErrNilNode
	}
	if f, ok := w.(Flusher); ok {
		if err := protocol.Encode(w, n); err != nil {
			return err
		}
		return f.Flush()
	}
	bw := bufio.NewWriterSize(w, min(protocol.EncodedLen(n), maxStage))
	if err := protocol.Encode(bw, n); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFrame decodes one complete message from r. r is read exactly up to the
// message's final end-of-node marker.
func ReadFrame(r io.Reader, limits protocol.Limits) (protocol.Node, error) {
	return protocol.DecodeWithLimits(r, limits)
}

// Stats counts traffic on a Conn.
type Stats struct {
	MessagesIn  uint64
	MessagesOut uint64
	BytesIn     uint64
	BytesOut    uint64
}

// Conn is a buffered message stream over a caller-owned transport. It is
// not safe for concurrent use.
type Conn struct {
	r      *bufio.Reader
	w      *bufio.Writer
	in     *countingReader
	out    *countingWriter
	msg    *countingReader
	limits protocol.Limits
	stats  Stats
	rerr   error
}

func NewConn(rw io.ReadWriter, limits protocol.Limits) *Conn {
	in := &countingReader{r: rw}
	out := &countingWriter{w: rw}
	r := bufio.NewReader(in)
	return &Conn{
		r:      r,
		w:      bufio.NewWriter(out),
		in:     in,
		out:    out,
		msg:    &countingReader{r: r},
		limits: limits,
	}
}

// Read reads buffered bytes from the transport.
func (c *Conn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Write stages p until the next Flush.
func (c *Conn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Flush writes staged bytes to the transport.
func (c *Conn) Flush() error {
	return c.w.Flush()
}

// WriteMessage writes n and flushes.
func (c *Conn) WriteMessage(n *protocol.Node) error {
	if err := WriteFrame(c, n); err != nil {
		return err
	}
	c.stats.MessagesOut++
	return nil
}

// ReadMessage reads the next complete message. A failure after the first
// byte of a message is sticky: every later call returns an ErrDesync error.
func (c *Conn) ReadMessage() (protocol.Node, error) {
	if c.rerr != nil {
		return protocol.Node{}, c.rerr
	}
	before := c.msg.n
	n, err := ReadFrame(c.msg, c.limits)
	if err != nil {
		if c.msg.n != before {
			c.rerr = fmt.Errorf("%w: read failed inside a message: %w", ErrDesync, err)
		}
		return protocol.Node{}, err
	}
	c.stats.MessagesIn++
	return n, nil
}

// Err returns the sticky read error, nil while the stream is in sync.
func (c *Conn) Err() error {
	return c.rerr
}

// Limits returns the decode limits applied by ReadMessage.
func (c *Conn) Limits() protocol.Limits {
	return c.limits
}

// Stats returns a snapshot of the traffic counters.
func (c *Conn) Stats() Stats {
	s := c.stats
	s.BytesIn = c.in.n
	s.BytesOut = c.out.n
	return s
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}
