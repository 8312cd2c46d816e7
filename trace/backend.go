package trace

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/apm/protocol"
	"github.com/tinylib/msgp/msgp"
)

// DefaultBackoff is the initial wait time between reconnection
// attempts. Subsequent wait times add this backoff to the time they
// wait.
const DefaultBackoff = 20 * time.Millisecond

// DefaultMaxBackoff defaults to 1 second. No reconnection attempt
// wait interval will be longer than this.
const DefaultMaxBackoff = 1 * time.Second

// DefaultConnectTimeout is 10 seconds. If (re)connecting to a
// collector would take longer than this, the span record is
// discarded.
const DefaultConnectTimeout = 10 * time.Second

// BufferSize is the default size of a stream backend's buffer. It
// accommodates the largest framed span record.
const BufferSize int = int(protocol.MaxFrameLength + protocol.FrameHeaderLength)

// ClientBackend represents the ability of a client to transport span
// records to a collector. Backends are only ever used from the
// client's single worker goroutine.
type ClientBackend interface {
	io.Closer

	// SendSync synchronously sends a span record to the
	// collector. Implementations that buffer may return before
	// the record hits the network.
	SendSync(ctx context.Context, rec *SpanRecord) error
}

// FlushableClientBackend is a ClientBackend that buffers records and
// can be asked to send everything it holds.
type FlushableClientBackend interface {
	ClientBackend

	// FlushSync causes all (potentially) buffered data to be sent
	// to the collector.
	FlushSync(ctx context.Context) error
}

type backendParams struct {
	addr           net.Addr
	backoff        time.Duration
	maxBackoff     time.Duration
	connectTimeout time.Duration
	bufferSize     uint
}

// packetBackend represents a datagram connection to a collector. Each
// record is sent as one msgpack encoded packet. It does no buffering.
type packetBackend struct {
	backendParams
	conn net.Conn
}

func (s *packetBackend) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *packetBackend) SendSync(ctx context.Context, rec *SpanRecord) error {
	if s.conn == nil {
		conn, err := connect(ctx, &s.backendParams)
		if err != nil {
			return err
		}
		s.conn = conn
	}

	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

var _ ClientBackend = &packetBackend{}

// streamBackend sends framed records over a streaming connection
// (UNIX domain or TCP sockets), optionally through a buffer.
type streamBackend struct {
	backendParams
	conn   net.Conn
	output io.Writer
	buffer *bufio.Writer
}

func (ds *streamBackend) connection(conn net.Conn) {
	ds.conn = conn
	ds.output = conn
	if ds.bufferSize > 0 {
		ds.buffer = bufio.NewWriterSize(conn, int(ds.bufferSize))
		ds.output = ds.buffer
	}
}

// SendSync writes the framed record to the connection. If it
// encounters a framing error, it drops the connection; the next send
// re-establishes it.
func (ds *streamBackend) SendSync(ctx context.Context, rec *SpanRecord) error {
	if ds.conn == nil {
		conn, err := connect(ctx, &ds.backendParams)
		if err != nil {
			return err
		}
		ds.connection(conn)
	}
	_, err := protocol.WriteFrame(ds.output, rec)
	if err == nil {
		return nil
	}
	err = errors.Wrapf(err, "sending span %d to %s", rec.SpanID, ds.addr)
	if protocol.IsFramingError(err) {
		_ = ds.conn.Close()
		ds.conn = nil
	}
	return err
}

func (ds *streamBackend) Close() error {
	if ds.conn == nil {
		return nil
	}
	if ds.buffer != nil {
		_ = ds.buffer.Flush()
	}
	return ds.conn.Close()
}

// FlushSync flushes the buffer if one exists. If the connection was
// dropped before flushing, FlushSync re-establishes it.
func (ds *streamBackend) FlushSync(ctx context.Context) error {
	if ds.buffer == nil {
		return nil
	}
	if ds.conn == nil {
		conn, err := connect(ctx, &ds.backendParams)
		if err != nil {
			return err
		}
		ds.connection(conn)
	}
	err := ds.buffer.Flush()
	if err != nil {
		// buffer is poisoned, and we have no idea if the
		// connection is still valid. We better reconnect.
		_ = ds.conn.Close()
		ds.conn = nil
	}
	return err
}

var _ FlushableClientBackend = &streamBackend{}

// connect dials params.addr, backing off linearly between attempts,
// until it succeeds or the connect timeout expires.
func connect(ctx context.Context, params *backendParams) (net.Conn, error) {
	dialer := net.Dialer{}

	backoff := params.backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	maxBackoff := params.maxBackoff
	if maxBackoff == 0 {
		maxBackoff = DefaultMaxBackoff
	}
	connectTimeout := params.connectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var wait time.Duration
	for {
		conn, err := dialer.DialContext(ctx, params.addr.Network(), params.addr.String())
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
			wait += backoff
			if wait > maxBackoff {
				wait = maxBackoff
			}
		}
	}
}

// MarshalBinary encodes the record as a standalone msgpack document.
func (r *SpanRecord) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := msgp.Encode(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
