package trace

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/apm/protocol"
)

func benchmarkPlainCombination(backend ClientBackend, rec *SpanRecord) func(*testing.B) {
	ctx := context.TODO()
	return func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			assert.NoError(b, backend.SendSync(ctx, rec))
		}
	}
}

func benchmarkFlushingCombination(backend FlushableClientBackend, rec *SpanRecord, every time.Duration) func(*testing.B) {
	return func(b *testing.B) {
		ctx := context.TODO()
		tick := time.NewTicker(every)
		defer tick.Stop()
		for i := 0; i < b.N; i++ {
			select {
			case <-tick.C:
				assert.NoError(b, backend.FlushSync(ctx))
			default:
				assert.NoError(b, backend.SendSync(ctx, rec))
			}
		}
		assert.NoError(b, backend.FlushSync(ctx))
	}
}

// BenchmarkSerialization measures how long sending a record takes over
// each kind of link: UNIX with no buffer, UNIX with a buffer and UDP.
// The counterpart is either a UDP port nobody reads from or a stream
// reader that discards every byte.
func BenchmarkSerialization(b *testing.B) {
	sockName := filepath.Join(b.TempDir(), "sock")
	laddr, err := net.ResolveUnixAddr("unix", sockName)
	require.NoError(b, err)
	cleanup := serveUNIX(b, laddr, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})
	defer cleanup()

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(b, err)
	defer udpConn.Close()

	unixBackend := &streamBackend{backendParams: backendParams{addr: laddr}}
	flushyUnixBackend := &streamBackend{
		backendParams: backendParams{
			addr:       laddr,
			bufferSize: uint(BufferSize),
		},
	}
	udpBackend := &packetBackend{backendParams: backendParams{addr: udpConn.LocalAddr()}}

	span := NewSpan(nil, "realistic_span", Service("hi-there-srv"), ParentID(2), TraceID(3))
	span.SetTag("span_purpose", "testing")
	timed := span.Finish().SpanRecord()
	untimed := NewSpan(nil, "bare").SpanRecord()

	for _, every := range []int{10, 50, 100} {
		b.Run(fmt.Sprintf("UNIX_flush_timed_%dms", every),
			benchmarkFlushingCombination(flushyUnixBackend, timed, time.Duration(every)*time.Millisecond))
		b.Run(fmt.Sprintf("UNIX_flush_untimed_%dms", every),
			benchmarkFlushingCombination(flushyUnixBackend, untimed, time.Duration(every)*time.Millisecond))
	}

	b.Run("UNIX_plain_timed", benchmarkPlainCombination(unixBackend, timed))
	b.Run("UNIX_plain_untimed", benchmarkPlainCombination(unixBackend, untimed))
	b.Run("UDP_plain_timed", benchmarkPlainCombination(udpBackend, timed))
	b.Run("UDP_plain_untimed", benchmarkPlainCombination(udpBackend, untimed))
}

func TestConnectTimeout(t *testing.T) {
	laddr, err := net.ResolveUnixAddr("unix", filepath.Join(t.TempDir(), "nobody-listens"))
	require.NoError(t, err)

	be := &streamBackend{backendParams: backendParams{
		addr:           laddr,
		backoff:        time.Millisecond,
		maxBackoff:     5 * time.Millisecond,
		connectTimeout: 50 * time.Millisecond,
	}}
	start := time.Now()
	err = be.SendSync(context.Background(), NewSpan(nil, "lost").SpanRecord())
	assert.Error(t, err)
	assert.True(t, time.Since(start) < 5*time.Second)
	assert.NoError(t, be.Close())
}

// closedConn fails every write the way a hung-up socket does.
type closedConn struct {
	net.Conn
	closed bool
}

func (c *closedConn) Write(p []byte) (int, error) { return 0, net.ErrClosed }
func (c *closedConn) Close() error {
	c.closed = true
	return nil
}

func TestStreamBackendDropsPoisonedConnection(t *testing.T) {
	laddr, err := net.ResolveUnixAddr("unix", filepath.Join(t.TempDir(), "sock"))
	require.NoError(t, err)
	conn := &closedConn{}
	be := &streamBackend{backendParams: backendParams{addr: laddr}}
	be.connection(conn)

	err = be.SendSync(context.Background(), NewSpan(nil, "lost").SpanRecord())
	require.Error(t, err)
	assert.True(t, protocol.IsFramingError(err))
	assert.True(t, errors.Is(err, net.ErrClosed))
	assert.Contains(t, err.Error(), laddr.String())
	assert.True(t, conn.closed)
	assert.Nil(t, be.conn)
}
