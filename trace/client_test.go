package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/apm/protocol"
	"github.com/tinylib/msgp/msgp"
)

func testRecord(name string) *SpanRecord {
	span := NewSpan(nil, name, Service("test-srv"))
	span.SetTag("purpose", "testing")
	return span.Finish().SpanRecord()
}

func TestNoClient(t *testing.T) {
	err := Record(nil, nil, nil)
	assert.Equal(t, ErrNoClient, err)
	assert.Equal(t, ErrNoClient, Flush(nil))
}

func TestZeroCapacity(t *testing.T) {
	_, err := NewClient("udp://127.0.0.1:8128", Capacity(0))
	assert.Error(t, err)
}

func TestUnknownScheme(t *testing.T) {
	_, err := NewClient("ftp://127.0.0.1:21")
	assert.Error(t, err)
}

func TestUDP(t *testing.T) {
	// arbitrary
	const BufferSize = 1087152

	traceAddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	assert.NoError(t, err)
	serverConn, err := net.ListenUDP("udp", traceAddr)
	assert.NoError(t, err)
	defer serverConn.Close()
	err = serverConn.SetReadBuffer(BufferSize)
	assert.NoError(t, err)

	client, err := NewClient(fmt.Sprintf("udp://%s", serverConn.LocalAddr().String()), Capacity(4))
	require.NoError(t, err)
	defer client.Close()

	sentCh := make(chan error)
	for i := 0; i < 4; i++ {
		err = Record(client, testRecord(fmt.Sprintf("Testing-%d", i)), sentCh)
		assert.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-sentCh)
	}

	buf := make([]byte, BufferSize)
	require.NoError(t, serverConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, err := serverConn.Read(buf)
	require.NoError(t, err)
	rec := &SpanRecord{}
	require.NoError(t, msgp.Decode(bytes.NewReader(buf[:n]), rec))
	assert.Equal(t, "Testing-0", rec.Name)
	assert.Equal(t, "test-srv", rec.Service)
}

func serveUNIX(t testing.TB, laddr *net.UnixAddr, onconnect func(conn net.Conn)) (cleanup func() error) {
	srv, err := net.ListenUnix(laddr.Network(), laddr)
	require.NoError(t, err)
	cleanup = srv.Close

	go func() {
		for {
			in, err := srv.Accept()
			if err != nil {
				return
			}
			go onconnect(in)
		}
	}()

	return
}

func readRecords(t *testing.T, out chan<- *SpanRecord) func(net.Conn) {
	return func(in net.Conn) {
		for {
			rec := &SpanRecord{}
			err := protocol.ReadFrame(in, rec)
			if err == io.EOF {
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			out <- rec
		}
	}
}

func TestUNIX(t *testing.T) {
	sockName := filepath.Join(t.TempDir(), "sock")
	laddr, err := net.ResolveUnixAddr("unix", sockName)
	require.NoError(t, err)

	outRec := make(chan *SpanRecord, 4)
	cleanup := serveUNIX(t, laddr, readRecords(t, outRec))
	defer cleanup()

	client, err := NewClient((&url.URL{Scheme: "unix", Path: sockName}).String(), Capacity(4))
	require.NoError(t, err)
	defer client.Close()

	sentCh := make(chan error)
	for i := 0; i < 4; i++ {
		err = Record(client, testRecord(fmt.Sprintf("Testing-%d", i)), sentCh)
		assert.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-sentCh)
		rec := <-outRec
		assert.Equal(t, fmt.Sprintf("Testing-%d", i), rec.Name)
		assert.Equal(t, "testing", rec.Meta["purpose"])
		assert.NotNil(t, rec.Duration)
	}
}

func TestUNIXBuffered(t *testing.T) {
	sockName := filepath.Join(t.TempDir(), "sock")
	laddr, err := net.ResolveUnixAddr("unix", sockName)
	require.NoError(t, err)

	outRec := make(chan *SpanRecord, 4)
	cleanup := serveUNIX(t, laddr, readRecords(t, outRec))
	defer cleanup()

	client, err := NewClient((&url.URL{Scheme: "unix", Path: sockName}).String(),
		Capacity(4),
		Buffered)
	require.NoError(t, err)
	defer client.Close()

	sentCh := make(chan error)
	for i := 0; i < 4; i++ {
		err = Record(client, testRecord(fmt.Sprintf("Testing-%d", i)), sentCh)
		assert.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-sentCh)
	}
	assert.Equal(t, 0, len(outRec), "Should not have sent any records yet")
	err = Flush(client)
	assert.NoError(t, err)
	for i := 0; i < 4; i++ {
		<-outRec
	}
}

func TestReconnectUNIX(t *testing.T) {
	sockName := filepath.Join(t.TempDir(), "sock")
	laddr, err := net.ResolveUnixAddr("unix", sockName)
	require.NoError(t, err)

	outRec := make(chan *SpanRecord, 4)
	// A server that reads one record and then immediately closes
	// the connection:
	cleanup := serveUNIX(t, laddr, func(in net.Conn) {
		rec := &SpanRecord{}
		err := protocol.ReadFrame(in, rec)
		if err == io.EOF {
			return
		}
		assert.NoError(t, err)
		in.Close()
		outRec <- rec
	})
	defer cleanup()

	client, err := NewClient((&url.URL{Scheme: "unix", Path: sockName}).String(), Capacity(4))
	require.NoError(t, err)
	defer client.Close()

	sentCh := make(chan error)
	require.NoError(t, Record(client, testRecord("Testing-success"), sentCh))
	assert.NoError(t, <-sentCh)
	assert.Equal(t, "Testing-success", (<-outRec).Name)

	// Writes to the dropped connection fail until the backend
	// notices and reconnects; the record that triggers that is
	// discarded.
	for i := 0; i < 10; i++ {
		require.NoError(t, Record(client, testRecord("Testing-failure"), sentCh))
		if <-sentCh != nil {
			break
		}
	}

	require.NoError(t, Record(client, testRecord("Testing-success2"), sentCh))
	assert.NoError(t, <-sentCh)
	assert.Equal(t, "Testing-success2", (<-outRec).Name)
}

func TestFailingUDP(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)

	client, err := NewClient(fmt.Sprintf("udp://%s", serverConn.LocalAddr().String()), Capacity(4))
	require.NoError(t, err)
	defer client.Close()

	serverConn.Close()

	sentCh := make(chan error)
	for i := 0; i < 4; i++ {
		assert.NoError(t, Record(client, testRecord(fmt.Sprintf("Testing-%d", i)), sentCh))
	}
	for i := 0; i < 4; i++ {
		// Linux reports an error when sending to a closed port
		// and macOS doesn't; only the callback is guaranteed.
		<-sentCh
	}
}

type blockingBackend struct {
	release chan struct{}
}

func (b *blockingBackend) Close() error { return nil }

func (b *blockingBackend) SendSync(ctx context.Context, rec *SpanRecord) error {
	<-b.release
	return nil
}

func TestWouldBlock(t *testing.T) {
	be := &blockingBackend{release: make(chan struct{})}
	client, err := NewBackendClient(be, Capacity(1))
	require.NoError(t, err)

	sentCh := make(chan error, 3)
	// the first op is picked up by the worker and blocks it, the
	// second fills the channel
	require.NoError(t, Record(client, testRecord("first"), sentCh))
	assert.Eventually(t, func() bool {
		return Record(client, testRecord("second"), sentCh) == nil
	}, time.Second, time.Millisecond)
	assert.Equal(t, ErrWouldBlock, Record(client, testRecord("third"), sentCh))

	close(be.release)
	assert.NoError(t, <-sentCh)
	assert.NoError(t, <-sentCh)
	assert.NoError(t, client.Close())
}

func TestFlushInterval(t *testing.T) {
	sockName := filepath.Join(t.TempDir(), "sock")
	laddr, err := net.ResolveUnixAddr("unix", sockName)
	require.NoError(t, err)

	outRec := make(chan *SpanRecord, 1)
	cleanup := serveUNIX(t, laddr, readRecords(t, outRec))
	defer cleanup()

	client, err := NewClient((&url.URL{Scheme: "unix", Path: sockName}).String(),
		Capacity(4),
		Buffered,
		FlushInterval(10*time.Millisecond))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, Record(client, testRecord("periodic"), nil))
	select {
	case rec := <-outRec:
		assert.Equal(t, "periodic", rec.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("record was never flushed")
	}
}

func TestRecordAfterClose(t *testing.T) {
	ch := make(chan *SpanRecord, 1)
	client, err := NewBackendClient(&captureBackend{records: ch}, Capacity(4))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	sentCh := make(chan error, 1)
	assert.Equal(t, ErrClientClosed, Record(client, testRecord("late"), sentCh))
	assert.Equal(t, ErrClientClosed, FlushAsync(client, nil))
	assert.Equal(t, ErrClientClosed, Flush(client))
	assert.Len(t, sentCh, 0)
	assert.Len(t, ch, 0)
}

func TestCloseIsIdempotent(t *testing.T) {
	client, err := NewClient("udp://127.0.0.1:8128", Capacity(4), FlushInterval(time.Millisecond))
	require.NoError(t, err)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestRecordRacingClose(t *testing.T) {
	be := &captureBackend{records: make(chan *SpanRecord, 1024)}
	client, err := NewBackendClient(be, Capacity(8))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			err := Record(client, testRecord("racing"), nil)
			if err == ErrClientClosed {
				return
			}
		}
	}()
	require.NoError(t, client.Close())
	<-done
}
