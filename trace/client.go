package trace

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/apm/internal/scopedstatsd"
	"github.com/stripe/apm/protocol"
)

// op is a function invoked on a backend, such as sending a record
// synchronously, flushing the backend buffer, or closing the backend.
type op func(context.Context, ClientBackend)

// Client is a pump for span records from user code to a collector
// (over UDP, streaming sockets or a trace agent's HTTP endpoint).
//
// Structure
//
// A Client is composed of two parts: a channel of operations that
// provides backpressure (the front end), and a single goroutine that
// applies those operations to a ClientBackend (the back end). Record
// never blocks; if the channel is full, the record is dropped.
type Client struct {
	backend  ClientBackend
	params   backendParams
	capacity uint
	interval time.Duration
	stats    scopedstatsd.Client
	log      *logrus.Entry

	cancel context.CancelFunc
	ops    chan op
	flush  chan struct{}
	wg     sync.WaitGroup

	// mu guards closed. Senders on ops hold it for reading, so ops
	// is only closed once no send can be in progress.
	mu     sync.RWMutex
	closed bool
}

// ClientParam is an option for NewClient.
type ClientParam func(*Client) error

// Buffered sets the client to be buffered with the default buffer
// size (enough to accommodate a single, maximum-sized frame). It only
// affects streaming backends.
func Buffered(cl *Client) error {
	return BufferedSize(uint(BufferSize))(cl)
}

// BufferedSize indicates that a client should have a buffer size
// bytes large.
func BufferedSize(size uint) ClientParam {
	return func(cl *Client) error {
		cl.params.bufferSize = size
		return nil
	}
}

// Capacity indicates how many operations a client's channel should
// accommodate.
func Capacity(n uint) ClientParam {
	return func(cl *Client) error {
		if n == 0 {
			return errors.New("client capacity must be positive")
		}
		cl.capacity = n
		return nil
	}
}

// BackoffTime sets the time increment that backoff time is increased
// (linearly) between every reconnection attempt the backend makes. If
// this option is not used, the backend uses DefaultBackoff.
func BackoffTime(t time.Duration) ClientParam {
	return func(cl *Client) error {
		cl.params.backoff = t
		return nil
	}
}

// MaxBackoffTime sets the maximum time duration waited between
// reconnection attempts. If this option is not used, the backend uses
// DefaultMaxBackoff.
func MaxBackoffTime(t time.Duration) ClientParam {
	return func(cl *Client) error {
		cl.params.maxBackoff = t
		return nil
	}
}

// ConnectTimeout sets the maximum total amount of time a client
// backend spends trying to establish a connection to a collector. If
// this option is not used, the backend uses DefaultConnectTimeout.
func ConnectTimeout(t time.Duration) ClientParam {
	return func(cl *Client) error {
		cl.params.connectTimeout = t
		return nil
	}
}

// FlushInterval makes the client flush its backend periodically. It
// has no effect on backends that do not buffer.
func FlushInterval(d time.Duration) ClientParam {
	return func(cl *Client) error {
		cl.interval = d
		return nil
	}
}

// Statsd makes an agent backend report its flushes to c, tagging each
// metric with tags.
func Statsd(c *statsd.Client, tags ...string) ClientParam {
	return func(cl *Client) error {
		cl.stats = scopedstatsd.NewClient(c, tags...)
		return nil
	}
}

// Logger sets the entry the client and its backend log with.
func Logger(log *logrus.Entry) ClientParam {
	return func(cl *Client) error {
		cl.log = log
		return nil
	}
}

func newClient(opts []ClientParam) (*Client, error) {
	cl := &Client{
		capacity: 1,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		if err := opt(cl); err != nil {
			return nil, err
		}
	}
	return cl, nil
}

// NewClient constructs a new client that will send records to addrStr,
// a collector address in URL format (see protocol.ResolveAddr and
// protocol.AgentEndpoint), using the parameters in opts.
func NewClient(addrStr string, opts ...ClientParam) (*Client, error) {
	cl, err := newClient(opts)
	if err != nil {
		return nil, err
	}

	if endpoint, ok := protocol.AgentEndpoint(addrStr); ok {
		agent := newAgentBackend(endpoint, cl.log)
		agent.stats = scopedstatsd.Ensure(cl.stats)
		cl.backend = agent
		cl.start()
		return cl, nil
	}

	addr, err := protocol.ResolveAddr(addrStr)
	if err != nil {
		return nil, err
	}
	params := cl.params
	params.addr = addr
	switch addr := addr.(type) {
	case *net.UDPAddr:
		cl.backend = &packetBackend{backendParams: params}
	case *net.UnixAddr, *net.TCPAddr:
		cl.backend = &streamBackend{backendParams: params}
	default:
		return nil, fmt.Errorf("can not connect to %v addresses", addr.Network())
	}
	cl.start()
	return cl, nil
}

// NewBackendClient constructs a client that sends records through be.
// Network-related parameters in opts are ignored.
func NewBackendClient(be ClientBackend, opts ...ClientParam) (*Client, error) {
	cl, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	cl.backend = be
	cl.start()
	return cl, nil
}

func (c *Client) start() {
	c.ops = make(chan op, c.capacity)
	c.flush = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
	if c.interval > 0 {
		c.wg.Add(1)
		go c.flushPeriodically(ctx, c.interval)
	}
}

func (c *Client) run(ctx context.Context) {
	for {
		do, ok := <-c.ops
		if !ok {
			return
		}
		do(ctx, c.backend)
	}
}

func (c *Client) flushPeriodically(ctx context.Context, interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.flush:
			return
		case <-ticker.C:
			err := FlushAsync(c, nil)
			if err != nil && err != ErrWouldBlock && err != ErrClientClosed {
				c.log.WithError(err).Debug("Periodic flush failed")
			}
		}
	}
}

// Close tears down the entire client. It waits until the backend has
// closed the network connection (if one was established) and returns
// any error from closing the connection. Records submitted after Close
// are rejected with ErrClientClosed; closing again is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.flush)
	c.wg.Wait()
	ch := make(chan error, 1)
	c.ops <- func(ctx context.Context, be ClientBackend) {
		ch <- be.Close()
	}
	close(c.ops)
	err := <-ch
	c.cancel()
	return err
}

// ErrNoClient indicates that no client is yet initialized.
var ErrNoClient = errors.New("client is not initialized")

// ErrWouldBlock indicates that a client is not able to send a record
// at the current time.
var ErrWouldBlock = errors.New("sending span would block")

// ErrClientClosed indicates that the client was closed and accepts no
// more work.
var ErrClientClosed = errors.New("client is closed")

// submit hands do to the worker without blocking.
func (c *Client) submit(do op) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.ops <- do:
		return nil
	default:
	}
	return ErrWouldBlock
}

// Record instructs the client to serialize and send a span record. It
// does not wait for a delivery attempt; instead the Client sends the
// result of submitting the record to the channel done, if it is
// non-nil.
//
// Record returns ErrNoClient if client is nil, ErrClientClosed once
// the client is closed and ErrWouldBlock if the client is not able to
// accommodate another record.
func Record(cl *Client, rec *SpanRecord, done chan<- error) error {
	if cl == nil {
		return ErrNoClient
	}

	op := func(ctx context.Context, be ClientBackend) {
		err := be.SendSync(ctx, rec)
		if err != nil {
			sendErrors.WithLabelValues("send").Inc()
			cl.log.WithError(err).WithField("span_id", rec.SpanID).Warn("Could not send span record")
		}
		if done != nil {
			done <- err
		}
	}
	err := cl.submit(op)
	switch err {
	case nil:
		recordsSubmitted.Inc()
	case ErrClientClosed:
		recordsDropped.WithLabelValues("closed").Inc()
	default:
		recordsDropped.WithLabelValues("would_block").Inc()
	}
	return err
}

// Flush instructs a client to flush to the collector all the records
// that were serialized up until the moment that the flush was
// received. It waits until the flush is completed (including all
// reconnection attempts), and returns any error caused by flushing
// the buffer.
//
// Flush returns ErrNoClient if client is nil, ErrClientClosed once the
// client is closed and ErrWouldBlock if the client is not able to take
// more requests.
func Flush(cl *Client) error {
	ch := make(chan error, 1)
	err := FlushAsync(cl, ch)
	if err != nil {
		return err
	}
	return <-ch
}

// FlushAsync instructs a buffered client to flush to the collector all
// the records that were serialized up until the moment that the flush
// was received. Once the client has completed the flush, any error
// (or nil) is sent down the error channel.
//
// FlushAsync returns ErrNoClient if client is nil, ErrClientClosed
// once the client is closed and ErrWouldBlock if the client is not
// able to take more requests.
func FlushAsync(cl *Client, ch chan<- error) error {
	if cl == nil {
		return ErrNoClient
	}
	op := func(ctx context.Context, be ClientBackend) {
		var err error
		if fb, ok := be.(FlushableClientBackend); ok {
			err = fb.FlushSync(ctx)
		}
		if err != nil {
			sendErrors.WithLabelValues("flush").Inc()
		}
		if ch != nil {
			ch <- err
		}
	}
	return cl.submit(op)
}
