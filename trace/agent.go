package trace

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/apm/internal/scopedstatsd"
	"github.com/tinylib/msgp/msgp"
)

// DefaultAgentBatchSize is the number of records an agent backend
// buffers before it flushes on its own.
const DefaultAgentBatchSize = 1000

// agentBackend batches span records and POSTs them, grouped by trace,
// as a msgpack TraceList to a trace agent's HTTP endpoint.
type agentBackend struct {
	endpoint  string
	client    *retryablehttp.Client
	stats     scopedstatsd.Client
	log       *logrus.Entry
	batchSize int
	batch     []*SpanRecord
}

func newAgentBackend(endpoint string, log *logrus.Entry) *agentBackend {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = DefaultBackoff
	client.RetryWaitMax = DefaultMaxBackoff
	client.HTTPClient.Timeout = DefaultConnectTimeout
	client.Logger = leveledLogrus{log}

	return &agentBackend{
		endpoint:  endpoint,
		client:    client,
		stats:     scopedstatsd.Ensure(nil),
		log:       log,
		batchSize: DefaultAgentBatchSize,
	}
}

// SendSync adds the record to the current batch, flushing once the
// batch is full.
func (a *agentBackend) SendSync(ctx context.Context, rec *SpanRecord) error {
	a.batch = append(a.batch, rec)
	if len(a.batch) >= a.batchSize {
		return a.FlushSync(ctx)
	}
	return nil
}

// FlushSync submits the current batch. The batch is discarded even if
// the submission fails, so that one bad payload can't wedge the
// backend.
func (a *agentBackend) FlushSync(ctx context.Context) error {
	if len(a.batch) == 0 {
		return nil
	}
	start := time.Now()
	records := a.batch
	a.batch = nil
	_ = a.stats.Gauge("flush.batch_size", float64(len(records)), nil, 1.0)

	traces := GroupByTrace(records)
	var body bytes.Buffer
	if err := msgp.Encode(&body, traces); err != nil {
		a.failed("cause:encode")
		return errors.Wrap(err, "encoding traces")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, body.Bytes())
	if err != nil {
		a.failed("cause:construct")
		return errors.Wrap(err, "constructing request")
	}
	req.Header.Set("Content-Type", "application/msgpack")
	req.Header.Set("X-Datadog-Trace-Count", strconv.Itoa(len(traces)))

	resp, err := a.client.Do(req)
	if err != nil {
		a.failed("cause:io")
		return errors.Wrap(err, "posting traces")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		a.failed("cause:" + strconv.Itoa(resp.StatusCode))
		return errors.Errorf("trace agent at %s responded %s", a.endpoint, resp.Status)
	}

	_ = a.stats.Count("flush.records_total", int64(len(records)), nil, 1.0)
	_ = a.stats.Count("flush.error_total", 0, nil, 1.0)
	_ = a.stats.Timing("flush.duration_ns", time.Since(start), nil, 1.0)
	a.log.WithFields(logrus.Fields{
		"traces":  len(traces),
		"records": len(records),
	}).Debug("Flushed traces to agent")
	return nil
}

// Close submits whatever is left in the batch.
func (a *agentBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultConnectTimeout)
	defer cancel()
	return a.FlushSync(ctx)
}

func (a *agentBackend) failed(cause string) {
	_ = a.stats.Incr("flush.error_total", []string{cause}, 1.0)
}

var _ FlushableClientBackend = &agentBackend{}

// leveledLogrus adapts a logrus entry to retryablehttp's
// LeveledLogger.
type leveledLogrus struct {
	log *logrus.Entry
}

var _ retryablehttp.LeveledLogger = leveledLogrus{}

func (l leveledLogrus) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return l.log.WithFields(fields)
}

func (l leveledLogrus) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l leveledLogrus) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogrus) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogrus) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
