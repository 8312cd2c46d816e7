package protocol_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/apm/protocol"
	"github.com/stripe/apm/trace"
)

func testRecord() *trace.SpanRecord {
	start := int64(9000)
	duration := int64(1)
	return &trace.SpanRecord{
		TraceID:  1,
		SpanID:   2,
		ParentID: 3,
		Name:     "http.request",
		Service:  "frontend",
		Resource: "GET",
		Type:     "http",
		Meta:     map[string]string{"http.status_code": "200"},
		Start:    &start,
		Duration: &duration,
	}
}

func TestReadFrameStream(t *testing.T) {
	msg := testRecord()
	// Write it to a reader twice:
	buf := bytes.NewBuffer([]byte{})
	_, err := protocol.WriteFrame(buf, msg)
	require.NoError(t, err)
	_, err = protocol.WriteFrame(buf, msg)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		read := &trace.SpanRecord{}
		require.NoError(t, protocol.ReadFrame(buf, read))
		assert.Equal(t, msg, read)
	}

	// Clean EOF at a frame boundary:
	assert.Equal(t, io.EOF, protocol.ReadFrame(buf, &trace.SpanRecord{}))
}

func TestReadFrameStreamBad(t *testing.T) {
	// Bad: illegal frame version:
	{
		buf := bytes.NewBuffer([]byte{0x01, 0x00})
		err := protocol.ReadFrame(buf, &trace.SpanRecord{})
		if assert.Error(t, err) {
			assert.True(t, protocol.IsFramingError(err))
		}
	}

	// Bad: wrong length of packet in header:
	{
		buf := bytes.NewBuffer([]byte{})
		_, err := protocol.WriteFrame(buf, testRecord())
		if assert.NoError(t, err) {
			// Mess with the length byte:
			buf.Bytes()[1] = 0xff
			err := protocol.ReadFrame(buf, &trace.SpanRecord{})
			if assert.Error(t, err) {
				assert.True(t, protocol.IsFramingError(err))
			}
		}
	}

	// Bad: truncated message body:
	{
		buf := bytes.NewBuffer([]byte{})
		_, err := protocol.WriteFrame(buf, testRecord())
		require.NoError(t, err)
		truncated := bytes.NewBuffer(buf.Bytes()[:buf.Len()-3])
		err = protocol.ReadFrame(truncated, &trace.SpanRecord{})
		if assert.Error(t, err) {
			assert.True(t, protocol.IsFramingError(err))
		}
	}

	// Bad: a valid frame that does not hold a msgpack map:
	{
		buf := bytes.NewBuffer([]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0xc0})
		err := protocol.ReadFrame(buf, &trace.SpanRecord{})
		if assert.Error(t, err) {
			assert.False(t, protocol.IsFramingError(err))
		}
	}
}
