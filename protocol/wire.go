// Package protocol contains the collector address conventions and the
// wire protocol used to read and write framed span records on a
// streaming network link or other non-seekable medium.
//
// Wire Protocol
//
// Span records are msgpack documents, which aren't framed in any way
// that would allow them to be read on a streaming connection. Each
// message on a stream is therefore framed as:
//
//   [ 8 bits - version and type of message]
//   [32 bits - length of framed message in octets]
//   [<length> - msgpack encoded message]
//
// The version can currently only be 0. The length is in network byte
// order (big-endian). No lengths greater than MaxFrameLength can be
// read or encoded.
//
// Since this protocol does not contain any re-syncing hints, any
// framing error on the stream is automatically fatal. The stream must
// be considered unreadable from that point on and should be closed.
package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"
)

// MaxFrameLength is the maximum length of a framed message. This is
// currently 16MB.
const MaxFrameLength uint32 = 16 * 1024 * 1024

// FrameHeaderLength is the length of a frame header: 1 byte for the
// version and 4 bytes for the 32-bit content length.
const FrameHeaderLength uint32 = 1 + 4

const version0 uint8 = 0

var bufPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// WriteFrame encodes msg and writes it with a preceding v0 frame onto
// a stream. It returns the number of message bytes written.
//
// If the error matches IsFramingError, the stream must be considered
// poisoned and should not be re-used.
func WriteFrame(out io.Writer, msg msgp.Encodable) (int, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	if err := msgp.Encode(buf, msg); err != nil {
		// Not a framing error: nothing was written to the stream.
		return 0, errors.Wrap(err, "encoding span record")
	}
	if uint32(buf.Len()) > MaxFrameLength {
		return 0, frameLength("write", uint32(buf.Len()))
	}

	if err := binary.Write(out, binary.BigEndian, version0); err != nil {
		return 0, framingIO("write", err)
	}
	if err := binary.Write(out, binary.BigEndian, uint32(buf.Len())); err != nil {
		return 0, framingIO("write", err)
	}
	n, err := out.Write(buf.Bytes())
	if err != nil {
		return n, framingIO("write", err)
	}
	return n, nil
}

// ReadFrame reads one framed message from a stream and decodes it
// into msg.
//
// The error is io.EOF only if no bytes were read at the start of a
// message (e.g. if a connection was closed after the last message).
// Any other error must be checked with IsFramingError.
func ReadFrame(in io.Reader, msg msgp.Decodable) error {
	var version uint8
	var length uint32
	if err := binary.Read(in, binary.BigEndian, &version); err != nil {
		if err == io.EOF {
			// EOF/hang-ups at the start of a new message
			// are fine, pass them through as-is.
			return err
		}
		return framingIO("read", err)
	}
	if version != version0 {
		return frameVersion(version)
	}
	if err := binary.Read(in, binary.BigEndian, &length); err != nil {
		return framingIO("read", err)
	}
	if length > MaxFrameLength {
		return frameLength("read", length)
	}
	bts := make([]byte, length)
	if _, err := io.ReadFull(in, bts); err != nil {
		return framingIO("read", err)
	}
	// The frame was consumed whole, so a bad body leaves the stream
	// usable.
	return errors.Wrap(msgp.Decode(bytes.NewReader(bts), msg), "decoding span record")
}
