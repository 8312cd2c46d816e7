package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// FramingError reports a frame that could not be read from or written
// to a stream. The stream is out of sync after one and must be closed.
type FramingError struct {
	// Op is "read" or "write".
	Op     string
	Reason string
	// Err is the I/O error underneath, if there was one.
	Err error
}

func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s span record frame: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s span record frame: %s", e.Op, e.Reason)
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

func framingIO(op string, err error) error {
	return &FramingError{Op: op, Reason: "I/O error", Err: err}
}

func frameVersion(actual uint8) error {
	return &FramingError{Op: "read", Reason: fmt.Sprintf("unexpected version number %d", actual)}
}

func frameLength(op string, actual uint32) error {
	return &FramingError{Op: op, Reason: fmt.Sprintf("length %d exceeds %d", actual, MaxFrameLength)}
}

// IsFramingError returns true if err, or any error it wraps, is a wire
// protocol framing error. This indicates that the stream can no longer
// be used for span records and should be closed.
func IsFramingError(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}
