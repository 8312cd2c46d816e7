package ext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StatusCoder is implemented by failures that still carry the outcome
// of the operation, e.g. an HTTP error response.
type StatusCoder interface {
	StatusCode() int
}

// ErrorRange is an inclusive range of status codes that count as
// errors for monitoring purposes.
type ErrorRange struct {
	Min int
	Max int
}

// HTTPErrorRange treats server errors as span errors. Client errors
// (4xx) are tagged but not marked as errored.
var HTTPErrorRange = ErrorRange{Min: 500, Max: 599}

// Covers reports whether code lies within the range.
func (r ErrorRange) Covers(code int) bool {
	return code >= r.Min && code <= r.Max
}

// IsZero reports whether the range was never set.
func (r ErrorRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

func (r ErrorRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Decode parses "min-max" (or a single code). It lets ErrorRange be
// read from config files and environment variables.
func (r *ErrorRange) Decode(value string) error {
	value = strings.TrimSpace(value)
	lo, hi := value, value
	if i := strings.Index(value, "-"); i >= 0 {
		lo, hi = value[:i], value[i+1:]
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return errors.Wrapf(err, "invalid error range %q", value)
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return errors.Wrapf(err, "invalid error range %q", value)
	}
	if min > max {
		return errors.Errorf("invalid error range %q: lower bound above upper bound", value)
	}
	r.Min, r.Max = min, max
	return nil
}

// StatusError reports a returned outcome whose status lies in an
// error range. It is what a span records when the operation itself
// did not fail.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d is in the error range", e.Code)
}

// StatusCode implements StatusCoder.
func (e *StatusError) StatusCode() int {
	return e.Code
}
