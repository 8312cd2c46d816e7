package trace

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// maxStackDepth bounds the number of frames captured for errors that
// carry no stack of their own.
const maxStackDepth = 32

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func errorType(err error) string {
	return fmt.Sprintf("%T", err)
}

// errorMessage is err.Error(). fmt recovers from a method panicking on
// a nil receiver and renders it as "<nil>".
func errorMessage(err error) string {
	return fmt.Sprint(err)
}

func stackFrames(st stackTracer) (frames errors.StackTrace) {
	defer func() {
		if recover() != nil {
			frames = nil
		}
	}()
	return st.StackTrace()
}

// errorStack renders the stack trace attached to err (by pkg/errors)
// or, failing that, the stack of the caller of SetError. Frames are
// joined with newlines.
func errorStack(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		frames := stackFrames(st)
		if len(frames) > 0 {
			lines := make([]string, 0, len(frames))
			for _, f := range frames {
				lines = append(lines, fmt.Sprintf("%+v", f))
			}
			return strings.Join(lines, "\n")
		}
	}
	// skip runtime.Callers, callerStack, errorStack and SetError
	return callerStack(4)
}

func callerStack(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return "<unknown>"
	}

	frames := runtime.CallersFrames(pcs[:n])
	lines := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}
