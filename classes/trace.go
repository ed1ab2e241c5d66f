package classes

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// StackFrame is one entry in a traced error's call stack. Frames produced by
// method invocation carry only a function label; the frame at the failure
// site also carries a file and line.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// TracedError annotates a failure with the full class-model call stack at
// the point it was raised. Re-tracing an already traced error is a no-op:
// Scall passes TracedErrors through unchanged, so an error crossing many
// wrapped layers is annotated exactly once.
type TracedError struct {
	Message string
	Frames  []StackFrame
	cause   error
}

const (
	traceFrameHead = 8
	traceFrameTail = 8
)

func (e *TracedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	renderFrame := func(frame StackFrame) {
		if frame.File != "" {
			fmt.Fprintf(&b, "\n  at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(e.Frames) <= traceFrameHead+traceFrameTail {
		for _, frame := range e.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range e.Frames[:traceFrameHead] {
		renderFrame(frame)
	}
	omitted := len(e.Frames) - (traceFrameHead + traceFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range e.Frames[len(e.Frames)-traceFrameTail:] {
		renderFrame(frame)
	}
	return b.String()
}

func (e *TracedError) Unwrap() error { return e.cause }

// The logical call stack. The object model is single-threaded and
// cooperative; the mutex only keeps concurrent hosts from corrupting the
// slice, it does not make interleaved traces meaningful.
var (
	frameMu    sync.Mutex
	callFrames []StackFrame
)

func pushFrame(function string) {
	frameMu.Lock()
	callFrames = append(callFrames, StackFrame{Function: function})
	frameMu.Unlock()
}

func popFrame() {
	frameMu.Lock()
	if n := len(callFrames); n > 0 {
		callFrames = callFrames[:n-1]
	}
	frameMu.Unlock()
}

// snapshotFrames returns the logical stack innermost first.
func snapshotFrames() []StackFrame {
	frameMu.Lock()
	defer frameMu.Unlock()
	out := make([]StackFrame, len(callFrames))
	for i, frame := range callFrames {
		out[len(callFrames)-1-i] = frame
	}
	return out
}

// Scall invokes fn under a protected call. A returned error or a panic is
// converted into a TracedError carrying the logical call stack, unless it
// already is one, in which case it passes through unchanged.
func Scall(fn MethodFunc, self Value, args ...Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = NewNil()
			err = newTracedError(fmt.Sprintf("panic: %v", r), nil)
		}
	}()
	result, err = fn(self, args)
	if err != nil {
		return result, traceError(err)
	}
	return result, nil
}

// Wrap returns a method that invokes fn through Scall, so any failure inside
// it surfaces with a full trace.
func Wrap(fn MethodFunc) MethodFunc {
	return func(self Value, args []Value) (Value, error) {
		return Scall(fn, self, args...)
	}
}

// traceError annotates err with the current stack exactly once.
func traceError(err error) error {
	var traced *TracedError
	if errors.As(err, &traced) {
		return err
	}
	return newTracedError(err.Error(), err)
}

func newTracedError(message string, cause error) *TracedError {
	logical := snapshotFrames()
	frames := make([]StackFrame, 0, 1+len(logical))
	if site, ok := failureSite(); ok {
		frames = append(frames, site)
	}
	frames = append(frames, logical...)
	return &TracedError{Message: message, Frames: frames, cause: cause}
}

const pkgPathPrefix = "github.com/classkit/classkit/classes."

// failureSite finds the nearest caller outside this package, giving the
// trace a concrete file and line for where the failure surfaced.
func failureSite() (StackFrame, bool) {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	cframes := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := cframes.Next()
		internal := strings.HasPrefix(frame.Function, "runtime.") ||
			(strings.HasPrefix(frame.Function, pkgPathPrefix) &&
				!strings.HasSuffix(frame.File, "_test.go"))
		if frame.Function != "" && !internal {
			return StackFrame{
				Function: frame.Function,
				File:     filepath.Base(frame.File),
				Line:     frame.Line,
			}, true
		}
		if !more {
			return StackFrame{}, false
		}
	}
}
