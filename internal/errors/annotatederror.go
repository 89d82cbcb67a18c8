// Package errors annotates errors with structured attributes and the source location where
// they were created, so they can be logged with [SlogError].
//
// It re-exports the standard library helpers so callers need a single import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

const maxStackDepth = 32

// annotatedError carries a message, the wrapped cause and attributes for the log line.
type annotatedError struct {
	msg   string
	cause error
	attrs []slog.Attr
	// stack holds a single frame for Wrap and New and the full stack for DecoratePanic.
	stack []uintptr
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// callers skips the runtime, this helper, the exported constructor and skip extra frames.
func callers(skip, depth int) []uintptr {
	pcs := make([]uintptr, depth)
	n := runtime.Callers(skip+3, pcs) //nolint:mnd // see doc comment
	return pcs[:n]
}

// NewSentinel creates an error meant to be compared with [Is]. It carries no source location.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // sentinel constructor
}

// New creates an error annotated with attrs and the caller's location.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: nil, attrs: attrs, stack: callers(0, 1)}
}

// Wrap annotates err with a message, attrs and the caller's location. Wrapping nil returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{msg: msg, cause: err, attrs: attrs, stack: callers(0, 1)}
}

// DecoratePanic turns a recovered panic value into an error carrying the stack of the panic.
// It returns nil when nothing was recovered.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	var cause error
	msg := fmt.Sprintf("panic: %v", recovered)
	if err, ok := recovered.(error); ok {
		cause = err
		msg = "panic"
	}
	return &annotatedError{msg: msg, cause: cause, attrs: nil, stack: callers(0, maxStackDepth)}
}

// collect gathers attributes and the innermost stack along the error tree.
func collect(err error, attrs []slog.Attr, stack []uintptr) ([]slog.Attr, []uintptr) {
	for err != nil {
		var annotated *annotatedError
		if errors.As(err, &annotated) {
			attrs = append(attrs, annotated.attrs...)
			stack = annotated.stack
			err = annotated.cause
			continue
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok { //nolint:errorlint // walking the tree
			for _, inner := range joined.Unwrap() {
				attrs, stack = collect(inner, attrs, stack)
			}
			return attrs, stack
		}
		err = errors.Unwrap(err)
	}
	return attrs, stack
}

func formatStack(stack []uintptr) string {
	var sb strings.Builder
	frames := runtime.CallersFrames(stack)
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(frame.File + ":" + strconv.Itoa(frame.Line))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// SlogError returns an attribute logging err with its annotations and source location.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attributes are ignored by slog
	}
	attrs, stack := collect(err, nil, nil)
	group := []any{slog.String("message", err.Error())}
	if len(attrs) > 0 {
		annotations := make([]any, 0, len(attrs))
		for _, a := range attrs {
			annotations = append(annotations, a)
		}
		group = append(group, slog.Group("annotations", annotations...))
	}
	if len(stack) > 0 {
		group = append(group, slog.String("source", formatStack(stack)))
	}
	return slog.Group("error", group...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return errors.Join(errs...) }
