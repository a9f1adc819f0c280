package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies everything that can go wrong between reading a source
// file and emitting an artifact, including runtime failures surfaced by the
// interpreter (the two execution paths share one taxonomy).
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	TypeMismatch
	UndefinedVariable
	IndexOutOfBounds
	UnknownFunction
	ArityMismatch
	CompilationFailed
	CodeGenerationFailed
	OptimizationFailed
	FileNotFound
	PermissionDenied
	StreamConnectionError
	StreamBufferUnderrun
	RealTimeViolation
	BufferSizeError
	InvalidStreamFormat
	AudioDeviceError
)

var errorKindNames = [...]string{
	SyntaxError:           "syntax error",
	TypeMismatch:          "type mismatch",
	UndefinedVariable:     "undefined variable",
	IndexOutOfBounds:      "index out of bounds",
	UnknownFunction:       "unknown function",
	ArityMismatch:         "arity mismatch",
	CompilationFailed:     "compilation failed",
	CodeGenerationFailed:  "code generation failed",
	OptimizationFailed:    "optimization failed",
	FileNotFound:          "file not found",
	PermissionDenied:      "permission denied",
	StreamConnectionError: "stream connection error",
	StreamBufferUnderrun:  "stream buffer underrun",
	RealTimeViolation:     "real-time violation",
	BufferSizeError:       "buffer size error",
	InvalidStreamFormat:   "invalid stream format",
	AudioDeviceError:      "audio device error",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the pipeline error type. Line is 1-based and zero when the failure
// has no source position. Suggestions are short "did you mean" style hints
// shown by the CLI.
type Error struct {
	Kind        ErrorKind
	Message     string
	Line        int
	Suggestions []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	for _, s := range e.Suggestions {
		b.WriteString("\n  hint: ")
		b.WriteString(s)
	}
	return b.String()
}

// NewError builds an *Error without a source position.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion appends a hint and returns the same error for chaining.
func (e *Error) WithSuggestion(format string, args ...any) *Error {
	e.Suggestions = append(e.Suggestions, fmt.Sprintf(format, args...))
	return e
}

// KindOf extracts the ErrorKind from err, unwrapping as needed. The second
// result is false when err is not a pipeline error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
