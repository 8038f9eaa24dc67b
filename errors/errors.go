package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Subscription errors
	ErrorTypeInvalidPattern ErrorType = "invalid_pattern"
	ErrorTypeInvalidKey     ErrorType = "invalid_key"
	ErrorTypeNilHandler     ErrorType = "nil_handler"
	ErrorTypeNotFound       ErrorType = "not_found"

	// Handler outcomes
	ErrorTypeHandler ErrorType = "handler"
	ErrorTypePanic   ErrorType = "panic"

	// System errors
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error codes for specific scenarios
const (
	CodeInvalidPattern = "INVALID_PATTERN"
	CodeInvalidKey     = "INVALID_KEY"
	CodeNilHandler     = "NIL_HANDLER"
	CodeNotFound       = "NOT_FOUND"
	CodeHandlerFailed  = "HANDLER_FAILED"
	CodeHandlerPanic   = "HANDLER_PANIC"
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeInternalError  = "INTERNAL_ERROR"
)

// AppError represents a structured error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	InnerError error                  `json:"-"`
	Stack      []string               `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.InnerError != nil {
		return e.InnerError.Error()
	}
	return string(e.Type)
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// Is reports whether target is an *AppError of the same type, so a detailed
// error matches the bare sentinel of its kind.
func (e *AppError) Is(target error) bool {
	if targetApp, ok := target.(*AppError); ok {
		return e.Type == targetApp.Type
	}
	return false
}

// WithMessage sets the message
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithCode sets the code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// WithStack captures the call stack
func (e *AppError) WithStack() *AppError {
	e.Stack = captureStack(3)
	return e
}

// New creates a new AppError
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Code:    string(errType),
	}
}

// FromError converts a standard error to AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Type:       ErrorTypeUnknown,
		Code:       string(ErrorTypeUnknown),
		Message:    err.Error(),
		InnerError: err,
	}
}

// Wrap wraps an error with a specific type
func Wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       string(errType),
		Message:    message,
		InnerError: err,
	}
}

// NewInvalidPattern reports a malformed subscription pattern.
func NewInvalidPattern(pattern, reason string) *AppError {
	return New(ErrorTypeInvalidPattern, fmt.Sprintf("invalid pattern %q: %s", pattern, reason)).
		WithCode(CodeInvalidPattern).
		WithDetail("pattern", pattern).
		WithDetail("reason", reason)
}

// NewInvalidKey reports a malformed event key.
func NewInvalidKey(key, reason string) *AppError {
	return New(ErrorTypeInvalidKey, fmt.Sprintf("invalid event key %q: %s", key, reason)).
		WithCode(CodeInvalidKey).
		WithDetail("key", key).
		WithDetail("reason", reason)
}

func NewNilHandler(pattern string) *AppError {
	return New(ErrorTypeNilHandler, fmt.Sprintf("nil handler for pattern %q", pattern)).
		WithCode(CodeNilHandler).
		WithDetail("pattern", pattern)
}

func NewNotFound(resource string, id interface{}) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource)).
		WithCode(CodeNotFound).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewConfig(message string) *AppError {
	return New(ErrorTypeConfig, message).WithCode(CodeConfigInvalid)
}

func NewInternal(message string) *AppError {
	return New(ErrorTypeInternal, message).WithCode(CodeInternalError)
}

// FromPanic converts a recovered panic value into an AppError of type panic.
// The stack is captured from the recovering goroutine, so it must be called
// inside the deferred function that called recover.
func FromPanic(r interface{}) *AppError {
	appErr := New(ErrorTypePanic, PanicMessage(r)).WithCode(CodeHandlerPanic)
	if err, ok := r.(error); ok {
		appErr.InnerError = err
	}
	appErr.Stack = captureStack(3)
	return appErr
}

// PanicMessage renders a recovered panic value as text.
func PanicMessage(r interface{}) string {
	switch v := r.(type) {
	case nil:
		return "panic with nil value"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Recover recovers from a panic and stores it into *errp.
//
//	defer errors.Recover(&err)
func Recover(errp *error) {
	if r := recover(); r != nil {
		*errp = FromPanic(r)
	}
}

// captureStack captures the call stack
func captureStack(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return stack
}

// ErrorChain collects several errors into one.
type ErrorChain struct {
	errors []error
}

// NewErrorChain creates a new error chain
func NewErrorChain() *ErrorChain {
	return &ErrorChain{}
}

// Add adds an error to the chain. Nil errors are ignored.
func (c *ErrorChain) Add(err error) *ErrorChain {
	if err != nil {
		c.errors = append(c.errors, err)
	}
	return c
}

// HasErrors checks if the chain has errors
func (c *ErrorChain) HasErrors() bool {
	return len(c.errors) > 0
}

// Error returns the combined error message
func (c *ErrorChain) Error() string {
	msgs := make([]string, 0, len(c.errors))
	for _, err := range c.errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Errors returns all errors in the chain
func (c *ErrorChain) Errors() []error {
	return c.errors
}

// Unwrap exposes the chained errors to errors.Is and errors.As.
func (c *ErrorChain) Unwrap() []error {
	return c.errors
}

// Err returns nil when the chain is empty, otherwise the chain itself.
func (c *ErrorChain) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return c
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}
