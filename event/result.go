package event

import "fmt"

// ResultKind classifies the outcome of one handler invocation.
type ResultKind uint8

const (
	ResultSuccess ResultKind = iota
	ResultError
	ResultPanic
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultError:
		return "error"
	case ResultPanic:
		return "panic"
	default:
		return fmt.Sprintf("ResultKind(%d)", uint8(k))
	}
}

// HandlerResult is the outcome of one handler invocation. Message is empty
// for successes.
type HandlerResult struct {
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

func Success() HandlerResult {
	return HandlerResult{Kind: ResultSuccess}
}

func Failure(message string) HandlerResult {
	return HandlerResult{Kind: ResultError, Message: message}
}

func Panicked(message string) HandlerResult {
	return HandlerResult{Kind: ResultPanic, Message: message}
}

func (r HandlerResult) IsSuccess() bool { return r.Kind == ResultSuccess }
func (r HandlerResult) IsError() bool   { return r.Kind == ResultError }
func (r HandlerResult) IsPanic() bool   { return r.Kind == ResultPanic }

func (r HandlerResult) String() string {
	if r.Message == "" {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// EmitReport summarises one emit call. Successes+Errors+Panics always
// equals Handlers.
type EmitReport struct {
	Key       string `json:"key"`
	Handlers  int    `json:"handlers"`
	Successes int    `json:"successes"`
	Errors    int    `json:"errors"`
	Panics    int    `json:"panics"`
}

// NewEmitReport returns an empty report for key.
func NewEmitReport(key string) EmitReport {
	return EmitReport{Key: key}
}

// Add counts one handler outcome.
func (r *EmitReport) Add(result HandlerResult) {
	r.Handlers++
	switch result.Kind {
	case ResultSuccess:
		r.Successes++
	case ResultError:
		r.Errors++
	case ResultPanic:
		r.Panics++
	}
}

// IsAllOK reports whether no handler failed or panicked. True for an emit
// that reached no handlers.
func (r EmitReport) IsAllOK() bool {
	return r.Errors == 0 && r.Panics == 0
}

func (r EmitReport) String() string {
	return fmt.Sprintf("%s: handlers=%d success=%d error=%d panic=%d",
		r.Key, r.Handlers, r.Successes, r.Errors, r.Panics)
}
