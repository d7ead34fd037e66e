package bridge

import "fmt"

// ErrorKind classifies a failed tool call.
type ErrorKind string

const (
	// KindCatalog marks an invalid or unloadable endpoint catalog. Fatal at startup.
	KindCatalog ErrorKind = "catalog_error"
	// KindUnknownTool marks a call naming a tool the catalog doesn't contain.
	KindUnknownTool ErrorKind = "unknown_tool"
	// KindValidation marks arguments that don't satisfy the endpoint's parameters.
	KindValidation ErrorKind = "validation_error"
	// KindNetwork marks transport failures: connection refused, DNS, timeout.
	KindNetwork ErrorKind = "network_error"
	// KindAPI marks an HTTP response with status >= 400.
	KindAPI ErrorKind = "api_error"
)

// CallError is the structured failure carried by a Result.
type CallError struct {
	Kind    ErrorKind
	Message string
	Status  int    // HTTP status for KindAPI, 0 otherwise
	Body    string // truncated response body for KindAPI
	Err     error  // wrapped cause, if any
}

func (e *CallError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// newCallError builds a CallError with a formatted message.
func newCallError(kind ErrorKind, format string, args ...interface{}) *CallError {
	return &CallError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Result is the uniform outcome of a tool call. Either Payload is set
// (parsed JSON value, or raw text for non-JSON bodies) or Err is set.
type Result struct {
	Payload interface{}
	Status  int
	Err     *CallError
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// successResult wraps a payload in a successful Result.
func successResult(status int, payload interface{}) Result {
	return Result{Status: status, Payload: payload}
}

// failureResult wraps a CallError in a failed Result.
func failureResult(err *CallError) Result {
	return Result{Status: err.Status, Err: err}
}
