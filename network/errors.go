// Package network implements the coordinator: the staged instantiation
// of processes and sockets, the socket attachment protocol, the
// Initial Information Packet and default-value injection scheme, the
// subgraph-nesting event propagation, the run-state machine, and the
// quiescence-detection algorithm that decides when a long-lived
// network has actually finished.
package network

import "fmt"

// Kind classifies a CoordinatorError so callers can branch on cause
// without string-matching the message.
type Kind string

const (
	// KindStructural covers unknown nodes, missing ports, and process
	// records without a loaded component.
	KindStructural Kind = "structural"

	// KindLoader wraps an error returned verbatim by a component.Loader.
	KindLoader Kind = "loader"

	// KindLifecycle covers component Start/Shutdown failures.
	KindLifecycle Kind = "lifecycle"

	// KindRuntime covers errors surfaced through process-error or socket
	// transport failures that had no registered listener.
	KindRuntime Kind = "runtime"
)

// CoordinatorError is the error type returned by every coordinator
// operation's completion callback. Wrap rather than replace: Unwrap
// exposes the underlying cause so errors.Is/As keep working across
// loader and component-supplied errors.
type CoordinatorError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *CoordinatorError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CoordinatorError) Unwrap() error { return e.Err }

func structuralErr(format string, args ...interface{}) *CoordinatorError {
	return &CoordinatorError{Kind: KindStructural, Message: fmt.Sprintf(format, args...)}
}

func loaderErr(err error) *CoordinatorError {
	return &CoordinatorError{Kind: KindLoader, Message: "component loader failed", Err: err}
}

func lifecycleErr(format string, err error, args ...interface{}) *CoordinatorError {
	return &CoordinatorError{Kind: KindLifecycle, Message: fmt.Sprintf(format, args...), Err: err}
}
