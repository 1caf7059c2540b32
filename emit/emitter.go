// Package emit provides pluggable observability sinks for the network
// coordinator's event multiplexer. It is strictly a side-channel: the
// coordinator's own event buffering, ordering, and quiescence
// semantics never depend on anything in this package.
package emit

import "context"

// Emitter receives coordinator events for logging, tracing, or
// inspection. Implementations must not block network execution and
// must not panic.
type Emitter interface {
	// Emit sends a single event. Implementations that need batching
	// should buffer internally and flush opportunistically.
	Emit(event Event)

	// EmitBatch sends multiple events, preserving order.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until any buffered events have been sent.
	Flush(ctx context.Context) error
}
