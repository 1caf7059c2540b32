package emit

// Event is an observability-side-channel record of something the
// coordinator's event multiplexer re-emitted. It mirrors the
// coordinator's own event kinds but carries no delivery semantics of
// its own — losing an Event never affects network behavior.
type Event struct {
	// Kind is the coordinator event name: "start", "end", "icon",
	// "connect", "begingroup", "data", "endgroup", "disconnect",
	// "process-error", or "ip" for the unified form.
	Kind string

	// ProcessID identifies the node this event concerns. Empty for
	// network-level events (start, end).
	ProcessID string

	// Data carries the event payload — an IP's data for ip events, an
	// error for process-error, an icon string for icon events.
	Data interface{}

	// Metadata carries additional structured context (socket id, port
	// name, index).
	Metadata map[string]interface{}

	// Subgraph is the provenance path prepended by each subgraph
	// boundary the event crossed, outermost first.
	Subgraph []string
}
