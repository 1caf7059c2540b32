// Package ip defines the Information Packet value type carried between
// component ports over a socket.
//
// An IP is deliberately small: a kind, a payload, and metadata. The
// network coordinator never inspects the payload; it only inspects the
// kind to decide whether to synthesize legacy begingroup/endgroup/data
// events (see the network package's event multiplexer).
package ip

import "github.com/google/uuid"

// Kind identifies the structural role of an IP on a socket.
type Kind string

const (
	// Data carries a value between ports. Most IPs are Data.
	Data Kind = "data"

	// OpenBracket starts a logical group of subsequent IPs (e.g. a
	// multi-part record). Mirrors legacy "begingroup" semantics.
	OpenBracket Kind = "openBracket"

	// CloseBracket ends the group started by the matching OpenBracket.
	// Mirrors legacy "endgroup" semantics.
	CloseBracket Kind = "closeBracket"
)

// IP is an Information Packet: a typed value travelling on a socket.
//
// IPs are immutable once constructed; components that want to modify a
// payload construct a new IP rather than mutating one in place, so that
// an IP can be safely observed by the coordinator's event multiplexer
// concurrently with its delivery.
type IP struct {
	id       string
	kind     Kind
	data     interface{}
	metadata map[string]interface{}
}

// New constructs an IP of the given kind carrying data, with optional
// metadata. A unique id is assigned so that coordinator-level ip events
// can be correlated by downstream observers (loggers, tracers).
func New(kind Kind, data interface{}, metadata map[string]interface{}) IP {
	return IP{
		id:       uuid.NewString(),
		kind:     kind,
		data:     data,
		metadata: metadata,
	}
}

// ID returns the unique identifier assigned to this IP at construction.
func (p IP) ID() string { return p.id }

// Kind returns the IP's structural kind.
func (p IP) Kind() Kind { return p.kind }

// Data returns the IP's payload. Callers must type-assert to the
// concrete type they expect; the coordinator never does this itself.
func (p IP) Data() interface{} { return p.data }

// Metadata returns the IP's metadata map. The returned map must not be
// mutated by callers; use WithMetadata to derive a new IP instead.
func (p IP) Metadata() map[string]interface{} { return p.metadata }

// WithMetadata returns a copy of p with key set to value in its
// metadata. Used by the coordinator to stamp "initial: true" on IIP
// deliveries without mutating the caller's original IP.
func (p IP) WithMetadata(key string, value interface{}) IP {
	merged := make(map[string]interface{}, len(p.metadata)+1)
	for k, v := range p.metadata {
		merged[k] = v
	}
	merged[key] = value
	return IP{id: p.id, kind: p.kind, data: p.data, metadata: merged}
}
