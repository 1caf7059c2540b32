package network

import (
	"sync"
	"time"

	"github.com/berrylands/noflo/component"
)

// Network is the coordinator: a single in-process object parameterized
// by a graph (via Connect) that brings a flow-based program to life,
// drives its execution by observing and controlling its components,
// and tears it back down. It owns the process table, the socket
// registry, the initial/default lists, and the debug flag exclusively;
// components own their own ports, and sockets own their endpoint
// references.
type Network struct {
	mu sync.Mutex

	processes map[string]*Process
	loader    component.Loader

	sockets      []component.Socket
	initials     []initialRecord
	nextInitials []initialRecord
	defaults     []component.Socket

	started     bool
	stopped     bool
	startupDate time.Time
	debug       bool

	quiescenceGen int64
	pendingEnd    Cancel

	cfg *config
	mx  *multiplexer

	metrics *Metrics
}

// New creates a Network with no nodes, sockets, or initials. Call
// Connect to instantiate a graph against it, then Start to run it.
func New(opts ...Option) *Network {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	n := &Network{
		processes: make(map[string]*Process),
		cfg:       cfg,
		mx:        newMultiplexer(cfg.emitter, cfg.metrics),
		metrics:   cfg.metrics,
		debug:     cfg.debug,
		stopped:   true,
	}
	return n
}

// OnIP registers fn to be called for every ip event this network
// produces, including those crossing up from its own subgraphs. It
// also satisfies component.SubnetworkView, so a *Network can be
// embedded as the nested network behind an IsSubgraph component.
func (n *Network) OnIP(fn func(component.SubgraphIPEvent)) func() {
	return n.mx.OnIP(fn)
}

// OnProcessError registers fn to be called for every process-error
// this network produces, including those crossing up from its own
// subgraphs. Also part of component.SubnetworkView.
func (n *Network) OnProcessError(fn func(component.SubgraphProcessErrorEvent)) func() {
	return n.mx.OnProcessError(fn)
}

// Processes returns a snapshot of the process table's records.
func (n *Network) Processes() []*Process {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Process, 0, len(n.processes))
	for _, p := range n.processes {
		out = append(out, p)
	}
	return out
}

// GetNode looks up a process record by node id.
func (n *Network) GetNode(id string) (*Process, bool) {
	return n.getNode(id)
}

// RenameNode renames a node in place. See the process table's
// renameNode for the error cases.
func (n *Network) RenameNode(oldID, newID string) error {
	return n.renameNode(oldID, newID)
}

// RemoveNode shuts the named process down and removes it from the
// table, only on a successful shutdown.
func (n *Network) RemoveNode(id string, done func(error)) {
	n.removeNode(id, done)
}
