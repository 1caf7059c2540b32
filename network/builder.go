package network

import (
	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/graphdef"
)

func toComponentEndpoint(node string, ep graphdef.Endpoint) component.Endpoint {
	return component.Endpoint{Process: node, Port: ep.Port, Index: ep.Index}
}

// waitReady calls fn once c reports ready, synchronously if it already
// is. Readiness is a one-shot signal per component.Component's
// contract, so no timeout or retry bookkeeping is needed here; if a
// component never becomes ready, fn simply never runs (§9, open
// question: no timeout is defined).
func waitReady(c component.Component, fn func()) {
	if c.IsReady() {
		fn()
		return
	}
	c.OnReady(fn)
}

// addEdge implements C4's edge case: await readiness of both
// endpoints, subscribe the socket, then attach inbound before outbound
// so a synchronous post from the outbound side always has a
// destination. Only on success is the socket appended to the registry.
func (n *Network) addEdge(edge graphdef.Edge, done func(error)) {
	toProc, ok := n.getNode(edge.To.Node)
	if !ok {
		done(structuralErr("no such node %q", edge.To.Node))
		return
	}
	fromProc, ok := n.getNode(edge.From.Node)
	if !ok {
		done(structuralErr("no such node %q", edge.From.Node))
		return
	}
	if toProc.Component == nil {
		done(structuralErr("node %q has no component instance", toProc.ID))
		return
	}
	if fromProc.Component == nil {
		done(structuralErr("node %q has no component instance", fromProc.ID))
		return
	}

	socket := component.NewSocket(edge.Metadata)

	waitReady(toProc.Component, func() {
		waitReady(fromProc.Component, func() {
			n.mx.subscribeSocket(socket)

			if err := connectPort(socket, toProc, edge.To.Port, edge.To.Index, true); err != nil {
				done(err)
				return
			}
			if err := connectPort(socket, fromProc, edge.From.Port, edge.From.Index, false); err != nil {
				done(err)
				return
			}

			n.mu.Lock()
			n.sockets = append(n.sockets, socket)
			count := len(n.sockets)
			n.mu.Unlock()
			n.metrics.setSockets(count)

			done(nil)
		})
	})
}

// addInitial implements C4's IIP case: only the inbound side is
// attached (an IIP has no upstream process). The socket and a record
// of its payload are appended to both initials (drained on the next
// sendInitials) and nextInitials (replayed on every subsequent start).
func (n *Network) addInitial(initial graphdef.Initializer, done func(error)) {
	toProc, ok := n.getNode(initial.To.Node)
	if !ok {
		done(structuralErr("no such node %q", initial.To.Node))
		return
	}
	if toProc.Component == nil {
		done(structuralErr("node %q has no component instance", toProc.ID))
		return
	}

	socket := component.NewSocket(initial.Metadata)

	waitReady(toProc.Component, func() {
		n.mx.subscribeSocket(socket)

		if err := connectPort(socket, toProc, initial.To.Port, initial.To.Index, true); err != nil {
			done(err)
			return
		}

		to := toComponentEndpoint(initial.To.Node, initial.To)
		record := initialRecord{socket: socket, data: initial.Data, to: to}

		n.mu.Lock()
		n.sockets = append(n.sockets, socket)
		n.initials = append(n.initials, record)
		n.nextInitials = append(n.nextInitials, record)
		socketCount := len(n.sockets)
		running := n.isRunningLocked()
		started := n.started
		stopped := n.stopped
		n.mu.Unlock()
		n.metrics.setSockets(socketCount)

		switch {
		case started && running:
			n.sendInitials()
		case !stopped && !started:
			n.mu.Lock()
			n.started = true
			n.mu.Unlock()
			n.sendInitials()
		}

		done(nil)
	})
}

// addDefaults implements C4's default case: every inport of proc that
// declares a default value and currently has no attached socket gets
// one, recorded separately so sendDefaults can fire it after IIPs.
func (n *Network) addDefaults(proc *Process, done func(error)) {
	if proc.Component == nil {
		done(nil)
		return
	}

	waitReady(proc.Component, func() {
		for name, port := range proc.Component.InPorts() {
			if !port.HasDefault() || port.IsAttached() {
				continue
			}

			socket := component.NewSocket(nil)
			n.mx.subscribeSocket(socket)

			if err := connectPort(socket, proc, name, nil, true); err != nil {
				done(err)
				return
			}

			n.mu.Lock()
			n.sockets = append(n.sockets, socket)
			n.defaults = append(n.defaults, socket)
			count := len(n.sockets)
			n.mu.Unlock()
			n.metrics.setSockets(count)
		}
		done(nil)
	})
}

// removeEdge and removeInitial are symmetric: find the socket whose To
// endpoint matches, detach it from the inport, drop it from the
// registry, and (for an IIP) also drop its initial records.
func (n *Network) removeEdge(edge graphdef.Edge, done func(error)) {
	n.removeSocketTo(edge.To.Node, toComponentEndpoint(edge.To.Node, edge.To), false, done)
}

func (n *Network) removeInitial(initial graphdef.Initializer, done func(error)) {
	n.removeSocketTo(initial.To.Node, toComponentEndpoint(initial.To.Node, initial.To), true, done)
}

func (n *Network) removeSocketTo(nodeID string, to component.Endpoint, isInitial bool, done func(error)) {
	proc, ok := n.getNode(nodeID)
	if !ok {
		done(structuralErr("no such node %q", nodeID))
		return
	}

	n.mu.Lock()
	var target component.Socket
	kept := make([]component.Socket, 0, len(n.sockets))
	for _, s := range n.sockets {
		if target == nil && matchesEndpoint(s.To(), to) {
			target = s
			continue
		}
		kept = append(kept, s)
	}
	n.sockets = kept
	if isInitial && target != nil {
		n.initials = filterInitials(n.initials, target)
		n.nextInitials = filterInitials(n.nextInitials, target)
	}
	count := len(n.sockets)
	n.mu.Unlock()
	n.metrics.setSockets(count)

	if target == nil {
		done(structuralErr("no socket attached to %s.%s", to.Process, to.Port))
		return
	}
	if proc.Component != nil {
		if port, ok := proc.Component.InPorts()[to.Port]; ok {
			port.Detach(target)
		}
	}
	done(nil)
}
