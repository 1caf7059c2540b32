package network

import (
	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/graphdef"
)

// Process is the process table's record for one graph node: the node
// id, and — once loaded — the component instance bound to it. A
// Process with a nil Component is a reserved placeholder: a node was
// declared in the graph but named no component, so it owns no ports
// and is never subscribed to or counted by the quiescence detector.
type Process struct {
	ID            string
	Component     component.Component
	ComponentName string
}

// addNode implements C1: idempotent by id. A second call with an
// already-registered id returns the existing record without touching
// the loader. If the node names no component, the record is stored
// and returned unloaded. Otherwise the loader resolves it; on success
// the instance is stamped with its node id, the record is stored, and
// the instance is subscribed (subgraph subscription first if it
// reports itself as one).
func (n *Network) addNode(node graphdef.Node, done func(proc *Process, err error)) {
	n.mu.Lock()
	if existing, ok := n.processes[node.ID]; ok {
		n.mu.Unlock()
		done(existing, nil)
		return
	}
	n.mu.Unlock()

	proc := &Process{ID: node.ID, ComponentName: node.Component}

	if node.Component == "" {
		n.mu.Lock()
		n.processes[node.ID] = proc
		count := len(n.processes)
		n.mu.Unlock()
		n.metrics.setProcesses(count)
		done(proc, nil)
		return
	}

	n.loader.Load(node.Component, node.Metadata, func(err error, instance component.Component) {
		if err != nil {
			done(nil, loaderErr(err))
			return
		}

		instance.SetNodeID(node.ID)
		proc.Component = instance

		n.mu.Lock()
		n.processes[node.ID] = proc
		count := len(n.processes)
		n.mu.Unlock()
		n.metrics.setProcesses(count)

		if sg, ok := instance.(component.IsSubgraph); ok && sg.IsSubgraphComponent() {
			n.mx.subscribeSubgraph(node.ID, instance, sg, n.IsDebug())
		}
		n.mx.subscribeNode(node.ID, instance, n.onActivate, n.onDeactivate)

		done(proc, nil)
	})
}

// removeNode shuts the process's component down and, only on success,
// removes the record from the table.
func (n *Network) removeNode(id string, done func(err error)) {
	n.mu.Lock()
	proc, ok := n.processes[id]
	n.mu.Unlock()
	if !ok {
		done(structuralErr("no such node %q", id))
		return
	}

	if proc.Component == nil {
		n.mu.Lock()
		delete(n.processes, id)
		count := len(n.processes)
		n.mu.Unlock()
		n.metrics.setProcesses(count)
		done(nil)
		return
	}

	proc.Component.Shutdown(func(err error) {
		if err != nil {
			done(lifecycleErr("shutdown failed for node %q", err, id))
			return
		}
		n.mu.Lock()
		delete(n.processes, id)
		count := len(n.processes)
		n.mu.Unlock()
		n.metrics.setProcesses(count)
		done(nil)
	})
}

// renameNode rewrites the id a record is stored under and re-stamps
// its component. Colliding with an existing id is an error — the
// source left this undefined (§9); we refuse rather than silently
// clobbering the other record.
func (n *Network) renameNode(oldID, newID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	proc, ok := n.processes[oldID]
	if !ok {
		return structuralErr("no such node %q", oldID)
	}
	if _, collide := n.processes[newID]; collide {
		return structuralErr("node %q already exists", newID)
	}

	delete(n.processes, oldID)
	proc.ID = newID
	n.processes[newID] = proc
	if proc.Component != nil {
		proc.Component.SetNodeID(newID)
	}
	return nil
}

// getNode looks up a process record by id.
func (n *Network) getNode(id string) (*Process, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	proc, ok := n.processes[id]
	return proc, ok
}
