package network

import "github.com/berrylands/noflo/graphdef"

// yieldEvery is the element count after which connect yields to the
// scheduler before continuing, preventing unbounded synchronous
// recursion when many nodes/edges/initials/defaults complete
// synchronously (§4.4).
const yieldEvery = 100

// Connect implements C8: instantiates graph in four strictly ordered
// phases — nodes, edges, initials, defaults — each fully completing
// before the next begins. Within a phase, elements are processed
// sequentially; any error aborts the whole connect and surfaces once
// via done.
func (n *Network) Connect(graph graphdef.Graph, done func(error)) {
	n.mu.Lock()
	n.loader = graph.Loader
	n.mu.Unlock()

	n.connectNodes(graph.Nodes, func(err error) {
		if err != nil {
			done(err)
			return
		}
		n.connectEdges(graph.Edges, func(err error) {
			if err != nil {
				done(err)
				return
			}
			n.connectInitials(graph.Initializers, func(err error) {
				if err != nil {
					done(err)
					return
				}
				n.connectDefaults(graph.Nodes, done)
			})
		})
	})
}

func (n *Network) connectNodes(nodes []graphdef.Node, done func(error)) {
	sequential(nodes, n.cfg.scheduler, func(node graphdef.Node, next func(error)) {
		n.addNode(node, func(_ *Process, err error) { next(err) })
	}, done)
}

func (n *Network) connectEdges(edges []graphdef.Edge, done func(error)) {
	sequential(edges, n.cfg.scheduler, func(edge graphdef.Edge, next func(error)) {
		n.addEdge(edge, next)
	}, done)
}

func (n *Network) connectInitials(initials []graphdef.Initializer, done func(error)) {
	sequential(initials, n.cfg.scheduler, func(initial graphdef.Initializer, next func(error)) {
		n.addInitial(initial, next)
	}, done)
}

func (n *Network) connectDefaults(nodes []graphdef.Node, done func(error)) {
	sequential(nodes, n.cfg.scheduler, func(node graphdef.Node, next func(error)) {
		proc, ok := n.getNode(node.ID)
		if !ok {
			next(structuralErr("no such node %q", node.ID))
			return
		}
		n.addDefaults(proc, next)
	}, done)
}

// sequential runs op against every item in order, yielding to
// scheduler every yieldEvery elements so a long graph with entirely
// synchronous components can't blow a call stack. Any error aborts the
// remaining elements and is the result passed to done.
func sequential[T any](items []T, scheduler Scheduler, op func(item T, next func(error)), done func(error)) {
	var step func(i int)
	step = func(i int) {
		if i >= len(items) {
			done(nil)
			return
		}
		run := func() {
			op(items[i], func(err error) {
				if err != nil {
					done(err)
					return
				}
				step(i + 1)
			})
		}
		if i > 0 && i%yieldEvery == 0 {
			scheduler.Schedule(run)
			return
		}
		run()
	}
	step(0)
}
