package network

import (
	"sync"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
)

// Start implements C9: if the network is already started, it is first
// stopped, then started again (there is no separate "restart while
// running" code path — Restart and the already-started branch of
// Start both reduce to stop-then-start). Otherwise: nextInitials is
// copied into initials so a restart re-fires every IIP, the event
// buffer is cleared of anything left over from before this start,
// every component is started, IIPs are sent, then defaults, and only
// then does the network transition to started — which is also the
// point at which whatever those sends produced gets flushed to
// observers, after the start event itself.
func (n *Network) Start(done func(error)) {
	if n.IsStarted() {
		n.Stop(func(err error) {
			if err != nil {
				done(err)
				return
			}
			n.Start(done)
		})
		return
	}

	n.mu.Lock()
	n.initials = append([]initialRecord(nil), n.nextInitials...)
	n.mu.Unlock()
	n.mx.clearBuffer()

	n.startComponents(func(err error) {
		if err != nil {
			done(err)
			return
		}
		n.sendInitials()
		n.sendDefaults(func(err error) {
			if err != nil {
				done(err)
				return
			}
			n.transitionToStarted()
			// A network whose processes never activate at all (no
			// nodes, or components that do no work on start) is
			// already quiescent. checkIfFinished schedules the same
			// debounced re-check a real deactivation would, so "end"
			// still fires once, ~quiescenceDebounce after start,
			// instead of requiring an explicit Stop (§4.7, §9).
			n.checkIfFinished()
			done(nil)
		})
	})
}

// Stop implements C9: disconnect every connected socket, shut every
// component down, and once all have finished, transition to stopped.
func (n *Network) Stop(done func(error)) {
	n.disconnectAllSockets()
	n.stopComponents(func(err error) {
		if err != nil {
			done(err)
			return
		}
		n.transitionToStopped()
		done(nil)
	})
}

// Restart stops the network and, only on success, starts it again.
func (n *Network) Restart(done func(error)) {
	n.Stop(func(err error) {
		if err != nil {
			done(err)
			return
		}
		n.Start(done)
	})
}

// Shutdown stops the network and then releases it entirely: the
// process table, socket registry, and initial lists are all cleared,
// so a subsequent Start has nothing left to do. Unlike Stop, a
// Shutdown network cannot be meaningfully restarted — graph.connect
// would need to run again first.
func (n *Network) Shutdown(done func(error)) {
	n.Stop(func(err error) {
		if err != nil {
			done(err)
			return
		}
		n.mu.Lock()
		n.processes = make(map[string]*Process)
		n.sockets = nil
		n.initials = nil
		n.nextInitials = nil
		n.defaults = nil
		n.mu.Unlock()
		n.metrics.setProcesses(0)
		n.metrics.setSockets(0)
		done(nil)
	})
}

// SetDebug propagates active to every socket in the registry and
// recursively into every subgraph's own network.
func (n *Network) SetDebug(active bool) {
	n.mu.Lock()
	n.debug = active
	sockets := make([]component.Socket, len(n.sockets))
	copy(sockets, n.sockets)
	procs := make([]*Process, 0, len(n.processes))
	for _, p := range n.processes {
		procs = append(procs, p)
	}
	n.mu.Unlock()

	for _, s := range sockets {
		s.SetDebug(active)
	}
	for _, p := range procs {
		if p.Component == nil {
			continue
		}
		if sg, ok := p.Component.(component.IsSubgraph); ok && sg.IsSubgraphComponent() {
			if view := sg.Network(); view != nil {
				view.SetDebug(active)
			}
		}
	}
}

// IsDebug reports the network's current debug flag.
func (n *Network) IsDebug() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.debug
}

func (n *Network) disconnectAllSockets() {
	n.mu.Lock()
	sockets := make([]component.Socket, len(n.sockets))
	copy(sockets, n.sockets)
	n.mu.Unlock()

	for _, s := range sockets {
		if s.IsConnected() {
			s.Disconnect()
		}
	}
}

func (n *Network) startComponents(done func(error)) {
	n.mu.Lock()
	procs := make([]*Process, 0, len(n.processes))
	for _, p := range n.processes {
		if p.Component != nil {
			procs = append(procs, p)
		}
	}
	n.mu.Unlock()

	waitAll(procs, func(p *Process, cb func(error)) {
		p.Component.Start(cb)
	}, func(p *Process, err error) error {
		if err != nil {
			return lifecycleErr("start failed for node %q", err, p.ID)
		}
		return nil
	}, done)
}

func (n *Network) stopComponents(done func(error)) {
	n.mu.Lock()
	procs := make([]*Process, 0, len(n.processes))
	for _, p := range n.processes {
		if p.Component != nil {
			procs = append(procs, p)
		}
	}
	n.mu.Unlock()

	waitAll(procs, func(p *Process, cb func(error)) {
		p.Component.Shutdown(cb)
	}, func(p *Process, err error) error {
		if err != nil {
			return lifecycleErr("shutdown failed for node %q", err, p.ID)
		}
		return nil
	}, done)
}

// waitAll runs op against every process concurrently and calls done
// once all have completed, with the first wrapped error (if any).
func waitAll(procs []*Process, op func(*Process, func(error)), wrap func(*Process, error) error, done func(error)) {
	if len(procs) == 0 {
		done(nil)
		return
	}

	var mu sync.Mutex
	remaining := len(procs)
	var firstErr error

	for _, p := range procs {
		p := p
		op(p, func(err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = wrap(p, err)
			}
			remaining--
			if remaining == 0 {
				done(firstErr)
			}
		})
	}
}

// sendInitials implements §4.8: posts a data IP carrying each initial's
// payload, tagged initial:true, then empties initials. Deferred by one
// scheduler turn so subscribers attached during this same Start call
// (e.g. a subgraph's own wiring) get a chance to attach first.
func (n *Network) sendInitials() {
	n.cfg.scheduler.Schedule(func() {
		n.mu.Lock()
		batch := n.initials
		n.initials = nil
		n.mu.Unlock()

		for _, rec := range batch {
			packet := ip.New(ip.Data, rec.data, nil).WithMetadata("initial", true)
			rec.socket.Post(packet)
		}
	})
}

// sendDefaults implements §4.8: connects, posts, and disconnects each
// default socket, skipping any whose target port has picked up more
// than one attached socket since addDefaults ran (the case where a
// subgraph inport was also wired from its parent). Scheduled after
// sendInitials on the same worker so IIPs are observed first, per the
// ordering guarantee in §5.
func (n *Network) sendDefaults(done func(error)) {
	n.mu.Lock()
	defaults := make([]component.Socket, len(n.defaults))
	copy(defaults, n.defaults)
	n.mu.Unlock()

	n.cfg.scheduler.Schedule(func() {
		for _, socket := range defaults {
			to := socket.To()
			proc, ok := n.getNode(to.Process)
			if !ok || proc.Component == nil {
				continue
			}
			port, ok := proc.Component.InPorts()[to.Port]
			if !ok || len(port.Sockets()) > 1 {
				continue
			}

			packet := ip.New(ip.Data, port.DefaultValue(), nil)
			socket.Connect()
			socket.Post(packet)
			socket.Disconnect()
		}
		done(nil)
	})
}
