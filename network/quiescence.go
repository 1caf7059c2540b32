package network

import "github.com/berrylands/noflo/component"

// isRunningLocked implements §4.7's running predicate: at least one
// process with a loaded component reports positive Load, or, for
// HasLegacyActivation implementers, positive OpenConnections. Must be
// called with n.mu held.
func (n *Network) isRunningLocked() bool {
	for _, proc := range n.processes {
		if proc.Component == nil {
			continue
		}
		if proc.Component.Load() > 0 {
			return true
		}
		if legacy, ok := proc.Component.(component.HasLegacyActivation); ok && legacy.OpenConnections() > 0 {
			return true
		}
	}
	return false
}

func (n *Network) isRunning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isRunningLocked()
}

// IsRunning reports whether any process currently has positive load or
// open legacy connections — i.e. whether the network is doing work
// right now, as opposed to merely being started. Useful for external
// monitoring that wants to distinguish "idle but started" from "busy".
func (n *Network) IsRunning() bool {
	return n.isRunning()
}

func (n *Network) activeLoad() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0
	for _, proc := range n.processes {
		if proc.Component == nil {
			continue
		}
		total += proc.Component.Load()
		if legacy, ok := proc.Component.(component.HasLegacyActivation); ok {
			total += legacy.OpenConnections()
		}
	}
	return total
}

// onActivate is the quiescence detector's abort hook: any activation —
// modern or legacy — invalidates the currently pending debounced end
// by bumping the generation counter the debounced callback checks, and
// cancels its timer as a courtesy (redundant once the generation has
// moved on, but avoids leaving a stale timer running unnecessarily).
func (n *Network) onActivate() {
	n.mu.Lock()
	n.quiescenceGen++
	cancel := n.pendingEnd
	n.pendingEnd = nil
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	n.metrics.setActiveLoad(n.activeLoad())
}

func (n *Network) onDeactivate() {
	n.metrics.setActiveLoad(n.activeLoad())
	n.checkIfFinished()
}

// checkIfFinished implements C7's two-phase check: if the network is
// still running, do nothing. Otherwise schedule a debounced re-check;
// if the network is still quiescent when it fires *and* no activation
// has landed since (same generation), transition to stopped. The
// generation counter is what makes this robust against a component
// that deactivates and reactivates within the same tick — a bare
// Cancel() race against an already-firing timer would not be.
func (n *Network) checkIfFinished() {
	if n.isRunning() {
		return
	}

	n.mu.Lock()
	n.quiescenceGen++
	gen := n.quiescenceGen
	debounce := n.cfg.quiescenceDebounce
	scheduler := n.cfg.scheduler
	n.mu.Unlock()

	cancel := scheduler.ScheduleAfter(debounce, func() {
		n.mu.Lock()
		current := n.quiescenceGen == gen
		n.pendingEnd = nil
		n.mu.Unlock()

		if !current || n.isRunning() {
			return
		}
		n.transitionToStopped()
	})

	n.mu.Lock()
	n.pendingEnd = cancel
	n.mu.Unlock()
}
