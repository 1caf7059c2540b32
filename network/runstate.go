package network

import "time"

// transitionToStarted implements C6's stopped→started edge: sets
// startupDate on the first call only, flips the bits, and emits start.
// emitStart is what actually unbuffers and flushes whatever events
// accumulated while not started — see §4.5.
func (n *Network) transitionToStarted() {
	n.mu.Lock()
	if n.startupDate.IsZero() {
		n.startupDate = time.Now()
	}
	n.started = true
	n.stopped = false
	startupDate := n.startupDate
	n.mu.Unlock()

	n.mx.emitStart(startupDate)
}

// transitionToStopped implements C6's started→stopped edge: flips the
// bits and emits end with the uptime accumulated since startupDate.
func (n *Network) transitionToStopped() {
	n.mu.Lock()
	startupDate := n.startupDate
	n.started = false
	n.stopped = true
	n.mu.Unlock()

	end := time.Now()
	uptime := time.Duration(0)
	if !startupDate.IsZero() {
		uptime = end.Sub(startupDate)
	}
	n.mx.emitEnd(startupDate, end, uptime)
}

// IsStarted reports whether the network is currently in the started
// state.
func (n *Network) IsStarted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.started
}

// IsStopped reports whether the network is in the stopped state. A
// newly constructed network is stopped; transitionToStarted clears the
// bit, and both Stop and the quiescence detector's end set it again.
func (n *Network) IsStopped() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopped
}

// Uptime returns time elapsed since the network started, or 0 if it
// has never started or is not currently started. Non-decreasing
// between start and stop, per §8.
func (n *Network) Uptime() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.started || n.startupDate.IsZero() {
		return 0
	}
	return time.Since(n.startupDate)
}
