package components

import (
	"sync"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
)

// Sink consumes every IP received on IN and records it, without
// forwarding anything. Used by tests to assert what was delivered.
type Sink struct {
	*Base
	in *component.BasePort

	mu      sync.Mutex
	Received []ip.IP
}

// NewSink builds a Sink with a single IN port.
func NewSink() *Sink {
	s := &Sink{
		Base: NewBase(),
		in:   component.NewPort("IN"),
	}
	s.AddInPort("IN", s.in)
	s.in.OnAttachSocket(func(sock component.Socket, _ *int) {
		sock.OnIP(s.handleIP)
	})
	return s
}

func (s *Sink) handleIP(packet ip.IP) {
	s.beginWork()
	defer s.endWork()
	s.mu.Lock()
	s.Received = append(s.Received, packet)
	s.mu.Unlock()
}

// All returns a snapshot of every IP received so far.
func (s *Sink) All() []ip.IP {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ip.IP, len(s.Received))
	copy(out, s.Received)
	return out
}
