package components

import (
	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
)

// Repeat forwards every IP received on IN to OUT unchanged. It is the
// simplest possible component: no state, no branching.
type Repeat struct {
	*Base
	in  *component.BasePort
	out *component.BasePort
}

// NewRepeat builds a Repeat with ports IN and OUT.
func NewRepeat() *Repeat {
	r := &Repeat{
		Base: NewBase(),
		in:   component.NewPort("IN"),
		out:  component.NewPort("OUT"),
	}
	r.AddInPort("IN", r.in)
	r.AddOutPort("OUT", r.out)
	r.in.OnAttachSocket(func(s component.Socket, _ *int) {
		s.OnIP(r.handleIP)
	})
	return r
}

func (r *Repeat) handleIP(packet ip.IP) {
	r.beginWork()
	defer r.endWork()
	for _, s := range r.out.Sockets() {
		s.Post(packet)
	}
}
