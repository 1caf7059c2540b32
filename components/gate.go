package components

import (
	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
)

// Gate is an addressable-port demo component: IN is an array port with
// indexed slots, and every IP received on any slot is forwarded to OUT
// stamped with the originating index. It exists to exercise the
// coordinator's addressable attach/detach path end to end.
type Gate struct {
	*Base
	in  *component.BasePort
	out *component.BasePort
}

// NewGate builds a Gate with addressable port IN and plain port OUT.
func NewGate() *Gate {
	g := &Gate{
		Base: NewBase(),
		in:   component.NewAddressablePort("IN"),
		out:  component.NewPort("OUT"),
	}
	g.AddInPort("IN", g.in)
	g.AddOutPort("OUT", g.out)
	g.in.OnAttachSocket(func(s component.Socket, index *int) {
		s.OnIP(func(packet ip.IP) {
			g.handleIP(packet, index)
		})
	})
	return g
}

func (g *Gate) handleIP(packet ip.IP, index *int) {
	g.beginWork()
	defer g.endWork()

	idx := -1
	if index != nil {
		idx = *index
	}
	stamped := packet.WithMetadata("gateIndex", idx)
	for _, s := range g.out.Sockets() {
		s.Post(stamped)
	}
}
