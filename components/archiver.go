package components

import (
	"context"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
	"github.com/berrylands/noflo/store"
)

// Archiver persists every IP received on IN to a store.IPStore. It has
// no outport: it exists purely as a side effect, to give the SQL
// drivers a concrete home inside a running network.
type Archiver struct {
	*Base
	in  *component.BasePort
	db  store.IPStore

	// onError receives any persistence error, if set. Archiver does
	// not surface errors on a port since it has none.
	onError func(error)
}

// NewArchiver builds an Archiver writing to db.
func NewArchiver(db store.IPStore) *Archiver {
	a := &Archiver{
		Base: NewBase(),
		in:   component.NewPort("IN"),
		db:   db,
	}
	a.AddInPort("IN", a.in)
	a.in.OnAttachSocket(func(s component.Socket, _ *int) {
		s.OnIP(a.handleIP)
	})
	return a
}

// OnError registers fn to be called when a SaveIP call fails.
func (a *Archiver) OnError(fn func(error)) { a.onError = fn }

func (a *Archiver) handleIP(packet ip.IP) {
	a.beginWork()
	defer a.endWork()

	if err := a.db.SaveIP(context.Background(), a.NodeID(), packet); err != nil && a.onError != nil {
		a.onError(err)
	}
}
