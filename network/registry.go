package network

import "github.com/berrylands/noflo/component"

// initialRecord pairs a socket created for an IIP with the payload to
// post on every sendInitials, and the endpoint it targets. removeInitial
// locates the socket by its To endpoint and then drops records by
// socket identity (filterInitials); the to field is not read there.
type initialRecord struct {
	socket component.Socket
	data   interface{}
	to     component.Endpoint
}

func equalIndex(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func matchesEndpoint(ep, to component.Endpoint) bool {
	return ep.Process == to.Process && ep.Port == to.Port && equalIndex(ep.Index, to.Index)
}

func filterInitials(records []initialRecord, socket component.Socket) []initialRecord {
	kept := make([]initialRecord, 0, len(records))
	for _, r := range records {
		if r.socket == socket {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// socketCount and initialCount are test/inspection helpers; they take
// the lock themselves so callers never reach into Network's fields
// directly.
func (n *Network) socketCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sockets)
}

func (n *Network) initialCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.initials)
}
