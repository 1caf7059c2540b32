// Package store provides IP persistence for the components.Archiver
// reference component. It is deliberately small compared to a general
// workflow store: a process only ever needs to append IPs it received
// and read back recent history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/berrylands/noflo/ip"
)

// ErrNotFound reports a missing record. None of the stores in this
// package return it: LoadRecent for an unknown process id returns an
// empty result and a nil error.
var ErrNotFound = errors.New("store: not found")

// Record is a single archived IP, tagged with the process that
// received it and when it was archived.
type Record struct {
	ProcessID string
	Kind      ip.Kind
	Data      interface{}
	Metadata  map[string]interface{}
	ArchivedAt time.Time
}

// IPStore persists IPs on behalf of components.Archiver.
type IPStore interface {
	// SaveIP appends packet to the history kept for processID.
	SaveIP(ctx context.Context, processID string, packet ip.IP) error

	// LoadRecent returns up to limit of the most recently saved
	// records for processID, newest first. limit <= 0 means no limit.
	LoadRecent(ctx context.Context, processID string, limit int) ([]Record, error)

	Close() error
}
