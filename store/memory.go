package store

import (
	"context"
	"sync"
	"time"

	"github.com/berrylands/noflo/ip"
)

// MemStore is an in-memory IPStore. Data is lost on process exit; it
// exists for tests and short-lived example networks.
type MemStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string][]Record)}
}

func (m *MemStore) SaveIP(_ context.Context, processID string, packet ip.IP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[processID] = append(m.records[processID], Record{
		ProcessID:  processID,
		Kind:       packet.Kind(),
		Data:       packet.Data(),
		Metadata:   packet.Metadata(),
		ArchivedAt: time.Now(),
	})
	return nil
}

func (m *MemStore) LoadRecent(_ context.Context, processID string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.records[processID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}

	out := make([]Record, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		out[len(all)-1-i] = all[i]
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }
