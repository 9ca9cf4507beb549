package registry

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryRegistry is a Registry backed by an in-process map. It suits
// tests and single-run CLI use; embedding applications provide durable
// implementations.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[string]RenderRecord
	status  map[string]Status
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		records: make(map[string]RenderRecord),
		status:  make(map[string]Status),
	}
}

// RecordRender stores the record and sets the server's initial status
func (m *MemoryRegistry) RecordRender(record RenderRecord) error {
	if record.ID == "" {
		return fmt.Errorf("render record has no ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.ID] = record
	if record.Success {
		m.status[record.ID] = StatusCreated
	} else {
		m.status[record.ID] = StatusError
	}
	return nil
}

// UpdateStatus moves a known server to a new lifecycle status
func (m *MemoryRegistry) UpdateStatus(id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("unknown server %q", id)
	}
	m.status[id] = status
	return nil
}

// Get returns the record and current status for an ID
func (m *MemoryRegistry) Get(id string) (RenderRecord, Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	return record, m.status[id], ok
}

// List returns every recorded ID in sorted order
func (m *MemoryRegistry) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
