package memory

import (
	"context"
	"sync"

	"github.com/vbonduro/moveassist/internal/medium"
)

// MemoryMedium keeps entries in a map. Contents are lost on exit.
type MemoryMedium struct {
	mu      sync.Mutex
	quota   int64
	entries map[string]string
}

func NewMemoryMedium(quota int64) *MemoryMedium {
	return &MemoryMedium{quota: quota, entries: make(map[string]string)}
}

func (m *MemoryMedium) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryMedium) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var used int64
	for k, v := range m.entries {
		if k != key {
			used += medium.EntrySize(k, v)
		}
	}
	if err := medium.CheckQuota(used, medium.EntrySize(key, value), m.quota); err != nil {
		return err
	}
	m.entries[key] = value
	return nil
}

func (m *MemoryMedium) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryMedium) Usage(_ context.Context) (medium.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := medium.Usage{QuotaBytes: m.quota, Entries: len(m.entries)}
	for k, v := range m.entries {
		u.UsedBytes += medium.EntrySize(k, v)
	}
	return u, nil
}
