package highscore

import (
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	stats map[string]TrackStats
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stats: make(map[string]TrackStats)}
}

// Load returns a copy of the stored stats. The ghost recording is shared; it
// is sealed and therefore read-only.
func (m *MemoryStore) Load(track string) (*TrackStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[track]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Save stores a copy of stats.
func (m *MemoryStore) Save(stats *TrackStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.Track] = *stats
	return nil
}

// Tracks lists stored tracks in name order.
func (m *MemoryStore) Tracks() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.stats))
	for k := range m.stats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
