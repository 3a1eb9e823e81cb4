package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-update/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// SnapshotHistory holds the snapshots captured for one location, oldest first.
type SnapshotHistory struct {
	Location  weather.Location
	Snapshots []*weather.WeatherSnapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*SnapshotHistory

	// max number of snapshots kept per location
	maxHistory int
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, only the latest snapshot is kept.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
	}
}

// SaveSnapshot appends a snapshot for its location and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot *weather.WeatherSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot is nil")
	}
	loc := snapshot.Location()
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	// Keep the slice ordered by capture time; out-of-order saves are rare.
	i := len(history.Snapshots)
	for i > 0 && history.Snapshots[i-1].CapturedAt().After(snapshot.CapturedAt()) {
		i--
	}
	history.Snapshots = append(history.Snapshots, nil)
	copy(history.Snapshots[i+1:], history.Snapshots[i:])
	history.Snapshots[i] = snapshot
	if i == len(history.Snapshots)-1 {
		// Only the newest snapshot describes the location.
		history.Location = loc
	}

	if len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}
	return nil
}

// GetLatest returns the most recent snapshot for a location key.
func (s *MemoryStore) GetLatest(key string) (*weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns the snapshots for a location key captured between from and
// to (inclusive), oldest first.
func (s *MemoryStore) GetRange(key string, from, to time.Time) ([]*weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []*weather.WeatherSnapshot
	for _, snap := range history.Snapshots {
		ts := snap.CapturedAt()
		if !ts.Before(from) && !ts.After(to) {
			result = append(result, snap)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// ListLocations returns every location with at least one snapshot.
func (s *MemoryStore) ListLocations() ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Location, 0, len(s.data))
	for _, history := range s.data {
		out = append(out, history.Location)
	}
	sortLocations(out)
	return out, nil
}

// sortLocations orders locations by key so listings are stable.
func sortLocations(locs []weather.Location) {
	sort.Slice(locs, func(i, j int) bool {
		return locs[i].Key() < locs[j].Key()
	})
}
