package weather

import "time"

// WeatherSnapshot is one observation: the provider's raw current/forecast
// payload, the payload for the same place a day earlier, where it was taken
// and when. It is immutable once built; every derived value is computed from
// the payloads on access (see view.go).
type WeatherSnapshot struct {
	capturedAt time.Time
	location   Location
	current    Document
	previous   Document
}

// NewSnapshot builds a snapshot stamped with the current time.
func NewSnapshot(loc Location, current, previous Document) *WeatherSnapshot {
	return NewSnapshotAt(loc, current, previous, time.Now())
}

// NewSnapshotAt builds a snapshot with an explicit capture time. Payloads of
// any shape are accepted; nil payloads are treated as empty documents.
func NewSnapshotAt(loc Location, current, previous Document, capturedAt time.Time) *WeatherSnapshot {
	return &WeatherSnapshot{
		capturedAt: capturedAt.Round(0).UTC(),
		location:   loc,
		current:    normalizeDocument(current),
		previous:   normalizeDocument(previous),
	}
}

func (s *WeatherSnapshot) CapturedAt() time.Time {
	return s.capturedAt
}

func (s *WeatherSnapshot) Location() Location {
	return s.location
}
