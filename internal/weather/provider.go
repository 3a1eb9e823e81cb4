package weather

import (
	"context"
	"time"
)

// Provider abstracts a Dark Sky compatible forecast source.
type Provider interface {
	Name() string
	// FetchConditions returns the current conditions and daily forecast document.
	FetchConditions(ctx context.Context, coords Coords) (Document, error)
	// FetchConditionsAt returns the conditions document observed at a past time.
	FetchConditionsAt(ctx context.Context, coords Coords, at time.Time) (Document, error)
}

// Geocoder turns coordinates into a named place.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coords Coords) (Location, error)
}

// Store is the contract the in-memory and SQLite stores satisfy.
type Store interface {
	SaveSnapshot(snapshot *WeatherSnapshot) error
	GetLatest(key string) (*WeatherSnapshot, error)
	// GetRange returns the retained snapshots captured between from and to
	// (inclusive), oldest first.
	GetRange(key string, from, to time.Time) ([]*WeatherSnapshot, error)
	ListLocations() ([]Location, error)
}
