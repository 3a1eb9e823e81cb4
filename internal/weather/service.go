package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoProvider is returned when a refresh is requested without a provider.
var ErrNoProvider = errors.New("no weather provider configured")

// ErrUnknownLocation is returned when no tracked location has the requested name.
var ErrUnknownLocation = errors.New("no tracked location with that name")

// previousDayOffset is how far back the comparison payload is fetched.
const previousDayOffset = 24 * time.Hour

// Service orchestrates fetching payloads, building snapshots and persisting them.
type Service struct {
	store    Store
	provider Provider
	geocoder Geocoder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new Service. provider and geocoder may be nil: without a
// provider the service only serves stored snapshots, without a geocoder
// locations stay unnamed.
func NewService(store Store, provider Provider, geocoder Geocoder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		geocoder: geocoder,
		logger:   logger.With("component", "weather-service"),
		now:      time.Now,
	}
}

// ResolveLocation names the place at coords. Geocoding is best effort; when it
// fails the name stored with the last snapshot for these coordinates is reused,
// and failing that the bare coordinates are returned.
func (s *Service) ResolveLocation(ctx context.Context, coords Coords) Location {
	if s.geocoder != nil {
		resolved, err := s.geocoder.ReverseGeocode(ctx, coords)
		if err == nil {
			resolved.Latitude = coords.Latitude
			resolved.Longitude = coords.Longitude
			return resolved
		}
		s.logger.Warn("reverse geocode failed",
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", err,
		)
	}
	return s.lastKnownLocation(coords)
}

func (s *Service) lastKnownLocation(coords Coords) Location {
	loc := Location{Latitude: coords.Latitude, Longitude: coords.Longitude}
	prev, err := s.store.GetLatest(coords.Key())
	if err != nil || prev == nil {
		return loc
	}
	known := prev.Location()
	known.Latitude = coords.Latitude
	known.Longitude = coords.Longitude
	return known
}

// FetchAndStore fetches the current and previous-day payloads concurrently,
// builds a snapshot and stores it. A failed current fetch leaves the last good
// snapshot in place; a failed previous-day fetch only loses yesterday's reading.
func (s *Service) FetchAndStore(ctx context.Context, coords Coords) (*WeatherSnapshot, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	now := s.now()
	loc := s.ResolveLocation(ctx, coords)

	var (
		wg          sync.WaitGroup
		current     Document
		previous    Document
		currentErr  error
		previousErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.provider.FetchConditions(ctx, coords)
	}()
	go func() {
		defer wg.Done()
		previous, previousErr = s.provider.FetchConditionsAt(ctx, coords, now.Add(-previousDayOffset))
	}()
	wg.Wait()

	if currentErr != nil {
		s.logger.Error("failed to fetch current conditions",
			"provider", s.provider.Name(),
			"location", loc.Key(),
			"error", currentErr,
		)
		return nil, fmt.Errorf("failed to fetch current conditions: %w", currentErr)
	}
	if previousErr != nil {
		s.logger.Warn("failed to fetch previous-day conditions",
			"provider", s.provider.Name(),
			"location", loc.Key(),
			"error", previousErr,
		)
		previous = Document{}
	}

	snapshot := NewSnapshotAt(loc, current, previous, now)
	if err := s.store.SaveSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("stored snapshot",
		"location", loc.Key(),
		"captured_at", snapshot.CapturedAt(),
	)
	return snapshot, nil
}

// LocationByName finds a tracked location by city and, when region is
// non-empty, region. Ties resolve to the first location in store order.
func (s *Service) LocationByName(city, region string) (Location, error) {
	locs, err := s.store.ListLocations()
	if err != nil {
		return Location{}, err
	}
	for _, loc := range locs {
		if loc.Matches(city, region) {
			return loc, nil
		}
	}
	return Location{}, ErrUnknownLocation
}

// History returns the retained snapshots for key captured within [from, to].
func (s *Service) History(key string, from, to time.Time) ([]*WeatherSnapshot, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return s.store.GetRange(key, from, to)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(key string) (*WeatherSnapshot, error) {
	return s.store.GetLatest(key)
}

// Locations delegates to the underlying store.
func (s *Service) Locations() ([]Location, error) {
	return s.store.ListLocations()
}
