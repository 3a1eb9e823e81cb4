package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-update/internal/weather"
)

var errNoAddress = errors.New("no address found for coordinates")

// geocoder keeps its API key in a package variable.
var geocoderKeyMu sync.Mutex

// ZoneLookup names the time zone at a point.
type ZoneLookup interface {
	ZoneName(c weather.Coords) (string, error)
}

// GoogleGeocoder implements weather.Geocoder with the Google reverse geocoding API.
type GoogleGeocoder struct {
	apiKey    string
	timezones ZoneLookup
}

// NewGoogleGeocoder creates a geocoder. timezones may be nil, in which case
// locations are returned without a time zone.
func NewGoogleGeocoder(apiKey string, timezones ZoneLookup) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:    apiKey,
		timezones: timezones,
	}
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, coords weather.Coords) (weather.Location, error) {
	if err := ctx.Err(); err != nil {
		return weather.Location{}, err
	}
	if g.apiKey == "" {
		return weather.Location{}, fmt.Errorf("geocoder: %w", errNoAPIKey)
	}

	geocoderKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
	geocoderKeyMu.Unlock()
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocoder: %w", err)
	}
	if len(addresses) == 0 {
		return weather.Location{}, fmt.Errorf("geocoder: %w", errNoAddress)
	}

	loc := locationFromAddress(coords, addresses[0])
	if g.timezones != nil {
		if tz, err := g.timezones.ZoneName(coords); err == nil {
			loc.TimeZone = tz
		}
	}
	return loc, nil
}

// locationFromAddress maps a geocoder address onto a Location. Google puts the
// locality in City and the first-level administrative area in State.
func locationFromAddress(coords weather.Coords, a geocoder.Address) weather.Location {
	return weather.Location{
		City:      a.City,
		Region:    a.State,
		Country:   a.Country,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	}
}
