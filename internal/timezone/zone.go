// Package timezone maps coordinates to IANA zone names.
package timezone

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ringsaturn/tzf"

	"github.com/i474232898/weather-update/internal/weather"
)

// ErrNoZone is returned for points no zone polygon covers.
var ErrNoZone = errors.New("no time zone covers coordinates")

// loadPolygons builds the polygon finder at most once per process; the data
// set is large and read-only.
var loadPolygons = sync.OnceValues(func() (tzf.F, error) {
	return tzf.NewDefaultFinder()
})

// Finder names the zone containing a point.
type Finder struct {
	polygons tzf.F
}

// Shared returns a Finder over the bundled polygon set.
func Shared() (*Finder, error) {
	polygons, err := loadPolygons()
	if err != nil {
		return nil, fmt.Errorf("load time zone polygons: %w", err)
	}
	return &Finder{polygons: polygons}, nil
}

// ZoneName reports the zone at c, e.g. "America/Denver".
func (f *Finder) ZoneName(c weather.Coords) (string, error) {
	name := f.polygons.GetTimezoneName(c.Longitude, c.Latitude)
	if name == "" {
		return "", fmt.Errorf("%w %s", ErrNoZone, c.Key())
	}
	return name, nil
}
