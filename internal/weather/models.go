package weather

import (
	"fmt"
	"math"
	"strings"
)

// Coords is a point on the globe in decimal degrees.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coords) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Key rounds to two decimals (about 1.1km) so repeated requests for the same
// place share a key.
func (c Coords) Key() string {
	const precision = 100.0
	lat := math.Round(c.Latitude*precision) / precision
	lon := math.Round(c.Longitude*precision) / precision
	// Avoid "-0.00" for points just south of the equator or west of Greenwich.
	if lat == 0 {
		lat = 0
	}
	if lon == 0 {
		lon = 0
	}
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// Location represents the geocoded place a snapshot was captured for.
// Every descriptive field is optional; only the coordinates are always set.
type Location struct {
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
	TimeZone  string  `json:"timeZone,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locality returns the city name, if the geocoder found one.
func (l Location) Locality() (string, bool) {
	return l.City, l.City != ""
}

// AdministrativeArea returns the state/region name, if the geocoder found one.
func (l Location) AdministrativeArea() (string, bool) {
	return l.Region, l.Region != ""
}

// Coords returns the location's coordinates.
func (l Location) Coords() Coords {
	return Coords{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Key returns the store key for this location. Snapshots are keyed by where
// they were requested, never by the geocoded name, so a failed reverse lookup
// cannot split one place across two keys.
func (l Location) Key() string {
	return l.Coords().Key()
}

// Matches reports whether the location carries the given city and, when
// region is non-empty, the given region. Comparison ignores case.
func (l Location) Matches(city, region string) bool {
	city = strings.TrimSpace(city)
	region = strings.TrimSpace(region)
	if city == "" || !strings.EqualFold(l.City, city) {
		return false
	}
	return region == "" || strings.EqualFold(l.Region, region)
}
