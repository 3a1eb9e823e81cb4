package timezone

import (
	"errors"
	"testing"

	"github.com/ringsaturn/tzf"

	"github.com/i474232898/weather-update/internal/weather"
)

func TestFinder_ZoneName(t *testing.T) {
	finder, err := Shared()
	if err != nil {
		t.Fatalf("Shared() error = %v", err)
	}

	tests := []struct {
		name   string
		coords weather.Coords
		want   string
	}{
		{name: "Denver, Colorado", coords: weather.Coords{Latitude: 39.7392, Longitude: -104.9903}, want: "America/Denver"},
		{name: "New York City", coords: weather.Coords{Latitude: 40.7128, Longitude: -74.0060}, want: "America/New_York"},
		{name: "London, UK", coords: weather.Coords{Latitude: 51.5074, Longitude: -0.1278}, want: "Europe/London"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := finder.ZoneName(tt.coords)
			if err != nil {
				t.Fatalf("ZoneName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ZoneName() = %v, want %v", got, tt.want)
			}
		})
	}
}

type emptyPolygons struct{ tzf.F }

func (emptyPolygons) GetTimezoneName(lng, lat float64) string { return "" }

func TestFinder_NoZone(t *testing.T) {
	finder := &Finder{polygons: emptyPolygons{}}
	_, err := finder.ZoneName(weather.Coords{Latitude: 1, Longitude: 2})
	if !errors.Is(err, ErrNoZone) {
		t.Errorf("ZoneName() error = %v, want %v", err, ErrNoZone)
	}
}
