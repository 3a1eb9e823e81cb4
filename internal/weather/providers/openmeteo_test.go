package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/i474232898/weather-update/internal/weather"
)

func newOpenMeteoServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values) {
	t.Helper()
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &query
}

func TestOpenMeteoProvider_FetchConditions(t *testing.T) {
	srv, query := newOpenMeteoServer(t, http.StatusOK, `{
		"current": {"time": 1705320000, "temperature_2m": 71.6, "weather_code": 2, "wind_speed_10m": 8.5, "wind_direction_10m": 270},
		"daily": {
			"time": [1705276800, 1705363200, 1705449600, 1705536000, 1705622400],
			"weather_code": [0, 61, 73, null, 3],
			"temperature_2m_max": [70, 75.4, 68, 60, null],
			"temperature_2m_min": [60, 58, 50, 44, 40],
			"precipitation_probability_max": [10, 80, 45, null, 0]
		}
	}`)

	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	doc, err := p.FetchConditions(context.Background(), denverCoords)
	if err != nil {
		t.Fatalf("FetchConditions() error = %v", err)
	}

	q := *query
	if q.Get("latitude") != "39.7392" || q.Get("longitude") != "-104.9903" {
		t.Errorf("coordinates = %s,%s", q.Get("latitude"), q.Get("longitude"))
	}
	if q.Get("temperature_unit") != "fahrenheit" || q.Get("timeformat") != "unixtime" {
		t.Errorf("units/timeformat = %s/%s", q.Get("temperature_unit"), q.Get("timeformat"))
	}

	s := weather.NewSnapshot(weather.Location{}, doc, nil)
	if got := s.CurrentTemperature().Fahrenheit(); got != 72 {
		t.Errorf("CurrentTemperature() = %d, want 72", got)
	}
	if got, _ := s.ConditionsDescription(); got != "partly-cloudy-day" {
		t.Errorf("ConditionsDescription() = %q, want partly-cloudy-day", got)
	}
	if got := s.WindSpeed(); got != 8.5 {
		t.Errorf("WindSpeed() = %v, want 8.5", got)
	}
	if got := s.WindBearing(); got != 270 {
		t.Errorf("WindBearing() = %v, want 270", got)
	}
	if got := s.PrecipitationPercentage(); got != 0.1 {
		t.Errorf("PrecipitationPercentage() = %v, want 0.1", got)
	}

	days := s.DailyForecasts()
	if len(days) != 3 {
		t.Fatalf("len(DailyForecasts()) = %d, want 3", len(days))
	}
	if got := days[0].TemperatureMax.Fahrenheit(); got != 75 {
		t.Errorf("days[0].TemperatureMax = %d, want 75", got)
	}
	if days[0].PrecipitationType != "rain" || days[1].PrecipitationType != "snow" {
		t.Errorf("precipitation types = %q, %q; want rain, snow", days[0].PrecipitationType, days[1].PrecipitationType)
	}
	if days[0].PrecipitationProbability != 0.8 {
		t.Errorf("days[0].PrecipitationProbability = %v, want 0.8", days[0].PrecipitationProbability)
	}
	if days[2].SummaryIcon != nil {
		t.Errorf("days[2].SummaryIcon = %q, want nil", *days[2].SummaryIcon)
	}
	if days[0].Date == nil || days[0].Date.Unix() != 1705363200 {
		t.Errorf("days[0].Date = %v, want 2024-01-16", days[0].Date)
	}
}

func TestOpenMeteoProvider_FetchConditionsAt(t *testing.T) {
	srv, query := newOpenMeteoServer(t, http.StatusOK, `{
		"hourly": {
			"time": [1705233600, 1705237200, 1705240800],
			"temperature_2m": [40.2, 43.7, 45],
			"weather_code": [3, 3, 1]
		}
	}`)

	at := time.Unix(1705237500, 0)
	p := NewOpenMeteoProvider(srv.Client(), srv.URL)
	doc, err := p.FetchConditionsAt(context.Background(), denverCoords, at)
	if err != nil {
		t.Fatalf("FetchConditionsAt() error = %v", err)
	}

	if got := (*query).Get("start_date"); got != "2024-01-14" {
		t.Errorf("start_date = %q, want 2024-01-14", got)
	}

	s := weather.NewSnapshot(weather.Location{}, weather.Document{}, doc)
	y, ok := s.YesterdaysTemperature()
	if !ok || y.Fahrenheit() != 44 {
		t.Errorf("YesterdaysTemperature() = (%d, %v), want (44, true)", y.Fahrenheit(), ok)
	}
}

func TestOpenMeteoProvider_EmptyHistory(t *testing.T) {
	srv, _ := newOpenMeteoServer(t, http.StatusOK, `{}`)

	doc, err := NewOpenMeteoProvider(srv.Client(), srv.URL).FetchConditionsAt(context.Background(), denverCoords, time.Now())
	if err != nil {
		t.Fatalf("FetchConditionsAt() error = %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("doc = %v, want empty", doc)
	}
}

func TestOpenMeteoProvider_Errors(t *testing.T) {
	srv, _ := newOpenMeteoServer(t, http.StatusServiceUnavailable, `{}`)
	_, err := NewOpenMeteoProvider(srv.Client(), srv.URL).FetchConditions(context.Background(), denverCoords)
	if !errors.Is(err, errServerError) {
		t.Errorf("FetchConditions() error = %v, want %v", err, errServerError)
	}

	srv, _ = newOpenMeteoServer(t, http.StatusOK, `not json`)
	if _, err := NewOpenMeteoProvider(srv.Client(), srv.URL).FetchConditions(context.Background(), denverCoords); err == nil {
		t.Error("FetchConditions() should fail on an undecodable body")
	}
}

func TestOpenMeteoIcon(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "clear-day"},
		{2, "partly-cloudy-day"},
		{3, "cloudy"},
		{45, "fog"},
		{53, "rain"},
		{66, "sleet"},
		{75, "snow"},
		{86, "snow"},
		{95, "rain"},
		{42, "cloudy"},
	}

	for _, tt := range tests {
		if got := openMeteoIcon(tt.code); got != tt.want {
			t.Errorf("openMeteoIcon(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
