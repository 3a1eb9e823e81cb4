package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-update/internal/weather"
)

// DefaultOpenMeteoBaseURL is the keyless Open-Meteo forecast endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider implements weather.Provider for Open-Meteo. Responses are
// rewritten into the Dark Sky document shape so snapshots read the same
// regardless of which provider produced them.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Current *struct {
		Time          int64    `json:"time"`
		Temperature   *float64 `json:"temperature_2m"`
		WeatherCode   *int     `json:"weather_code"`
		WindSpeed     *float64 `json:"wind_speed_10m"`
		WindDirection *float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Hourly *struct {
		Time        []int64    `json:"time"`
		Temperature []*float64 `json:"temperature_2m"`
		WeatherCode []*int     `json:"weather_code"`
	} `json:"hourly"`
	Daily *struct {
		Time                     []int64    `json:"time"`
		WeatherCode              []*int     `json:"weather_code"`
		TemperatureMax           []*float64 `json:"temperature_2m_max"`
		TemperatureMin           []*float64 `json:"temperature_2m_min"`
		PrecipitationProbability []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// FetchConditions requests current conditions and the daily forecast.
func (p *OpenMeteoProvider) FetchConditions(ctx context.Context, coords weather.Coords) (weather.Document, error) {
	values := p.baseQuery(coords)
	values.Set("current", "temperature_2m,weather_code,wind_speed_10m,wind_direction_10m")
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	values.Set("forecast_days", "7")

	payload, err := p.fetch(ctx, values)
	if err != nil {
		return nil, err
	}

	doc := weather.Document{}
	if c := payload.Current; c != nil {
		currently := map[string]any{"time": c.Time}
		setFloat(currently, "temperature", c.Temperature)
		setFloat(currently, "windSpeed", c.WindSpeed)
		setFloat(currently, "windBearing", c.WindDirection)
		if c.WeatherCode != nil {
			currently["icon"] = openMeteoIcon(*c.WeatherCode)
		}
		doc["currently"] = currently
	}
	if d := payload.Daily; d != nil {
		days := make([]any, len(d.Time))
		for i, ts := range d.Time {
			day := map[string]any{"time": ts}
			setFloat(day, "temperatureMax", elem(d.TemperatureMax, i))
			setFloat(day, "temperatureMin", elem(d.TemperatureMin, i))
			if pct := elem(d.PrecipitationProbability, i); pct != nil {
				day["precipProbability"] = *pct / 100
			}
			if code := elem(d.WeatherCode, i); code != nil {
				day["icon"] = openMeteoIcon(*code)
				if precip := openMeteoPrecipType(*code); precip != "" {
					day["precipType"] = precip
				}
			}
			days[i] = day
		}
		doc["daily"] = map[string]any{"data": days}
	}
	return doc, nil
}

// FetchConditionsAt requests the hourly series for the day containing t and
// reports the hour closest to it as the current conditions.
func (p *OpenMeteoProvider) FetchConditionsAt(ctx context.Context, coords weather.Coords, t time.Time) (weather.Document, error) {
	day := t.UTC().Format(time.DateOnly)
	values := p.baseQuery(coords)
	values.Set("hourly", "temperature_2m,weather_code")
	values.Set("start_date", day)
	values.Set("end_date", day)

	payload, err := p.fetch(ctx, values)
	if err != nil {
		return nil, err
	}

	doc := weather.Document{}
	h := payload.Hourly
	if h == nil || len(h.Time) == 0 {
		return doc, nil
	}

	target := t.Unix()
	best := 0
	for i, ts := range h.Time {
		if abs(ts-target) < abs(h.Time[best]-target) {
			best = i
		}
	}
	currently := map[string]any{"time": h.Time[best]}
	setFloat(currently, "temperature", elem(h.Temperature, best))
	if code := elem(h.WeatherCode, best); code != nil {
		currently["icon"] = openMeteoIcon(*code)
	}
	doc["currently"] = currently
	return doc, nil
}

func (p *OpenMeteoProvider) baseQuery(coords weather.Coords) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "mph")
	values.Set("timeformat", "unixtime")
	values.Set("timezone", "GMT")
	return values
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, values url.Values) (*openMeteoResponse, error) {
	req, err := http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openmeteo: decode response: %w", err)
	}
	return &payload, nil
}

// openMeteoIcon maps WMO weather codes onto Dark Sky icon names.
func openMeteoIcon(code int) string {
	switch {
	case code == 0:
		return "clear-day"
	case code == 1 || code == 2:
		return "partly-cloudy-day"
	case code == 3:
		return "cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code == 56 || code == 57 || code == 66 || code == 67:
		return "sleet"
	case (code >= 51 && code <= 65) || (code >= 80 && code <= 82) || code >= 95:
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	default:
		return "cloudy"
	}
}

func openMeteoPrecipType(code int) string {
	switch icon := openMeteoIcon(code); icon {
	case "rain", "snow", "sleet":
		return icon
	}
	return ""
}

func setFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func elem[T any](s []*T, i int) *T {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
