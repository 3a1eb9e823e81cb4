package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-update/internal/weather"
)

// DefaultDarkSkyBaseURL points at Pirate Weather, which serves the Dark Sky API shape.
const DefaultDarkSkyBaseURL = "https://api.pirateweather.net/forecast"

// DarkSkyProvider implements weather.Provider for Dark Sky compatible forecast APIs.
type DarkSkyProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewDarkSkyProvider(client *http.Client, baseURL, apiKey string) *DarkSkyProvider {
	if baseURL == "" {
		baseURL = DefaultDarkSkyBaseURL
	}
	return &DarkSkyProvider{
		name:    "darksky",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("darksky"),
	}
}

func (p *DarkSkyProvider) Name() string {
	return p.name
}

// FetchConditions requests the current conditions and daily forecast.
func (p *DarkSkyProvider) FetchConditions(ctx context.Context, coords weather.Coords) (weather.Document, error) {
	return p.fetch(ctx, coordsPath(coords))
}

// FetchConditionsAt requests the conditions observed at a past time.
func (p *DarkSkyProvider) FetchConditionsAt(ctx context.Context, coords weather.Coords, at time.Time) (weather.Document, error) {
	return p.fetch(ctx, coordsPath(coords)+","+strconv.FormatInt(at.Unix(), 10))
}

func (p *DarkSkyProvider) fetch(ctx context.Context, target string) (weather.Document, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("darksky: %w", errNoAPIKey)
	}

	values := url.Values{}
	values.Set("exclude", "minutely,hourly,alerts,flags")
	values.Set("units", "us")

	u := fmt.Sprintf("%s/%s/%s?%s", p.baseURL, url.PathEscape(p.apiKey), target, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return nil, fmt.Errorf("darksky: %w", err)
	}
	defer resp.Body.Close()

	doc, err := weather.DecodeDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("darksky: decode response: %w", err)
	}
	return doc, nil
}

func coordsPath(c weather.Coords) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
