package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-update/internal/store"
	"github.com/i474232898/weather-update/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		snapshot, err := latestSnapshot(c, service)
		if err != nil {
			return err
		}
		return c.JSON(snapshot.View())
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		snapshot, err := latestSnapshot(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"location":       snapshot.Location(),
			"capturedAt":     snapshot.CapturedAt(),
			"dailyForecasts": snapshot.DailyForecasts(),
		})
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.FetchAndStore(c.UserContext(), weather.Coords{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		})
		if err != nil {
			if errors.Is(err, weather.ErrNoProvider) {
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to refresh weather data")
		}
		return c.JSON(snapshot.View())
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		key, err := resolveKey(c, service)
		if err != nil {
			return err
		}

		snapshots, err := service.History(key, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		views := make([]weather.WeatherView, 0, len(snapshots))
		for _, snapshot := range snapshots {
			views = append(views, snapshot.View())
		}
		return c.JSON(fiber.Map{
			"location":  key,
			"from":      req.From,
			"to":        req.To,
			"snapshots": views,
		})
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		locs, err := service.Locations()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
		}
		return c.JSON(fiber.Map{"locations": locs})
	})
}

func latestSnapshot(c *fiber.Ctx, service *weather.Service) (*weather.WeatherSnapshot, error) {
	key, err := resolveKey(c, service)
	if err != nil {
		return nil, err
	}

	snapshot, err := service.GetLatest(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}
		var decodeErr *weather.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "stored weather data is unreadable; refresh required")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
	return snapshot, nil
}

// resolveKey turns the location query into a store key. Coordinates are used
// as given; a city name must match a tracked location.
func resolveKey(c *fiber.Ctx, service *weather.Service) (string, error) {
	q, err := parseLocationQuery(c)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if coords, ok := q.coords(); ok {
		return coords.Key(), nil
	}

	loc, err := service.LocationByName(q.City, q.Region)
	if err != nil {
		if errors.Is(err, weather.ErrUnknownLocation) {
			return "", fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}
		return "", fiber.NewError(fiber.StatusInternalServerError, "failed to look up location")
	}
	return loc.Key(), nil
}

// locationQuery holds query parameters for identifying a location, either by
// name or by coordinates.
type locationQuery struct {
	City      string   `validate:"required_without_all=Latitude Longitude"`
	Region    string
	Latitude  *float64 `validate:"required_with=Longitude,omitempty,min=-90,max=90"`
	Longitude *float64 `validate:"required_with=Latitude,omitempty,min=-180,max=180"`
}

func (l locationQuery) coords() (weather.Coords, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return weather.Coords{}, false
	}
	return weather.Coords{Latitude: *l.Latitude, Longitude: *l.Longitude}, true
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = strings.TrimSpace(c.Query("city"))
	q.Region = strings.TrimSpace(c.Query("region"))

	var err error
	if q.Latitude, err = parseCoordinate(c.Query("latitude")); err != nil {
		return q, fmt.Errorf("latitude: %w", err)
	}
	if q.Longitude, err = parseCoordinate(c.Query("longitude")); err != nil {
		return q, fmt.Errorf("longitude: %w", err)
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

func parseCoordinate(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("must be a decimal number")
	}
	return &v, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

// refreshRequest is the body of a manual refresh. Pointers distinguish a
// missing coordinate from the equator or the prime meridian.
type refreshRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}
