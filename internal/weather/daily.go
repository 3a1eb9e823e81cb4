package weather

import (
	"math"
	"time"
)

// DefaultPrecipitationType is reported when the provider names none.
const DefaultPrecipitationType = "rain"

// DailyForecast summarises one day of the provider's daily forecast array.
type DailyForecast struct {
	Date                     *time.Time  `json:"date,omitempty"`
	SummaryIcon              *string     `json:"summaryIcon,omitempty"`
	TemperatureMax           Temperature `json:"temperatureMax"`
	TemperatureMin           Temperature `json:"temperatureMin"`
	PrecipitationType        string      `json:"precipitationType"`
	PrecipitationProbability float64     `json:"precipitationProbability"`
}

func newDailyForecast(day Document) DailyForecast {
	f := DailyForecast{
		TemperatureMax:           NewTemperatureFromFahrenheit(intAt(day, "temperatureMax").Or(0)),
		TemperatureMin:           NewTemperatureFromFahrenheit(intAt(day, "temperatureMin").Or(0)),
		PrecipitationType:        stringAt(day, "precipType").Or(DefaultPrecipitationType),
		PrecipitationProbability: numericStringAt(day, "precipProbability").Or(0),
	}
	if icon, ok := stringAt(day, "icon").Get(); ok {
		f.SummaryIcon = &icon
	}
	if secs, ok := floatAt(day, "time").Get(); ok && math.Abs(secs) < 1e12 {
		t := time.Unix(int64(secs), 0).UTC()
		f.Date = &t
	}
	return f
}
