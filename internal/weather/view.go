package weather

import "time"

// Forecast window exposed to callers: the days after today.
const (
	forecastWindowStart = 1
	forecastWindowDays  = 3
)

// WeatherView is the presentation-ready form of a snapshot. It is rebuilt from
// the payloads on every call to View and never stored.
type WeatherView struct {
	City                    string          `json:"city,omitempty"`
	Region                  string          `json:"region,omitempty"`
	TimeZone                string          `json:"timeZone,omitempty"`
	CapturedAt              time.Time       `json:"capturedAt"`
	ConditionsDescription   *string         `json:"conditionsDescription,omitempty"`
	PrecipitationType       string          `json:"precipitationType"`
	CurrentTemperature      Temperature     `json:"currentTemperature"`
	CurrentHigh             Temperature     `json:"currentHigh"`
	CurrentLow              Temperature     `json:"currentLow"`
	YesterdaysTemperature   *Temperature    `json:"yesterdaysTemperature,omitempty"`
	PrecipitationPercentage float64         `json:"precipitationPercentage"`
	WindSpeed               float64         `json:"windSpeed"`
	WindBearing             float64         `json:"windBearing"`
	DailyForecasts          []DailyForecast `json:"dailyForecasts"`
}

// View derives every presentation value from the snapshot.
func (s *WeatherSnapshot) View() WeatherView {
	v := WeatherView{
		City:                    s.location.City,
		Region:                  s.location.Region,
		TimeZone:                s.location.TimeZone,
		CapturedAt:              s.capturedAt,
		PrecipitationType:       s.PrecipitationType(),
		CurrentTemperature:      s.CurrentTemperature(),
		CurrentHigh:             s.CurrentHigh(),
		CurrentLow:              s.CurrentLow(),
		PrecipitationPercentage: s.PrecipitationPercentage(),
		WindSpeed:               s.WindSpeed(),
		WindBearing:             s.WindBearing(),
		DailyForecasts:          s.DailyForecasts(),
	}
	if desc, ok := s.ConditionsDescription(); ok {
		v.ConditionsDescription = &desc
	}
	if t, ok := s.YesterdaysTemperature(); ok {
		v.YesterdaysTemperature = &t
	}
	return v
}

func (s *WeatherSnapshot) currentConditions() Document {
	return objectAt(s.current, "currently").Or(Document{})
}

func (s *WeatherSnapshot) forecasts() []Document {
	return objectsAt(s.current, "daily", "data").Or(nil)
}

func (s *WeatherSnapshot) todaysForecast() Document {
	if days := s.forecasts(); len(days) > 0 {
		return days[0]
	}
	return Document{}
}

func (s *WeatherSnapshot) CityName() (string, bool) {
	return s.location.Locality()
}

func (s *WeatherSnapshot) RegionName() (string, bool) {
	return s.location.AdministrativeArea()
}

// ConditionsDescription is the provider's icon name for current conditions.
func (s *WeatherSnapshot) ConditionsDescription() (string, bool) {
	return stringAt(s.currentConditions(), "icon").Get()
}

func (s *WeatherSnapshot) PrecipitationType() string {
	return stringAt(s.todaysForecast(), "precipType").Or(DefaultPrecipitationType)
}

func (s *WeatherSnapshot) CurrentTemperature() Temperature {
	return NewTemperatureFromFahrenheit(intAt(s.currentConditions(), "temperature").Or(0))
}

// CurrentHigh is today's forecast maximum, unless the live reading is already
// at or above it.
func (s *WeatherSnapshot) CurrentHigh() Temperature {
	current := s.CurrentTemperature()
	rawHigh := intAt(s.todaysForecast(), "temperatureMax").Or(0)
	if rawHigh > current.Fahrenheit() {
		return NewTemperatureFromFahrenheit(rawHigh)
	}
	return current
}

// CurrentLow is today's forecast minimum, unless the live reading is already
// at or below it.
func (s *WeatherSnapshot) CurrentLow() Temperature {
	current := s.CurrentTemperature()
	rawLow := intAt(s.todaysForecast(), "temperatureMin").Or(0)
	if rawLow < current.Fahrenheit() {
		return NewTemperatureFromFahrenheit(rawLow)
	}
	return current
}

// YesterdaysTemperature reports false when the previous-day payload has no
// usable reading; it is never defaulted.
func (s *WeatherSnapshot) YesterdaysTemperature() (Temperature, bool) {
	raw, ok := intAt(s.previous, "currently", "temperature").Get()
	if !ok {
		return Temperature{}, false
	}
	return NewTemperatureFromFahrenheit(raw), true
}

// PrecipitationPercentage is today's precipitation probability as a 0 to 1 fraction.
func (s *WeatherSnapshot) PrecipitationPercentage() float64 {
	return numericStringAt(s.todaysForecast(), "precipProbability").Or(0)
}

func (s *WeatherSnapshot) WindSpeed() float64 {
	return floatAt(s.currentConditions(), "windSpeed").Or(0)
}

func (s *WeatherSnapshot) WindBearing() float64 {
	return floatAt(s.currentConditions(), "windBearing").Or(0)
}

// DailyForecasts returns up to three days following today, in order. Days the
// provider did not send are skipped rather than padded.
func (s *WeatherSnapshot) DailyForecasts() []DailyForecast {
	days := s.forecasts()
	out := make([]DailyForecast, 0, forecastWindowDays)
	for i := forecastWindowStart; i < forecastWindowStart+forecastWindowDays; i++ {
		if i >= len(days) {
			break
		}
		out = append(out, newDailyForecast(days[i]))
	}
	return out
}
