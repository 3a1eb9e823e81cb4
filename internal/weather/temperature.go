package weather

import (
	"cmp"
	"encoding/json"
	"math"
)

// Temperature is a whole-degree Fahrenheit reading. The zero value is 0°F.
type Temperature struct {
	fahrenheit int
}

func NewTemperatureFromFahrenheit(fahrenheit int) Temperature {
	return Temperature{fahrenheit: fahrenheit}
}

// Fahrenheit returns the raw value.
func (t Temperature) Fahrenheit() int {
	return t.fahrenheit
}

// Celsius converts the reading, rounded to one decimal place.
func (t Temperature) Celsius() float64 {
	c := float64(t.fahrenheit-32) * 5 / 9
	return math.Round(c*10) / 10
}

// Compare returns -1, 0 or +1 depending on whether t is colder than, equal to
// or warmer than other.
func (t Temperature) Compare(other Temperature) int {
	return cmp.Compare(t.fahrenheit, other.fahrenheit)
}

func (t Temperature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fahrenheit int     `json:"fahrenheit"`
		Celsius    float64 `json:"celsius"`
	}{
		Fahrenheit: t.fahrenheit,
		Celsius:    t.Celsius(),
	})
}
