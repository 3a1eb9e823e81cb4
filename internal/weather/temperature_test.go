package weather

import (
	"encoding/json"
	"testing"
)

func TestTemperature_Celsius(t *testing.T) {
	tests := []struct {
		fahrenheit int
		want       float64
	}{
		{32, 0},
		{212, 100},
		{-40, -40},
		{72, 22.2},
		{0, -17.8},
		{100, 37.8},
	}

	for _, tt := range tests {
		got := NewTemperatureFromFahrenheit(tt.fahrenheit).Celsius()
		if got != tt.want {
			t.Errorf("Celsius(%d°F) = %v, want %v", tt.fahrenheit, got, tt.want)
		}
	}
}

func TestTemperature_Compare(t *testing.T) {
	cold := NewTemperatureFromFahrenheit(10)
	warm := NewTemperatureFromFahrenheit(80)

	if got := cold.Compare(warm); got != -1 {
		t.Errorf("cold.Compare(warm) = %d, want -1", got)
	}
	if got := warm.Compare(cold); got != 1 {
		t.Errorf("warm.Compare(cold) = %d, want 1", got)
	}
	if got := warm.Compare(NewTemperatureFromFahrenheit(80)); got != 0 {
		t.Errorf("warm.Compare(80) = %d, want 0", got)
	}
	if (Temperature{}) != NewTemperatureFromFahrenheit(0) {
		t.Error("zero Temperature should equal 0°F")
	}
}

func TestTemperature_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewTemperatureFromFahrenheit(50))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(b), `{"fahrenheit":50,"celsius":10}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
