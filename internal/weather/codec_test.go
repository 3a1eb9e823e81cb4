package weather

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestMarshalSnapshot_RoundTrip(t *testing.T) {
	loc := Location{
		City:      "Denver",
		Region:    "Colorado",
		Country:   "United States",
		TimeZone:  "America/Denver",
		Latitude:  39.7392,
		Longitude: -104.9903,
	}
	current := Document{
		"currently": map[string]any{"temperature": 72, "icon": "clear-day", "windSpeed": 3.5},
		"daily": map[string]any{"data": []any{
			map[string]any{"temperatureMax": 70, "precipProbability": "0.42"},
			map[string]any{"temperatureMax": 75.25, "precipType": nil},
		}},
		"flags": []any{true, false, "units"},
		"big":   int64(9007199254740993),
	}
	previous := Document{"currently": map[string]any{"temperature": 55}}
	at := time.Date(2024, 3, 1, 8, 30, 15, 123456789, time.FixedZone("MST", -7*3600))

	original := NewSnapshotAt(loc, current, previous, at)

	data, err := MarshalSnapshot(original)
	if err != nil {
		t.Fatalf("MarshalSnapshot() error = %v", err)
	}
	restored, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot() error = %v", err)
	}

	if !restored.CapturedAt().Equal(original.CapturedAt()) {
		t.Errorf("CapturedAt() = %v, want %v", restored.CapturedAt(), original.CapturedAt())
	}
	if restored.Location() != original.Location() {
		t.Errorf("Location() = %+v, want %+v", restored.Location(), original.Location())
	}
	if !reflect.DeepEqual(restored.current, original.current) {
		t.Errorf("current payload = %#v, want %#v", restored.current, original.current)
	}
	if !reflect.DeepEqual(restored.previous, original.previous) {
		t.Errorf("previous payload = %#v, want %#v", restored.previous, original.previous)
	}
	if !reflect.DeepEqual(restored.View(), original.View()) {
		t.Errorf("View() differs after round trip:\n got %+v\nwant %+v", restored.View(), original.View())
	}
}

func TestMarshalSnapshot_WritesOnlySourceFields(t *testing.T) {
	s := NewSnapshot(Location{City: "Austin"}, Document{"currently": map[string]any{"temperature": 90}}, nil)

	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal persisted form: %v", err)
	}

	want := []string{"currentConditions", "previousDay", "location", "capturedAt"}
	if len(fields) != len(want) {
		t.Errorf("persisted form has %d fields, want %d: %s", len(fields), len(want), data)
	}
	for _, name := range want {
		if _, ok := fields[name]; !ok {
			t.Errorf("persisted form missing %q", name)
		}
	}
	if string(fields["previousDay"]) != "{}" {
		t.Errorf("previousDay = %s, want {}", fields["previousDay"])
	}
}

func TestUnmarshalSnapshot_DecodeErrors(t *testing.T) {
	const valid = `"currentConditions":{},"previousDay":{},"location":{"latitude":1,"longitude":2},"capturedAt":"2024-01-01T00:00:00Z"`

	tests := []struct {
		name      string
		input     string
		wantField string
		wantErr   error
	}{
		{
			name:      "missing currentConditions",
			input:     `{"previousDay":{},"location":{},"capturedAt":"2024-01-01T00:00:00Z"}`,
			wantField: "currentConditions",
			wantErr:   ErrMissingField,
		},
		{
			name:      "null previousDay",
			input:     `{"currentConditions":{},"previousDay":null,"location":{},"capturedAt":"2024-01-01T00:00:00Z"}`,
			wantField: "previousDay",
			wantErr:   ErrMissingField,
		},
		{
			name:      "missing location",
			input:     `{"currentConditions":{},"previousDay":{},"capturedAt":"2024-01-01T00:00:00Z"}`,
			wantField: "location",
			wantErr:   ErrMissingField,
		},
		{
			name:      "missing capturedAt",
			input:     `{"currentConditions":{},"previousDay":{},"location":{}}`,
			wantField: "capturedAt",
			wantErr:   ErrMissingField,
		},
		{
			name:      "currentConditions not an object",
			input:     `{"currentConditions":[1,2],"previousDay":{},"location":{},"capturedAt":"2024-01-01T00:00:00Z"}`,
			wantField: "currentConditions",
		},
		{
			name:      "location wrong shape",
			input:     `{"currentConditions":{},"previousDay":{},"location":"Denver","capturedAt":"2024-01-01T00:00:00Z"}`,
			wantField: "location",
		},
		{
			name:      "capturedAt not a timestamp",
			input:     `{"currentConditions":{},"previousDay":{},"location":{},"capturedAt":"yesterday"}`,
			wantField: "capturedAt",
		},
		{
			name:      "capturedAt wrong type",
			input:     `{"currentConditions":{},"previousDay":{},"location":{},"capturedAt":12}`,
			wantField: "capturedAt",
		},
		{
			name:  "not json",
			input: `{` + valid,
		},
		{
			name:  "top-level array",
			input: `[{` + valid + `}]`,
		},
		{
			name:  "top-level null",
			input: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := UnmarshalSnapshot([]byte(tt.input))
			if err == nil {
				t.Fatalf("UnmarshalSnapshot() = %v, want error", s)
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("UnmarshalSnapshot() error = %T %v, want *DecodeError", err, err)
			}
			if decodeErr.Field != tt.wantField {
				t.Errorf("DecodeError.Field = %q, want %q", decodeErr.Field, tt.wantField)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("UnmarshalSnapshot() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshalSnapshot_AcceptsEmptyDocuments(t *testing.T) {
	input := `{"currentConditions":{},"previousDay":{},"location":{"city":"Reno","latitude":39.5,"longitude":-119.8},"capturedAt":"2024-01-01T00:00:00Z"}`

	s, err := UnmarshalSnapshot([]byte(input))
	if err != nil {
		t.Fatalf("UnmarshalSnapshot() error = %v", err)
	}
	if city, _ := s.CityName(); city != "Reno" {
		t.Errorf("CityName() = %q, want Reno", city)
	}
	if got := s.CurrentTemperature().Fahrenheit(); got != 0 {
		t.Errorf("CurrentTemperature() = %d, want 0", got)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !s.CapturedAt().Equal(want) {
		t.Errorf("CapturedAt() = %v, want %v", s.CapturedAt(), want)
	}
}

func TestDecodeError_Message(t *testing.T) {
	err := &DecodeError{Field: "location", Err: ErrMissingField}
	if got, want := err.Error(), `decode snapshot: field "location": missing required field`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &DecodeError{Err: errNotAnObject}
	if got, want := err.Error(), "decode snapshot: payload is not a JSON object"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
