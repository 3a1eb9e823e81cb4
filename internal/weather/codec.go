package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Persisted field names. A stored snapshot carries exactly these four.
const (
	fieldCurrentConditions = "currentConditions"
	fieldPreviousDay       = "previousDay"
	fieldLocation          = "location"
	fieldCapturedAt        = "capturedAt"
)

// ErrMissingField reports a required persisted field that is absent or null.
var ErrMissingField = errors.New("missing required field")

// DecodeError is returned by UnmarshalSnapshot when persisted state cannot be
// turned back into a snapshot. Field is empty when the input as a whole is
// malformed.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode snapshot: %v", e.Err)
	}
	return fmt.Sprintf("decode snapshot: field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type snapshotRecord struct {
	CurrentConditions Document  `json:"currentConditions"`
	PreviousDay       Document  `json:"previousDay"`
	Location          Location  `json:"location"`
	CapturedAt        time.Time `json:"capturedAt"`
}

// MarshalSnapshot encodes the snapshot's source data. Derived values are
// never persisted.
func MarshalSnapshot(s *WeatherSnapshot) ([]byte, error) {
	return json.Marshal(snapshotRecord{
		CurrentConditions: s.current,
		PreviousDay:       s.previous,
		Location:          s.location,
		CapturedAt:        s.capturedAt,
	})
}

// UnmarshalSnapshot rebuilds a snapshot written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*WeatherSnapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if raw == nil {
		return nil, &DecodeError{Err: errNotAnObject}
	}

	var rec snapshotRecord
	fields := []struct {
		name   string
		target any
	}{
		{fieldCurrentConditions, &rec.CurrentConditions},
		{fieldPreviousDay, &rec.PreviousDay},
		{fieldLocation, &rec.Location},
		{fieldCapturedAt, &rec.CapturedAt},
	}
	for _, f := range fields {
		msg, ok := raw[f.name]
		if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return nil, &DecodeError{Field: f.name, Err: ErrMissingField}
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(f.target); err != nil {
			return nil, &DecodeError{Field: f.name, Err: err}
		}
	}

	return &WeatherSnapshot{
		capturedAt: rec.CapturedAt.UTC(),
		location:   rec.Location,
		current:    normalizeDocument(rec.CurrentConditions),
		previous:   normalizeDocument(rec.PreviousDay),
	}, nil
}
