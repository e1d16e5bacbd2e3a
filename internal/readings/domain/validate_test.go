package readings

import (
	"errors"
	"testing"
	"time"
)

func validPayload() map[string]any {
	return map[string]any{
		"temperature": 22.5,
		"humidity":    55.0,
		"methane":     120.0,
		"other_gases": 90.0,
	}
}

func TestParseReadingFields_Valid(t *testing.T) {
	reading, err := ParseReadingFields(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Temperature != 22.5 || reading.Humidity != 55.0 {
		t.Fatalf("unexpected values: %+v", reading)
	}
	if reading.Methane != 120.0 || reading.OtherGases != 90.0 {
		t.Fatalf("unexpected gas values: %+v", reading)
	}
}

func TestParseReadingFields_MissingField(t *testing.T) {
	for _, field := range []string{"temperature", "humidity", "methane", "other_gases"} {
		payload := validPayload()
		delete(payload, field)
		_, err := ParseReadingFields(payload)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		if verr.Field != field || verr.Reason != "missing required field" {
			t.Fatalf("%s: unexpected error: %v", field, verr)
		}
	}
}

func TestParseReadingFields_NullField(t *testing.T) {
	payload := validPayload()
	payload["humidity"] = nil
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "humidity" || verr.Reason != "missing required field" {
		t.Fatalf("unexpected error: %v", verr)
	}
}

func TestParseReadingFields_NonNumeric(t *testing.T) {
	cases := []any{"25", true, []any{1.0}}
	for _, value := range cases {
		payload := validPayload()
		payload["temperature"] = value
		_, err := ParseReadingFields(payload)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%v: expected validation error, got %v", value, err)
		}
		if verr.Reason != "must be a number" {
			t.Fatalf("%v: unexpected reason %q", value, verr.Reason)
		}
	}
}

func TestParseReadingFields_Negative(t *testing.T) {
	payload := validPayload()
	payload["methane"] = -1.0
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "methane" || verr.Reason != "cannot be negative" {
		t.Fatalf("unexpected error: %v", verr)
	}
}

func TestParseReadingFields_OutOfRange(t *testing.T) {
	cases := []struct {
		field  string
		value  float64
		reason string
	}{
		{"temperature", 60.5, "must be between 0-60°C"},
		{"humidity", 100.5, "must be between 0-100%"},
		{"methane", 1024, "must be between 0-1023"},
		{"other_gases", 2000, "must be between 0-1023"},
	}
	for _, tc := range cases {
		payload := validPayload()
		payload[tc.field] = tc.value
		_, err := ParseReadingFields(payload)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", tc.field, err)
		}
		if verr.Field != tc.field || verr.Reason != tc.reason {
			t.Fatalf("%s: got %q, want %q", tc.field, verr.Reason, tc.reason)
		}
	}
}

func TestParseReadingFields_BoundaryValuesAccepted(t *testing.T) {
	payload := map[string]any{
		"temperature": 0.0,
		"humidity":    100.0,
		"methane":     1023.0,
		"other_gases": 0.0,
	}
	if _, err := ParseReadingFields(payload); err != nil {
		t.Fatalf("boundary values should pass: %v", err)
	}
}

func TestParseReadingFields_MissingReportedBeforeValueChecks(t *testing.T) {
	// A missing field wins over any value violation, regardless of order.
	payload := map[string]any{
		"temperature": -5.0,
		"humidity":    50.0,
		"methane":     100.0,
	}
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "other_gases" || verr.Reason != "missing required field" {
		t.Fatalf("expected missing other_gases reported first, got %v", verr)
	}
}

func TestParseReadingFields_CheckOrder(t *testing.T) {
	// With all fields present, value violations report the first in the
	// fixed order.
	payload := map[string]any{
		"temperature": -5.0,
		"humidity":    200.0,
		"methane":     "bad",
		"other_gases": 90.0,
	}
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "temperature" {
		t.Fatalf("expected temperature reported first, got %s", verr.Field)
	}
}

func TestParseReadingFields_OptionalMetadata(t *testing.T) {
	payload := validPayload()
	payload["sensor_id"] = "greenhouse-2"
	payload["timestamp"] = "2026-03-01T10:30:00Z"
	reading, err := ParseReadingFields(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.SensorID != "greenhouse-2" {
		t.Fatalf("unexpected sensor id %q", reading.SensorID)
	}
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if !reading.Timestamp.Equal(want) {
		t.Fatalf("unexpected timestamp %v", reading.Timestamp)
	}
}

func TestParseReadingFields_ExhaustFanOverride(t *testing.T) {
	payload := validPayload()
	payload["methane"] = 500.0
	payload["exhaust_fan"] = false
	reading, err := ParseReadingFields(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reading.DeriveExhaustFan(200)
	if reading.ExhaustFan {
		t.Fatal("explicit exhaust_fan must not be re-derived")
	}
}

func TestParseReadingFields_ExhaustFanWrongType(t *testing.T) {
	payload := validPayload()
	payload["exhaust_fan"] = "on"
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "exhaust_fan" || verr.Reason != "must be a boolean" {
		t.Fatalf("unexpected error: %v", verr)
	}
}

func TestDeriveExhaustFan(t *testing.T) {
	cases := []struct {
		methane float64
		want    bool
	}{
		{0, false},
		{199.9, false},
		{200, true},
		{1023, true},
	}
	for _, tc := range cases {
		reading := Reading{Methane: tc.methane}
		reading.DeriveExhaustFan(200)
		if reading.ExhaustFan != tc.want {
			t.Fatalf("methane %g: expected fan %v", tc.methane, tc.want)
		}
	}
}

func TestParseReadingFields_BadTimestamp(t *testing.T) {
	payload := validPayload()
	payload["timestamp"] = "yesterday"
	_, err := ParseReadingFields(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "timestamp" {
		t.Fatalf("unexpected field %q", verr.Field)
	}
}

func TestParseReading_MalformedJSON(t *testing.T) {
	_, err := ParseReading([]byte("{not json"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "payload" {
		t.Fatalf("unexpected field %q", verr.Field)
	}
}
