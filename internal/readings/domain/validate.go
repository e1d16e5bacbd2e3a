package readings

import (
	"encoding/json"
	"fmt"
	"time"
)

// Validation ranges for raw sensor values. Methane and other gases come
// from 10-bit analog sensors, temperature and humidity from a DHT unit.
const (
	TemperatureMin = 0.0
	TemperatureMax = 60.0
	HumidityMin    = 0.0
	HumidityMax    = 100.0
	AnalogMin      = 0.0
	AnalogMax      = 1023.0
)

type fieldSpec struct {
	name string
	min  float64
	max  float64
	unit string
}

var requiredFields = []fieldSpec{
	{name: "temperature", min: TemperatureMin, max: TemperatureMax, unit: "°C"},
	{name: "humidity", min: HumidityMin, max: HumidityMax, unit: "%"},
	{name: "methane", min: AnalogMin, max: AnalogMax, unit: ""},
	{name: "other_gases", min: AnalogMin, max: AnalogMax, unit: ""},
}

// ParseReading decodes and validates a raw device payload. It returns a
// typed Reading or a *ValidationError naming the first offending field.
// Fields are checked in a fixed order: temperature, humidity, methane,
// other gases. ID and a zero Timestamp are left for the caller to fill.
func ParseReading(raw []byte) (Reading, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Reading{}, &ValidationError{Field: "payload", Reason: "malformed json"}
	}
	return ParseReadingFields(payload)
}

// ParseReadingFields validates an already-decoded payload. All four
// fields must be present before any value is validated.
func ParseReadingFields(payload map[string]any) (Reading, error) {
	for _, spec := range requiredFields {
		if raw, ok := payload[spec.name]; !ok || raw == nil {
			return Reading{}, &ValidationError{Field: spec.name, Reason: "missing required field"}
		}
	}

	values := make(map[string]float64, len(requiredFields))
	for _, spec := range requiredFields {
		value, ok := numericValue(payload[spec.name])
		if !ok {
			return Reading{}, &ValidationError{Field: spec.name, Reason: "must be a number"}
		}
		if value < spec.min {
			return Reading{}, &ValidationError{Field: spec.name, Reason: "cannot be negative"}
		}
		if value > spec.max {
			return Reading{}, &ValidationError{
				Field:  spec.name,
				Reason: fmt.Sprintf("must be between %g-%g%s", spec.min, spec.max, spec.unit),
			}
		}
		values[spec.name] = value
	}

	reading := Reading{
		Temperature: values["temperature"],
		Humidity:    values["humidity"],
		Methane:     values["methane"],
		OtherGases:  values["other_gases"],
	}

	if raw, ok := payload["sensor_id"]; ok && raw != nil {
		sensorID, ok := raw.(string)
		if !ok {
			return Reading{}, &ValidationError{Field: "sensor_id", Reason: "must be a string"}
		}
		reading.SensorID = sensorID
	}

	if raw, ok := payload["exhaust_fan"]; ok && raw != nil {
		on, ok := raw.(bool)
		if !ok {
			return Reading{}, &ValidationError{Field: "exhaust_fan", Reason: "must be a boolean"}
		}
		reading.SetExhaustFan(on)
	}

	if raw, ok := payload["timestamp"]; ok && raw != nil {
		text, ok := raw.(string)
		if !ok {
			return Reading{}, &ValidationError{Field: "timestamp", Reason: "must be an RFC3339 string"}
		}
		ts, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return Reading{}, &ValidationError{Field: "timestamp", Reason: "must be an RFC3339 string"}
		}
		reading.Timestamp = ts.UTC()
	}

	return reading, nil
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
