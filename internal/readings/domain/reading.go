package readings

import (
	"context"
	"time"
)

// Reading is a validated environmental sensor reading. ExhaustFan is
// derived from the methane level at ingest unless the payload carried
// an explicit value (replayed or test traffic).
type Reading struct {
	ID          string    `json:"id"`
	SensorID    string    `json:"sensor_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Methane     float64   `json:"methane"`
	OtherGases  float64   `json:"other_gases"`
	ExhaustFan  bool      `json:"exhaust_fan"`

	exhaustFanExplicit bool
}

// SetExhaustFan records an explicit fan state, disabling derivation.
func (r *Reading) SetExhaustFan(on bool) {
	r.ExhaustFan = on
	r.exhaustFanExplicit = true
}

// DeriveExhaustFan sets the fan state from the methane trigger unless
// an explicit value was already recorded.
func (r *Reading) DeriveExhaustFan(trigger float64) {
	if r.exhaustFanExplicit {
		return
	}
	r.ExhaustFan = r.Methane >= trigger
}

// Repository persists and queries readings.
type Repository interface {
	Save(ctx context.Context, reading *Reading) error
	ListRange(ctx context.Context, sensorID string, from, to time.Time) ([]Reading, error)
}
