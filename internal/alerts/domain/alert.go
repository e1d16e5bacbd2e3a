package alerts

import (
	"context"
	"time"
)

// Sensor identifies which measurement triggered an alert.
type Sensor string

const (
	SensorTemperature Sensor = "temperature"
	SensorHumidity    Sensor = "humidity"
	SensorMethane     Sensor = "methane"
	SensorOtherGases  Sensor = "other_gases"
)

// Severity classifies alert urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Priority ranks severities for sorting and escalation. Unknown
// severities rank below info.
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the severity is a known value.
func (s Severity) IsValid() bool {
	return s == SeverityInfo || s == SeverityWarning || s == SeverityCritical
}

// Alert records a threshold breach and its resolution state.
type Alert struct {
	ID         string    `json:"id"`
	SensorID   string    `json:"sensor_id"`
	Sensor     Sensor    `json:"sensor"`
	Severity   Severity  `json:"severity"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	Resolved   bool      `json:"resolved"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string    `json:"resolved_by,omitempty"`
}

// AgeMinutes returns the alert age in whole minutes at the given time.
func (a Alert) AgeMinutes(now time.Time) int {
	if a.CreatedAt.IsZero() || now.Before(a.CreatedAt) {
		return 0
	}
	return int(now.Sub(a.CreatedAt) / time.Minute)
}

// Filter narrows alert list queries. Zero values mean "any".
type Filter struct {
	SensorID string
	Sensor   Sensor
	Severity Severity
	Resolved *bool
	From     time.Time
	To       time.Time
	Limit    int
}

// Repository persists and queries alerts.
type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id string) (*Alert, error)
	List(ctx context.Context, filter Filter) ([]Alert, error)
	MarkResolved(ctx context.Context, id string, resolvedAt time.Time, resolvedBy string) error
}
