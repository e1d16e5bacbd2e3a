package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
)

// AlertRepository is an in-memory repository for demo/testing.
type AlertRepository struct {
	mu   sync.RWMutex
	data map[string]alerts.Alert
}

// NewAlertRepository constructs a repository.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{data: make(map[string]alerts.Alert)}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *alerts.Alert) error {
	_ = ctx
	if alert == nil {
		return errors.New("memory alert repo: nil alert")
	}
	if alert.ID == "" {
		return errors.New("memory alert repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[alert.ID] = *alert
	return nil
}

// GetByID fetches an alert by id.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	alert, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &alert, nil
}

// List returns alerts matching the filter, newest first.
func (r *AlertRepository) List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]alerts.Alert, 0, len(r.data))
	for _, alert := range r.data {
		if matches(alert, filter) {
			result = append(result, alert)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// MarkResolved marks an alert as resolved.
func (r *AlertRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time, resolvedBy string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.data[id]
	if !ok {
		return alerts.ErrNotFound
	}
	alert.Resolved = true
	alert.ResolvedAt = resolvedAt
	alert.ResolvedBy = resolvedBy
	r.data[id] = alert
	return nil
}

func matches(alert alerts.Alert, filter alerts.Filter) bool {
	if filter.SensorID != "" && alert.SensorID != filter.SensorID {
		return false
	}
	if filter.Sensor != "" && alert.Sensor != filter.Sensor {
		return false
	}
	if filter.Severity != "" && alert.Severity != filter.Severity {
		return false
	}
	if filter.Resolved != nil && alert.Resolved != *filter.Resolved {
		return false
	}
	if !filter.From.IsZero() && alert.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !alert.CreatedAt.Before(filter.To) {
		return false
	}
	return true
}
