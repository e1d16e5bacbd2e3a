package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// ReadingRepository is an in-memory repository for demo/testing.
type ReadingRepository struct {
	mu   sync.RWMutex
	data []readings.Reading
}

// NewReadingRepository constructs a repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{}
}

// Save appends a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.Reading) error {
	_ = ctx
	if reading == nil {
		return errors.New("memory reading repo: nil reading")
	}
	if reading.ID == "" {
		return errors.New("memory reading repo: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, *reading)
	return nil
}

// ListRange returns readings for a sensor within [from, to), ordered
// by timestamp ascending. An empty sensor id matches all sensors.
func (r *ReadingRepository) ListRange(ctx context.Context, sensorID string, from, to time.Time) ([]readings.Reading, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]readings.Reading, 0)
	for _, reading := range r.data {
		if sensorID != "" && reading.SensorID != sensorID {
			continue
		}
		if !from.IsZero() && reading.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !reading.Timestamp.Before(to) {
			continue
		}
		result = append(result, reading)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
