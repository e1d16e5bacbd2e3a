package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
)

// SummaryRepository is an in-memory repository for demo/testing.
type SummaryRepository struct {
	mu   sync.RWMutex
	data map[string]analytics.Summary
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{data: make(map[string]analytics.Summary)}
}

// Save upserts a summary keyed by sensor and date.
func (r *SummaryRepository) Save(ctx context.Context, summary *analytics.Summary) error {
	_ = ctx
	if summary == nil {
		return errors.New("memory summary repo: nil summary")
	}
	if summary.Date == "" {
		return analytics.ErrInvalidDate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[summaryKey(summary.SensorID, summary.Date)] = *summary
	return nil
}

// Get loads a summary by sensor and date.
func (r *SummaryRepository) Get(ctx context.Context, sensorID, date string) (*analytics.Summary, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.data[summaryKey(sensorID, date)]
	if !ok {
		return nil, analytics.ErrNotFound
	}
	return &summary, nil
}

// ListRange returns summaries for [fromDate, toDate], ordered by date.
func (r *SummaryRepository) ListRange(ctx context.Context, sensorID, fromDate, toDate string) ([]analytics.Summary, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]analytics.Summary, 0)
	for _, summary := range r.data {
		if summary.SensorID != sensorID {
			continue
		}
		if fromDate != "" && summary.Date < fromDate {
			continue
		}
		if toDate != "" && summary.Date > toDate {
			continue
		}
		result = append(result, summary)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

func summaryKey(sensorID, date string) string {
	return sensorID + "|" + date
}
