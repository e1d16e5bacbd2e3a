package application

import (
	"context"
	"errors"
	"log"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// DefaultTrendWindowDays is the trailing window feeding trends and
// correlations, the summary day included.
const DefaultTrendWindowDays = 7

// AlertReader lists alerts for summary counting.
type AlertReader interface {
	List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SummaryService computes and stores daily analytics summaries.
type SummaryService struct {
	summaries       analytics.Repository
	readings        readings.Repository
	alerts          AlertReader
	clock           Clock
	logger          *log.Logger
	trendWindowDays int
}

// SummaryOption customizes the summary service.
type SummaryOption func(*SummaryService)

// WithClock assigns a clock.
func WithClock(clock Clock) SummaryOption {
	return func(s *SummaryService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTrendWindowDays overrides the trend window length.
func WithTrendWindowDays(days int) SummaryOption {
	return func(s *SummaryService) {
		if days > 0 {
			s.trendWindowDays = days
		}
	}
}

// NewSummaryService constructs a summary service.
func NewSummaryService(summaries analytics.Repository, readingRepo readings.Repository, alertReader AlertReader, logger *log.Logger, opts ...SummaryOption) (*SummaryService, error) {
	if summaries == nil {
		return nil, errors.New("analytics: nil summary repository")
	}
	if readingRepo == nil {
		return nil, errors.New("analytics: nil reading repository")
	}
	if alertReader == nil {
		return nil, errors.New("analytics: nil alert reader")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &SummaryService{
		summaries:       summaries,
		readings:        readingRepo,
		alerts:          alertReader,
		clock:           systemClock{},
		logger:          logger,
		trendWindowDays: DefaultTrendWindowDays,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// ComputeDaily builds and persists the summary for one sensor and UTC
// day. Recomputing the same day overwrites the stored summary, so the
// operation is idempotent. Returns analytics.ErrNoData for an empty day.
func (s *SummaryService) ComputeDaily(ctx context.Context, sensorID string, date time.Time) (*analytics.Summary, error) {
	if s == nil {
		return nil, errors.New("analytics: nil service")
	}
	start := s.clock.Now()

	dayStart := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	windowStart := dayStart.AddDate(0, 0, -(s.trendWindowDays - 1))

	dayReadings, err := s.readings.ListRange(ctx, sensorID, dayStart, dayEnd)
	if err != nil {
		metrics.ObserveSummary(metrics.ResultError, s.clock.Now().Sub(start))
		return nil, err
	}
	windowReadings, err := s.readings.ListRange(ctx, sensorID, windowStart, dayEnd)
	if err != nil {
		metrics.ObserveSummary(metrics.ResultError, s.clock.Now().Sub(start))
		return nil, err
	}
	dayAlerts, err := s.alerts.List(ctx, alerts.Filter{SensorID: sensorID, From: dayStart, To: dayEnd})
	if err != nil {
		metrics.ObserveSummary(metrics.ResultError, s.clock.Now().Sub(start))
		return nil, err
	}

	summary, err := analytics.BuildSummary(sensorID, dayStart, dayReadings, dayAlerts, windowReadings, s.clock.Now())
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			s.logger.Printf("analytics: no readings for sensor=%s date=%s", sensorID, dayStart.Format(analytics.DateLayout))
			metrics.ObserveSummary("no_data", s.clock.Now().Sub(start))
		} else {
			metrics.ObserveSummary(metrics.ResultError, s.clock.Now().Sub(start))
		}
		return nil, err
	}

	if err := s.summaries.Save(ctx, summary); err != nil {
		metrics.ObserveSummary(metrics.ResultError, s.clock.Now().Sub(start))
		return nil, err
	}

	s.logger.Printf("analytics: summary saved sensor=%s date=%s status=%s readings=%d alerts=%d",
		sensorID, summary.Date, summary.OverallStatus, summary.ReadingCount, summary.AlertCount)
	metrics.ObserveSummary(metrics.ResultSuccess, s.clock.Now().Sub(start))
	return summary, nil
}

// TrendReport is an on-demand trend analysis over a trailing window.
type TrendReport struct {
	SensorID     string                     `json:"sensor_id"`
	PeriodDays   int                        `json:"period_days"`
	From         string                     `json:"from"`
	To           string                     `json:"to"`
	ReadingCount int                        `json:"reading_count"`
	Trends       map[string]analytics.Trend `json:"trends"`
}

// CorrelationReport is an on-demand correlation matrix over a trailing
// window. Insufficient marks windows below the minimum sample size;
// Correlations is empty in that case rather than carrying degenerate
// coefficients.
type CorrelationReport struct {
	SensorID     string             `json:"sensor_id"`
	PeriodDays   int                `json:"period_days"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	ReadingCount int                `json:"reading_count"`
	Insufficient bool               `json:"insufficient_data"`
	Correlations map[string]float64 `json:"correlations,omitempty"`
}

// Trends analyzes the trailing window of whole days ending now.
// Returns analytics.ErrNoData when the window holds no readings.
func (s *SummaryService) Trends(ctx context.Context, sensorID string, days int) (*TrendReport, error) {
	if s == nil {
		return nil, errors.New("analytics: nil service")
	}
	days = normalizeWindowDays(days, s.trendWindowDays)
	window, from, to, err := s.windowReadings(ctx, sensorID, days)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		return nil, analytics.ErrNoData
	}
	return &TrendReport{
		SensorID:     sensorID,
		PeriodDays:   days,
		From:         from.Format(analytics.DateLayout),
		To:           to.Format(analytics.DateLayout),
		ReadingCount: len(window),
		Trends:       analytics.ComputeTrends(window),
	}, nil
}

// Correlations computes the pairwise sensor correlation matrix over the
// trailing window of whole days ending now.
func (s *SummaryService) Correlations(ctx context.Context, sensorID string, days int) (*CorrelationReport, error) {
	if s == nil {
		return nil, errors.New("analytics: nil service")
	}
	days = normalizeWindowDays(days, s.trendWindowDays)
	window, from, to, err := s.windowReadings(ctx, sensorID, days)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		return nil, analytics.ErrNoData
	}
	correlations := analytics.ComputeCorrelations(window)
	return &CorrelationReport{
		SensorID:     sensorID,
		PeriodDays:   days,
		From:         from.Format(analytics.DateLayout),
		To:           to.Format(analytics.DateLayout),
		ReadingCount: len(window),
		Insufficient: correlations == nil,
		Correlations: correlations,
	}, nil
}

func (s *SummaryService) windowReadings(ctx context.Context, sensorID string, days int) ([]readings.Reading, time.Time, time.Time, error) {
	now := s.clock.Now().UTC()
	from := now.AddDate(0, 0, -days)
	window, err := s.readings.ListRange(ctx, sensorID, from, now)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return window, from, now, nil
}

func normalizeWindowDays(days, fallback int) int {
	if days <= 0 {
		days = fallback
	}
	if days > 90 {
		days = 90
	}
	return days
}

// Get loads a stored summary by sensor and date key.
func (s *SummaryService) Get(ctx context.Context, sensorID, date string) (*analytics.Summary, error) {
	if s == nil {
		return nil, errors.New("analytics: nil service")
	}
	if _, err := time.Parse(analytics.DateLayout, date); err != nil {
		return nil, analytics.ErrInvalidDate
	}
	return s.summaries.Get(ctx, sensorID, date)
}

// GetRange loads stored summaries for an inclusive date range.
func (s *SummaryService) GetRange(ctx context.Context, sensorID, fromDate, toDate string) ([]analytics.Summary, error) {
	if s == nil {
		return nil, errors.New("analytics: nil service")
	}
	for _, date := range []string{fromDate, toDate} {
		if _, err := time.Parse(analytics.DateLayout, date); err != nil {
			return nil, analytics.ErrInvalidDate
		}
	}
	return s.summaries.ListRange(ctx, sensorID, fromDate, toDate)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
