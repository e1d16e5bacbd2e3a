package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// DefaultSensorID is assumed when a device payload omits sensor_id.
const DefaultSensorID = "greenhouse-1"

// AlertSink turns threshold breaches into persisted alerts.
type AlertSink interface {
	Raise(ctx context.Context, breaches []alerts.Alert) ([]alerts.Alert, error)
}

// ThresholdProvider resolves the active threshold configuration.
type ThresholdProvider interface {
	Thresholds(ctx context.Context) alerts.ThresholdConfig
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// IngestResult is returned to the device after a reading is accepted.
type IngestResult struct {
	Reading    readings.Reading    `json:"reading"`
	Alerts     []alerts.Alert      `json:"alerts"`
	ExhaustFan bool                `json:"exhaust_fan"`
	AirQuality readings.AirQuality `json:"air_quality"`
}

// IngestService validates, persists and evaluates device readings.
type IngestService struct {
	repo       readings.Repository
	sink       AlertSink
	thresholds ThresholdProvider
	clock      Clock
	logger     *log.Logger
	sensorID   string
}

// IngestOption customizes the ingest service.
type IngestOption func(*IngestService)

// WithClock assigns a clock.
func WithClock(clock Clock) IngestOption {
	return func(s *IngestService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDefaultSensorID overrides the fallback sensor id.
func WithDefaultSensorID(sensorID string) IngestOption {
	return func(s *IngestService) {
		if sensorID != "" {
			s.sensorID = sensorID
		}
	}
}

// NewIngestService constructs an ingest service.
func NewIngestService(repo readings.Repository, sink AlertSink, thresholds ThresholdProvider, logger *log.Logger, opts ...IngestOption) (*IngestService, error) {
	if repo == nil {
		return nil, errors.New("ingest: nil repository")
	}
	if sink == nil {
		return nil, errors.New("ingest: nil alert sink")
	}
	if thresholds == nil {
		return nil, errors.New("ingest: nil threshold provider")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &IngestService{
		repo:       repo,
		sink:       sink,
		thresholds: thresholds,
		clock:      systemClock{},
		logger:     logger,
		sensorID:   DefaultSensorID,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Ingest parses a raw device payload, persists the reading and raises
// alerts for any threshold breaches. A reading is accepted if and only
// if it validates and persists; alert or notification failures are
// logged and never reject an accepted reading.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) (IngestResult, error) {
	if s == nil {
		return IngestResult{}, errors.New("ingest: nil service")
	}
	start := s.clock.Now()

	reading, err := readings.ParseReading(raw)
	if err != nil {
		var verr *readings.ValidationError
		if errors.As(err, &verr) {
			metrics.IncReadingRejected(verr.Field)
		}
		metrics.ObserveIngest(metrics.ResultError, s.clock.Now().Sub(start))
		return IngestResult{}, err
	}

	if reading.SensorID == "" {
		reading.SensorID = s.sensorID
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = s.clock.Now().UTC()
	}
	reading.ID = "read-" + uuid.NewString()

	cfg := s.thresholds.Thresholds(ctx)
	reading.DeriveExhaustFan(cfg.ExhaustFanTrigger)

	if err := s.repo.Save(ctx, &reading); err != nil {
		metrics.ObserveIngest(metrics.ResultError, s.clock.Now().Sub(start))
		return IngestResult{}, err
	}

	breaches := alerts.Evaluate(reading, cfg)
	raised, err := s.sink.Raise(ctx, breaches)
	if err != nil {
		s.logger.Printf("ingest: raise alerts for reading %s: %v", reading.ID, err)
	}

	metrics.ObserveIngest(metrics.ResultSuccess, s.clock.Now().Sub(start))
	return IngestResult{
		Reading:    reading,
		Alerts:     raised,
		ExhaustFan: reading.ExhaustFan,
		AirQuality: readings.AirQualityFor(reading.Methane, reading.OtherGases),
	}, nil
}

// ListRange returns readings for a sensor within [from, to).
func (s *IngestService) ListRange(ctx context.Context, sensorID string, from, to time.Time) ([]readings.Reading, error) {
	if s == nil {
		return nil, errors.New("ingest: nil service")
	}
	return s.repo.ListRange(ctx, sensorID, from, to)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
