package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
)

// AlertNotifier publishes alert lifecycle events.
type AlertNotifier interface {
	Notify(ctx context.Context, event AlertEvent)
}

// AlertEvent represents a lifecycle update.
type AlertEvent struct {
	Type  string       `json:"type"`
	Alert alerts.Alert `json:"alert"`
}

// Lifecycle event types.
const (
	EventRaised   = "raised"
	EventResolved = "resolved"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// AlertSummary aggregates open alerts for the dashboard.
type AlertSummary struct {
	ActiveCount           int                     `json:"active_count"`
	BySeverity            map[alerts.Severity]int `json:"by_severity"`
	BySensor              map[alerts.Sensor]int   `json:"by_sensor"`
	OldestAlertAgeMinutes int                     `json:"oldest_alert_age_minutes"`
}

// Service handles alert creation and state transitions.
type Service struct {
	repo     alerts.Repository
	notifier AlertNotifier
	clock    Clock

	dedupeWindow time.Duration
	mu           sync.Mutex
	lastRaised   map[string]time.Time
}

// ServiceOption customizes the alert service.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDedupeWindow suppresses repeat alerts for the same sensor and
// severity within the window.
func WithDedupeWindow(window time.Duration) ServiceOption {
	return func(s *Service) {
		if window > 0 {
			s.dedupeWindow = window
		}
	}
}

// NewService constructs an alert service.
func NewService(repo alerts.Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("alerts: nil repository")
	}
	service := &Service{
		repo:       repo,
		clock:      systemClock{},
		lastRaised: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Raise persists threshold breaches as alerts and notifies. Breaches
// inside the dedupe window for the same sensor and severity are
// dropped. Returns the alerts actually created.
func (s *Service) Raise(ctx context.Context, breaches []alerts.Alert) ([]alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	if len(breaches) == 0 {
		return nil, nil
	}
	now := s.clock.Now().UTC()
	created := make([]alerts.Alert, 0, len(breaches))
	for _, breach := range breaches {
		if !breach.Severity.IsValid() {
			return created, alerts.ErrInvalidSeverity
		}
		if s.suppressed(breach, now) {
			continue
		}
		alert := breach
		alert.CreatedAt = now
		alert.Resolved = false
		alert.ID = buildAlertID(alert.SensorID, string(alert.Sensor), string(alert.Severity), now)
		if err := s.repo.Create(ctx, &alert); err != nil {
			return created, err
		}
		s.markRaised(breach, now)
		metrics.IncAlertRaised(string(alert.Severity), string(alert.Sensor))
		s.notify(ctx, EventRaised, alert)
		created = append(created, alert)
	}
	return created, nil
}

// List returns alerts matching the filter via a direct range query.
func (s *Service) List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	return s.repo.List(ctx, filter)
}

// Resolve marks an alert resolved. Resolving an already-resolved alert
// is a no-op success; a missing alert is ErrNotFound.
func (s *Service) Resolve(ctx context.Context, id, resolvedBy string) (*alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	if id == "" {
		return nil, errors.New("alerts: alert id required")
	}
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, alerts.ErrNotFound
	}
	if alert.Resolved {
		return alert, nil
	}
	resolvedAt := s.clock.Now().UTC()
	if err := s.repo.MarkResolved(ctx, alert.ID, resolvedAt, resolvedBy); err != nil {
		return nil, err
	}
	alert.Resolved = true
	alert.ResolvedAt = resolvedAt
	alert.ResolvedBy = resolvedBy
	metrics.IncAlertResolved(metrics.ResolveModeManual)
	s.notify(ctx, EventResolved, *alert)
	return alert, nil
}

// AutoResolveStale resolves open alerts older than the given age and
// returns how many were resolved.
func (s *Service) AutoResolveStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if s == nil {
		return 0, errors.New("alerts: nil service")
	}
	if olderThan <= 0 {
		olderThan = 7 * 24 * time.Hour
	}
	now := s.clock.Now().UTC()
	cutoff := now.Add(-olderThan)
	open := false
	stale, err := s.repo.List(ctx, alerts.Filter{Resolved: &open, To: cutoff})
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, alert := range stale {
		// Best effort: one failed resolution must not abort the sweep.
		if err := s.repo.MarkResolved(ctx, alert.ID, now, "auto"); err != nil {
			continue
		}
		alert.Resolved = true
		alert.ResolvedAt = now
		alert.ResolvedBy = "auto"
		metrics.IncAlertResolved(metrics.ResolveModeAuto)
		s.notify(ctx, EventResolved, alert)
		resolved++
	}
	return resolved, nil
}

// Summary counts open alerts by severity and sensor and reports the
// oldest open alert age in minutes.
func (s *Service) Summary(ctx context.Context) (AlertSummary, error) {
	summary := AlertSummary{
		BySeverity: map[alerts.Severity]int{
			alerts.SeverityCritical: 0,
			alerts.SeverityWarning:  0,
			alerts.SeverityInfo:     0,
		},
		BySensor: map[alerts.Sensor]int{
			alerts.SensorTemperature: 0,
			alerts.SensorHumidity:    0,
			alerts.SensorMethane:     0,
			alerts.SensorOtherGases:  0,
		},
	}
	if s == nil {
		return summary, errors.New("alerts: nil service")
	}
	open := false
	active, err := s.repo.List(ctx, alerts.Filter{Resolved: &open})
	if err != nil {
		return summary, err
	}
	summary.ActiveCount = len(active)
	now := s.clock.Now().UTC()
	oldest := 0
	for _, alert := range active {
		if _, ok := summary.BySeverity[alert.Severity]; ok {
			summary.BySeverity[alert.Severity]++
		}
		if _, ok := summary.BySensor[alert.Sensor]; ok {
			summary.BySensor[alert.Sensor]++
		}
		if age := alert.AgeMinutes(now); age > oldest {
			oldest = age
		}
	}
	summary.OldestAlertAgeMinutes = oldest
	return summary, nil
}

func (s *Service) suppressed(breach alerts.Alert, now time.Time) bool {
	if s.dedupeWindow <= 0 {
		return false
	}
	key := dedupeKey(breach)
	s.mu.Lock()
	last, ok := s.lastRaised[key]
	s.mu.Unlock()
	return ok && now.Sub(last) < s.dedupeWindow
}

func (s *Service) markRaised(breach alerts.Alert, now time.Time) {
	if s.dedupeWindow <= 0 {
		return
	}
	s.mu.Lock()
	s.lastRaised[dedupeKey(breach)] = now
	s.mu.Unlock()
}

func (s *Service) notify(ctx context.Context, eventType string, alert alerts.Alert) {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, AlertEvent{Type: eventType, Alert: alert})
}

func dedupeKey(breach alerts.Alert) string {
	return breach.SensorID + "|" + string(breach.Sensor) + "|" + string(breach.Severity)
}

func buildAlertID(sensorID, sensor, severity string, createdAt time.Time) string {
	sum := sha1.Sum([]byte(sensorID + "|" + sensor + "|" + severity + "|" + createdAt.Format(time.RFC3339Nano)))
	return "alert-" + hex.EncodeToString(sum[:8])
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
