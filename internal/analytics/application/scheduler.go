package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
)

// AlertSweeper auto-resolves stale alerts after the nightly run.
type AlertSweeper interface {
	AutoResolveStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// SummaryChannel receives the nightly summary notification.
type SummaryChannel interface {
	Send(ctx context.Context, content string) error
}

// Scheduler runs the daily summary job for each configured sensor,
// then sweeps stale alerts and sends a summary notification.
type Scheduler struct {
	service          *SummaryService
	sweeper          AlertSweeper
	channel          SummaryChannel
	sensors          []string
	dailyAt          string
	autoResolveAfter time.Duration
	logger           *log.Logger
}

// NewScheduler constructs a Scheduler. The channel may be nil.
func NewScheduler(service *SummaryService, sweeper AlertSweeper, channel SummaryChannel, schedule ScheduleConfig, logger *log.Logger) (*Scheduler, error) {
	if service == nil {
		return nil, errors.New("scheduler: nil summary service")
	}
	if sweeper == nil {
		return nil, errors.New("scheduler: nil alert sweeper")
	}
	if logger == nil {
		logger = log.Default()
	}
	after := time.Duration(schedule.AutoResolveAfterDays) * 24 * time.Hour
	if after <= 0 {
		after = 7 * 24 * time.Hour
	}
	return &Scheduler{
		service:          service,
		sweeper:          sweeper,
		channel:          channel,
		sensors:          schedule.Sensors,
		dailyAt:          schedule.DailyAt,
		autoResolveAfter: after,
		logger:           logger,
	}, nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			s.RunOnce(ctx, now.UTC())
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

// RunOnce summarizes the previous UTC day for every configured sensor,
// auto-resolves stale alerts and notifies the webhook.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	if s == nil || len(s.sensors) == 0 {
		return
	}
	jobDate := now.UTC().AddDate(0, 0, -1)

	for _, sensorID := range s.sensors {
		if sensorID == "" {
			continue
		}
		summary, err := s.service.ComputeDaily(ctx, sensorID, jobDate)
		if err != nil {
			if !errors.Is(err, analytics.ErrNoData) {
				s.logger.Printf("scheduler: summary error: sensor=%s err=%v", sensorID, err)
			}
			continue
		}
		s.sendSummary(ctx, summary)
	}

	resolved, err := s.sweeper.AutoResolveStale(ctx, s.autoResolveAfter)
	if err != nil {
		s.logger.Printf("scheduler: auto-resolve error: %v", err)
	} else if resolved > 0 {
		s.logger.Printf("scheduler: auto-resolved %d stale alerts", resolved)
	}
}

func (s *Scheduler) sendSummary(ctx context.Context, summary *analytics.Summary) {
	if s.channel == nil || summary == nil {
		return
	}
	content := fmt.Sprintf(
		"Daily Summary %s (%s)\nStatus: %s\nReadings: %d (quality %.2f%%)\nAlerts: %d (%d critical)\nAvg Temp: %.2f°C  Avg Humidity: %.2f%%",
		summary.Date,
		summary.SensorID,
		summary.OverallStatus,
		summary.ReadingCount,
		summary.DataQualityScore,
		summary.AlertCount,
		summary.CriticalAlertCount,
		summary.Temperature.Avg,
		summary.Humidity.Avg,
	)
	if err := s.channel.Send(ctx, content); err != nil {
		s.logger.Printf("scheduler: summary notification error: %v", err)
	}
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
