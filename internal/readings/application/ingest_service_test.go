package application

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
	readingsmemory "github.com/AtharvSabde/Cropverse/internal/readings/infrastructure/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type stubSink struct {
	breaches [][]alerts.Alert
	err      error
}

func (s *stubSink) Raise(_ context.Context, breaches []alerts.Alert) ([]alerts.Alert, error) {
	s.breaches = append(s.breaches, breaches)
	if s.err != nil {
		return nil, s.err
	}
	created := make([]alerts.Alert, len(breaches))
	copy(created, breaches)
	for i := range created {
		created[i].ID = "alert-stub"
	}
	return created, nil
}

type stubThresholds struct {
	cfg alerts.ThresholdConfig
}

func (s *stubThresholds) Thresholds(_ context.Context) alerts.ThresholdConfig {
	return s.cfg
}

func newTestIngest(t *testing.T, sink *stubSink) (*IngestService, *readingsmemory.ReadingRepository, *fakeClock) {
	t.Helper()
	repo := readingsmemory.NewReadingRepository()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := log.New(os.Stdout, "", 0)
	service, err := NewIngestService(repo, sink, &stubThresholds{cfg: alerts.DefaultThresholds()}, logger, WithClock(clock))
	if err != nil {
		t.Fatalf("new ingest service: %v", err)
	}
	return service, repo, clock
}

func TestIngest_AcceptsAndDefaults(t *testing.T) {
	sink := &stubSink{}
	service, repo, clock := newTestIngest(t, sink)

	result, err := service.Ingest(context.Background(), []byte(`{"temperature":22.5,"humidity":55,"methane":120,"other_gases":90}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Reading.SensorID != DefaultSensorID {
		t.Fatalf("expected default sensor id, got %q", result.Reading.SensorID)
	}
	if !result.Reading.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected clock timestamp, got %v", result.Reading.Timestamp)
	}
	if !strings.HasPrefix(result.Reading.ID, "read-") {
		t.Fatalf("expected generated id, got %q", result.Reading.ID)
	}
	if result.ExhaustFan {
		t.Fatal("fan should stay off at methane 120")
	}
	if result.AirQuality != readings.AirQualityModerate {
		t.Fatalf("expected Moderate air quality, got %s", result.AirQuality)
	}

	stored, err := repo.ListRange(context.Background(), DefaultSensorID, clock.Now().Add(-time.Hour), clock.Now().Add(time.Hour))
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected persisted reading: %v %d", err, len(stored))
	}
}

func TestIngest_RejectsInvalidPayload(t *testing.T) {
	sink := &stubSink{}
	service, repo, clock := newTestIngest(t, sink)

	_, err := service.Ingest(context.Background(), []byte(`{"temperature":70,"humidity":55,"methane":120,"other_gases":90}`))
	var verr *readings.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "temperature" {
		t.Fatalf("unexpected field %q", verr.Field)
	}
	if len(sink.breaches) != 0 {
		t.Fatal("rejected reading must not reach the alert sink")
	}
	stored, _ := repo.ListRange(context.Background(), "", clock.Now().Add(-time.Hour), clock.Now().Add(time.Hour))
	if len(stored) != 0 {
		t.Fatal("rejected reading must not be persisted")
	}
}

func TestIngest_RaisesAlerts(t *testing.T) {
	sink := &stubSink{}
	service, _, _ := newTestIngest(t, sink)

	result, err := service.Ingest(context.Background(), []byte(`{"temperature":40,"humidity":85,"methane":350,"other_gases":90}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Alerts) != 3 {
		t.Fatalf("expected three alerts, got %d", len(result.Alerts))
	}
	if !result.ExhaustFan {
		t.Fatal("fan should run at methane 350")
	}
	if result.AirQuality != readings.AirQualityHazardous {
		t.Fatalf("expected Hazardous, got %s", result.AirQuality)
	}
}

func TestIngest_PersistsDerivedExhaustFan(t *testing.T) {
	sink := &stubSink{}
	service, repo, clock := newTestIngest(t, sink)

	_, err := service.Ingest(context.Background(), []byte(`{"temperature":22,"humidity":55,"methane":250,"other_gases":90}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	stored, err := repo.ListRange(context.Background(), DefaultSensorID, clock.Now().Add(-time.Hour), clock.Now().Add(time.Hour))
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected persisted reading: %v %d", err, len(stored))
	}
	if !stored[0].ExhaustFan {
		t.Fatal("stored reading must carry the derived fan state")
	}
}

func TestIngest_ExplicitExhaustFanWins(t *testing.T) {
	// Replayed payloads carry their recorded fan state; derivation must
	// not overwrite it.
	sink := &stubSink{}
	service, repo, clock := newTestIngest(t, sink)

	result, err := service.Ingest(context.Background(), []byte(`{"temperature":22,"humidity":55,"methane":250,"other_gases":90,"exhaust_fan":false}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.ExhaustFan {
		t.Fatal("explicit fan state must win over derivation")
	}
	stored, _ := repo.ListRange(context.Background(), DefaultSensorID, clock.Now().Add(-time.Hour), clock.Now().Add(time.Hour))
	if len(stored) != 1 || stored[0].ExhaustFan {
		t.Fatalf("expected explicit fan state persisted: %+v", stored)
	}
}

func TestIngest_AlertFailureDoesNotRejectReading(t *testing.T) {
	sink := &stubSink{err: errors.New("repo down")}
	service, repo, clock := newTestIngest(t, sink)

	result, err := service.Ingest(context.Background(), []byte(`{"temperature":40,"humidity":55,"methane":120,"other_gases":90}`))
	if err != nil {
		t.Fatalf("reading must be accepted despite alert failure: %v", err)
	}
	if len(result.Alerts) != 0 {
		t.Fatalf("expected no raised alerts, got %d", len(result.Alerts))
	}
	stored, _ := repo.ListRange(context.Background(), DefaultSensorID, clock.Now().Add(-time.Hour), clock.Now().Add(time.Hour))
	if len(stored) != 1 {
		t.Fatal("reading must be persisted despite alert failure")
	}
}

func TestIngest_KeepsProvidedMetadata(t *testing.T) {
	sink := &stubSink{}
	service, _, _ := newTestIngest(t, sink)

	result, err := service.Ingest(context.Background(), []byte(`{"sensor_id":"greenhouse-7","timestamp":"2026-02-28T08:00:00Z","temperature":22,"humidity":55,"methane":50,"other_gases":90}`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Reading.SensorID != "greenhouse-7" {
		t.Fatalf("expected provided sensor id, got %q", result.Reading.SensorID)
	}
	want := time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC)
	if !result.Reading.Timestamp.Equal(want) {
		t.Fatalf("expected provided timestamp, got %v", result.Reading.Timestamp)
	}
}
