package device

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	"github.com/AtharvSabde/Cropverse/internal/readings/application"
	readingsmemory "github.com/AtharvSabde/Cropverse/internal/readings/infrastructure/memory"
)

type stubSink struct{}

func (stubSink) Raise(_ context.Context, breaches []alerts.Alert) ([]alerts.Alert, error) {
	created := make([]alerts.Alert, len(breaches))
	copy(created, breaches)
	for i := range created {
		created[i].ID = "alert-stub"
	}
	return created, nil
}

type stubThresholds struct{}

func (stubThresholds) Thresholds(_ context.Context) alerts.ThresholdConfig {
	return alerts.DefaultThresholds()
}

func newHandler(t *testing.T) *IngestHandler {
	t.Helper()
	logger := log.New(os.Stdout, "", 0)
	service, err := application.NewIngestService(readingsmemory.NewReadingRepository(), stubSink{}, stubThresholds{}, logger)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler, err := NewIngestHandler(service, logger)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler
}

func TestIngestHandler_Created(t *testing.T) {
	handler := newHandler(t)

	body := `{"temperature":40,"humidity":55,"methane":120,"other_gases":90}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/readings", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var decoded struct {
		ReadingID  string `json:"reading_id"`
		AlertCount int    `json:"alert_count"`
		ExhaustFan bool   `json:"exhaust_fan"`
		AirQuality string `json:"air_quality"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.ReadingID == "" || decoded.AlertCount != 1 {
		t.Fatalf("unexpected response: %+v", decoded)
	}
	if decoded.ExhaustFan {
		t.Fatal("fan should be off at methane 120")
	}
	if decoded.AirQuality != "Moderate" {
		t.Fatalf("unexpected air quality %q", decoded.AirQuality)
	}
}

func TestIngestHandler_ValidationError(t *testing.T) {
	handler := newHandler(t)

	body := `{"temperature":22,"humidity":55,"methane":120}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/readings", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var decoded map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded["field"] != "other_gases" || decoded["error"] != "missing required field" {
		t.Fatalf("unexpected error body: %v", decoded)
	}
}

func TestIngestHandler_MethodNotAllowed(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/ingest/readings", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}
