package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	alertapp "github.com/AtharvSabde/Cropverse/internal/alerts/application"
	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	alertmemory "github.com/AtharvSabde/Cropverse/internal/alerts/infrastructure/memory"
	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
)

func newTestHandler(t *testing.T) (*Handler, *alertapp.Service, *audit.MemoryLogger) {
	t.Helper()
	service, err := alertapp.NewService(alertmemory.NewAlertRepository())
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	auditor := audit.NewMemoryLogger()
	handler, err := NewHandler(service, auditor)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler, service, auditor
}

func raiseOne(t *testing.T, service *alertapp.Service, severity alerts.Severity) alerts.Alert {
	t.Helper()
	created, err := service.Raise(context.Background(), []alerts.Alert{{
		SensorID:  "greenhouse-1",
		Sensor:    alerts.SensorTemperature,
		Severity:  severity,
		Value:     40,
		Threshold: 35,
		Message:   "CRITICAL: Temperature too high (40°C exceeds 35°C)",
	}})
	if err != nil || len(created) != 1 {
		t.Fatalf("raise: %v", err)
	}
	return created[0]
}

func TestHandler_List(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	raiseOne(t, service, alerts.SeverityCritical)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?severity=critical&resolved=false", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var list []alerts.Alert
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Severity != alerts.SeverityCritical {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}

func TestHandler_ListBadFilter(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	for _, query := range []string{
		"severity=fatal",
		"resolved=maybe",
		"from=yesterday",
		"limit=-1",
		"from=2026-03-02T00:00:00Z&to=2026-03-01T00:00:00Z",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?"+query, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, resp.Code)
		}
	}
}

func TestHandler_Resolve(t *testing.T) {
	handler, service, auditor := newTestHandler(t)
	alert := raiseOne(t, service, alerts.SeverityCritical)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/"+alert.ID+"/resolve", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleOperator, "user-7"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var resolved alerts.Alert
	if err := json.Unmarshal(resp.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resolved.Resolved || resolved.ResolvedBy != "user-7" {
		t.Fatalf("unexpected state: %+v", resolved)
	}

	entries := auditor.Entries()
	if len(entries) != 1 || entries[0].Action != "alerts.resolve" || entries[0].Actor != "user-7" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
}

func TestHandler_ResolveMissing(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/alert-nope/resolve", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandler_Summary(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	raiseOne(t, service, alerts.SeverityCritical)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/summary", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summary alertapp.AlertSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.ActiveCount != 1 || summary.BySeverity[alerts.SeverityCritical] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestHandler_Sweep(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	raiseOne(t, service, alerts.SeverityWarning)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/sweep?older_than_days=0", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero days, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/alerts/sweep?older_than_days=7", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["resolved"] != 0 {
		t.Fatalf("fresh alert must not be swept, got %d", body["resolved"])
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/alerts", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestParseFilter_TimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?from=2026-03-01T00:00:00Z&to=2026-03-02T00:00:00Z&limit=10", nil)
	filter, err := parseFilter(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !filter.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", filter.From)
	}
	if filter.Limit != 10 {
		t.Fatalf("unexpected limit %d", filter.Limit)
	}
}
