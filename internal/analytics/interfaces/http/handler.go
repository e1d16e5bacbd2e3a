package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	analyticsapp "github.com/AtharvSabde/Cropverse/internal/analytics/application"
	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
	readingsapp "github.com/AtharvSabde/Cropverse/internal/readings/application"
)

// Handler provides analytics HTTP endpoints.
type Handler struct {
	summaries *analyticsapp.SummaryService
	auditor   audit.Logger
}

// NewHandler constructs a handler. The auditor may be nil.
func NewHandler(summaries *analyticsapp.SummaryService, auditor audit.Logger) (*Handler, error) {
	if summaries == nil {
		return nil, errors.New("analytics handler: nil summary service")
	}
	return &Handler{summaries: summaries, auditor: auditor}, nil
}

// ServeHTTP handles /api/v1/analytics/* routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/analytics/summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGet(w, r)
	case "/api/v1/analytics/summary/range":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRange(w, r)
	case "/api/v1/analytics/summary/run":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRun(w, r)
	case "/api/v1/analytics/trends":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleTrends(w, r)
	case "/api/v1/analytics/correlations":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleCorrelations(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sensorID := sensorIDParam(r)
	date := r.URL.Query().Get("date")
	summary, err := h.summaries.Get(r.Context(), sensorID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request) {
	sensorID := sensorIDParam(r)
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	list, err := h.summaries.GetRange(r.Context(), sensorID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []analytics.Summary{}
	}
	writeJSON(w, list)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	sensorID := sensorIDParam(r)
	raw := r.URL.Query().Get("date")
	date, err := time.Parse(analytics.DateLayout, raw)
	if err != nil {
		http.Error(w, "date must be formatted as 2006-01-02", http.StatusBadRequest)
		return
	}
	summary, err := h.summaries.ComputeDaily(r.Context(), sensorID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.auditor != nil {
		_ = h.auditor.Log(r.Context(), audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "analytics.summary.run",
			ResourceType: "summary",
			ResourceID:   sensorID + "/" + raw,
		})
	}
	writeJSON(w, summary)
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r)
	if !ok {
		return
	}
	report, err := h.summaries.Trends(r.Context(), sensorIDParam(r), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r)
	if !ok {
		return
	}
	report, err := h.summaries.Correlations(r.Context(), sensorIDParam(r), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

// daysParam parses the optional days query parameter. Zero means the
// service default. Windows beyond 90 days are rejected rather than
// silently clamped.
func daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 90 {
		http.Error(w, "days must be an integer between 1 and 90", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}

func sensorIDParam(r *http.Request) string {
	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		sensorID = readingsapp.DefaultSensorID
	}
	return sensorID
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, analytics.ErrNoData):
		http.Error(w, "no readings recorded for that day", http.StatusNotFound)
	case errors.Is(err, analytics.ErrInvalidDate):
		http.Error(w, "date must be formatted as 2006-01-02", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
