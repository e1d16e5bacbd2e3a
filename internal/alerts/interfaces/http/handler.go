package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	alertapp "github.com/AtharvSabde/Cropverse/internal/alerts/application"
	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
)

const timeLayout = time.RFC3339

// Handler provides alert HTTP endpoints.
type Handler struct {
	service *alertapp.Service
	auditor audit.Logger
}

// NewHandler constructs a handler. The auditor may be nil.
func NewHandler(service *alertapp.Service, auditor audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("alerts handler: nil service")
	}
	return &Handler{service: service, auditor: auditor}, nil
}

// ServeHTTP handles /api/v1/alerts and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case r.URL.Path == "/api/v1/alerts/summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSummary(w, r)
	case r.URL.Path == "/api/v1/alerts/sweep":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSweep(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alerts/"):
		h.handleResolve(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	writeJSON(w, list)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	olderThan := 7 * 24 * time.Hour
	if raw := r.URL.Query().Get("older_than_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			http.Error(w, "older_than_days must be a positive integer", http.StatusBadRequest)
			return
		}
		olderThan = time.Duration(days) * 24 * time.Hour
	}
	resolved, err := h.service.AutoResolveStale(r.Context(), olderThan)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logAudit(r, "alerts.sweep", "", strconv.Itoa(resolved))
	writeJSON(w, map[string]int{"resolved": resolved})
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "resolve" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	resolvedBy := auth.SubjectFromContext(r.Context())
	if resolvedBy == "" {
		resolvedBy = "operator"
	}
	alert, err := h.service.Resolve(r.Context(), id, resolvedBy)
	if err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logAudit(r, "alerts.resolve", id, "")
	writeJSON(w, alert)
}

func (h *Handler) logAudit(r *http.Request, action, resourceID, detail string) {
	if h.auditor == nil {
		return
	}
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "alert",
		ResourceID:   resourceID,
	}
	if detail != "" {
		entry.Metadata = json.RawMessage(`{"detail":"` + detail + `"}`)
	}
	_ = h.auditor.Log(r.Context(), entry)
}

func parseFilter(r *http.Request) (alerts.Filter, error) {
	var filter alerts.Filter
	query := r.URL.Query()
	filter.SensorID = query.Get("sensor_id")
	if raw := query.Get("sensor"); raw != "" {
		filter.Sensor = alerts.Sensor(raw)
	}
	if raw := query.Get("severity"); raw != "" {
		severity := alerts.Severity(raw)
		if !severity.IsValid() {
			return filter, errors.New("severity must be info, warning or critical")
		}
		filter.Severity = severity
	}
	if raw := query.Get("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("resolved must be a boolean")
		}
		filter.Resolved = &resolved
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(timeLayout, raw)
		if err != nil {
			return filter, errors.New("from must be RFC3339")
		}
		filter.From = from.UTC()
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(timeLayout, raw)
		if err != nil {
			return filter, errors.New("to must be RFC3339")
		}
		filter.To = to.UTC()
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.To.After(filter.From) {
		return filter, errors.New("to must be after from")
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
