package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
	readingsapp "github.com/AtharvSabde/Cropverse/internal/readings/application"
)

// SummaryReader loads stored daily summaries.
type SummaryReader interface {
	Get(ctx context.Context, sensorID, date string) (*analytics.Summary, error)
}

// Handler serves daily report exports.
type Handler struct {
	summaries SummaryReader
	auditor   audit.Logger
}

// NewHandler constructs a report handler. The auditor may be nil.
func NewHandler(summaries SummaryReader, auditor audit.Logger) (*Handler, error) {
	if summaries == nil {
		return nil, errors.New("reports handler: nil summary source")
	}
	return &Handler{summaries: summaries, auditor: auditor}, nil
}

// ServeHTTP handles GET /api/v1/reports/daily.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/reports/daily" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sensorID := r.URL.Query().Get("sensor_id")
	if sensorID == "" {
		sensorID = readingsapp.DefaultSensorID
	}
	date := r.URL.Query().Get("date")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	summary, err := h.summaries.Get(r.Context(), sensorID, date)
	if err != nil {
		metrics.IncReportExport(format, metrics.ResultError)
		switch {
		case errors.Is(err, analytics.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, analytics.ErrInvalidDate):
			http.Error(w, "date must be formatted as 2006-01-02", http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildDailyPDF(summary)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildDailyXLSX(summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		data, err = BuildDailyCSV(summary)
		contentType = "text/csv"
	default:
		metrics.IncReportExport(format, metrics.ResultError)
		http.Error(w, "format must be pdf, xlsx or csv", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.IncReportExport(format, metrics.ResultError)
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}

	metrics.IncReportExport(format, metrics.ResultSuccess)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, sensorID, date, format)
}

func (h *Handler) logAudit(r *http.Request, sensorID, date, format string) {
	if h.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]string{"format": format})
	_ = h.auditor.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "summary",
		ResourceID:   sensorID + "/" + date,
		Metadata:     meta,
	})
}
