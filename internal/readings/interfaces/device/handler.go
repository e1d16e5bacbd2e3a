package device

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/AtharvSabde/Cropverse/internal/readings/application"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// IngestHandler handles reading ingestion from field devices.
type IngestHandler struct {
	service *application.IngestService
	logger  *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(service *application.IngestService, logger *log.Logger) (*IngestHandler, error) {
	if service == nil {
		return nil, errors.New("device ingest: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{service: service, logger: logger}, nil
}

// ServeHTTP ingests one reading per request.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("device ingest: read body error: %v", err)
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.service.Ingest(r.Context(), body)
	if err != nil {
		var verr *readings.ValidationError
		if errors.As(err, &verr) {
			h.logger.Printf("device ingest: rejected: %v", verr)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": verr.Reason,
				"field": verr.Field,
			})
			return
		}
		h.logger.Printf("device ingest: error: %v", err)
		http.Error(w, "ingest error", http.StatusInternalServerError)
		return
	}

	resp := ingestResponse{
		ReadingID:  result.Reading.ID,
		AlertCount: len(result.Alerts),
		ExhaustFan: result.ExhaustFan,
		AirQuality: string(result.AirQuality),
	}
	for _, alert := range result.Alerts {
		resp.Alerts = append(resp.Alerts, alertSummary{
			ID:       alert.ID,
			Severity: string(alert.Severity),
			Message:  alert.Message,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

type ingestResponse struct {
	ReadingID  string         `json:"reading_id"`
	AlertCount int            `json:"alert_count"`
	Alerts     []alertSummary `json:"alerts,omitempty"`
	ExhaustFan bool           `json:"exhaust_fan"`
	AirQuality string         `json:"air_quality"`
}

type alertSummary struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}
