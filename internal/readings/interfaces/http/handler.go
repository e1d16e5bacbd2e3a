package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	readingsapp "github.com/AtharvSabde/Cropverse/internal/readings/application"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// Handler exposes reading queries over HTTP.
type Handler struct {
	service *readingsapp.IngestService
}

// NewHandler constructs a readings query handler.
func NewHandler(service *readingsapp.IngestService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("readings handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/readings.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/readings" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	sensorID := query.Get("sensor_id")

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	var err error
	if raw := query.Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "from must be RFC3339", http.StatusBadRequest)
			return
		}
	}
	if raw := query.Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "to must be RFC3339", http.StatusBadRequest)
			return
		}
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	list, err := h.service.ListRange(r.Context(), sensorID, from.UTC(), to.UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []readings.Reading{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
