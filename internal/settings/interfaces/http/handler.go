package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
	"github.com/AtharvSabde/Cropverse/internal/settings"
)

// Handler exposes threshold settings over HTTP.
type Handler struct {
	provider *settings.Provider
	auditor  audit.Logger
}

// NewHandler constructs a settings handler. The auditor may be nil.
func NewHandler(provider *settings.Provider, auditor audit.Logger) (*Handler, error) {
	if provider == nil {
		return nil, errors.New("settings handler: nil provider")
	}
	return &Handler{provider: provider, auditor: auditor}, nil
}

// ServeHTTP handles /api/v1/settings routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/settings":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGet(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/settings/"):
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	thresholds := h.provider.Thresholds(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(thresholds)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/v1/settings/")
	if key == "" || strings.Contains(key, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := h.provider.Update(r.Context(), key, body.Value); err != nil {
		switch {
		case errors.Is(err, settings.ErrUnknownKey):
			http.Error(w, "unknown setting key", http.StatusBadRequest)
		case errors.Is(err, settings.ErrNoStore):
			http.Error(w, "settings store not configured", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if h.auditor != nil {
		meta, _ := json.Marshal(map[string]any{"key": key, "value": body.Value})
		_ = h.auditor.Log(r.Context(), audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "settings.update",
			ResourceType: "setting",
			ResourceID:   key,
			Metadata:     meta,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}
