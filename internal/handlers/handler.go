package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/adapter"
	"github.com/vinsight/crm/internal/source"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	data        *adapter.Adapter
	emitter     adapter.Emitter
	src         source.Source
	cacheMaxAge time.Duration
	logger      zerolog.Logger
}

// NewHandler creates a new Handler over the data adapter.
func NewHandler(data *adapter.Adapter, emitter adapter.Emitter, src source.Source, cacheMaxAge time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		data:        data,
		emitter:     emitter,
		src:         src,
		cacheMaxAge: cacheMaxAge,
		logger:      logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
