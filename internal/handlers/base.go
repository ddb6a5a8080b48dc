package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"xhub/internal/common/logging"
)

// Handlers serves the receiver endpoints.
type Handlers struct {
	logger    logging.Logger
	startedAt time.Time
	version   string
}

// New creates the handlers. A nil logger selects the global logger.
func New(logger logging.Logger, version string) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		logger:    logger.WithFields(logging.Field{Key: "component", Value: "handlers"}),
		startedAt: time.Now(),
		version:   version,
	}
}

func (h *Handlers) sendJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to encode response", err)
	}
}
