package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/lingua-api/internal/api/shared"
	"github.com/phrazzld/lingua-api/internal/redact"
)

const healthCheckTimeout = 2 * time.Second

// Pinger checks that the storage backend is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	storage   string
	pinger    Pinger
	aiEnabled bool
	logger    *slog.Logger
}

// NewHealthHandler creates a HealthHandler. pinger may be nil for backends
// without a connection to check.
func NewHealthHandler(storage string, pinger Pinger, aiEnabled bool, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		storage:   storage,
		pinger:    pinger,
		aiEnabled: aiEnabled,
		logger:    logger.With(slog.String("component", "health_handler")),
	}
}

// Health answers 200 when storage is reachable and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Storage: h.storage, AI: h.aiEnabled}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			h.logger.Error("storage health check failed", slog.String("error", redact.Error(err)))
			resp.Status = "unavailable"
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
