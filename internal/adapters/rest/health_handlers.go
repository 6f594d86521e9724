package rest

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/port"
	"net/http"
	"time"
)

type HealthHandler struct {
	checker port.HealthCheckerPort
	timeout time.Duration
}

func NewHealthHandler(checker port.HealthCheckerPort) *HealthHandler {
	return &HealthHandler{checker: checker, timeout: 2 * time.Second}
}

// Check - GET /healthz, 503 если БД не отвечает
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checker.Ping(ctx); err != nil {
		contextkeys.LoggerFromContext(r.Context()).Warn("Health check failed", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
