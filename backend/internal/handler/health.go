package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/feed/shared/api"
	"github.com/itchan-dev/feed/shared/logger"
	"github.com/itchan-dev/feed/shared/utils"
)

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready reports 503 while the database is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "database unavailable"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
