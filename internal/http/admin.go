package http

import (
	"net/http"

	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/pkg/httpx"
)

// AdminHandler serves the platform statistics endpoint.
type AdminHandler struct {
	Analytics *service.AnalyticsService
	Dev       bool
}

func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analytics.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, stats)
}
