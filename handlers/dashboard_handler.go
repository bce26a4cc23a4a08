package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/fest-portal/services"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type DashboardHandler struct {
	dashboardService services.DashboardService
	db               Pinger
}

func NewDashboardHandler(dashboardService services.DashboardService, db Pinger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		db:               db,
	}
}

// GetStats godoc
// @Summary Home page counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]models.DashboardStats
// @Router /stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		status, code = "database unavailable", http.StatusServiceUnavailable
	}
	if err := writeJSON(w, code, jsonResponse{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
