package handlers

import (
	"net/http"

	"github.com/Dosada05/fest-portal/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// GetStandings godoc
// @Summary Current team standings
// @Description Teams ranked by total points; ties are ordered by team name.
// @Tags standings
// @Produce json
// @Success 200 {object} models.StandingsSnapshot
// @Failure 503 {object} map[string]string
// @Router /standings [get]
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.standingsService.GetStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snap, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecomputeStandings forces a full re-read outside of the change feed.
func (h *StandingsHandler) RecomputeStandings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.standingsService.RecomputeStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snap, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
