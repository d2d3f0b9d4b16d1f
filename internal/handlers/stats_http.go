package handlers

import (
	"net/http"

	"github.com/sahil06012005/OdooHackathon/internal/repository"
	"github.com/sahil06012005/OdooHackathon/internal/utils"
)

type StatsHTTP struct {
	tickets repository.TicketRepository
}

func NewStatsHTTP(tickets repository.TicketRepository) *StatsHTTP {
	return &StatsHTTP{tickets: tickets}
}

// GET /api/stats
// Returns the dashboard stat block: {total, open, inProgress, resolved}.
func (h *StatsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.tickets.Stats(r.Context())
		if err != nil {
			writeFetchError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, s)
	}
}
