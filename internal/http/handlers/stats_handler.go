package handlers

import (
	"net/http"

	"evconduit/internal/http/middleware"
	"evconduit/internal/service"
)

// NewUserStatsHandler returns GET /stats/me handler.
func NewUserStatsHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user")
			return
		}

		stats, err := svc.UserStats(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// NewGlobalStatsHandler returns GET /stats/global handler.
func NewGlobalStatsHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GlobalStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
