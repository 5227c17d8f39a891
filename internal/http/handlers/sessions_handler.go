package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"evconduit/internal/http/middleware"
	"evconduit/internal/models"
	"evconduit/internal/repository"
	"evconduit/internal/service"
)

const defaultSessionLimit = 50

// NewSessionsMeHandler returns GET /sessions/me handler.
func NewSessionsMeHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user")
			return
		}

		limit := defaultSessionLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		sessions, err := svc.SessionsForUser(r.Context(), userID, limit, clientIP(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch sessions")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
			"total":    len(sessions),
		})
	}
}

// NewSessionGetHandler returns GET /sessions/get?session_id= handler.
func NewSessionGetHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user")
			return
		}
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "session_id required")
			return
		}

		view, err := svc.SessionForUser(r.Context(), sessionID, userID, clientIP(r))
		if errors.Is(err, repository.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch session")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// updateSessionRequest is the save payload plus the session it targets.
type updateSessionRequest struct {
	SessionID string `json:"session_id"`
	models.UpdateSessionData
}

// NewSessionUpdateHandler returns POST /sessions/update handler.
func NewSessionUpdateHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user")
			return
		}

		var req updateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.SessionID == "" {
			writeError(w, http.StatusBadRequest, "session_id required")
			return
		}

		updated, err := svc.UpdateSessionUserData(r.Context(), req.SessionID, userID, req.UpdateSessionData, clientIP(r))
		if errors.Is(err, repository.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			logger.Error("failed to update session", zap.String("session_id", req.SessionID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update session")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}
