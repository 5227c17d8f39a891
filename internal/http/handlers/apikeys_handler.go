package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"evconduit/internal/apikey"
	"evconduit/internal/http/middleware"
)

type createKeyRequest struct {
	Name string `json:"name"`
}

// NewAPIKeyCreateHandler returns POST /keys handler. The plaintext key appears in
// the response exactly once and is never stored.
func NewAPIKeyCreateHandler(svc *apikey.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user")
			return
		}

		var req createKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name required")
			return
		}

		plaintext, record, err := svc.Issue(r.Context(), userID, req.Name)
		if err != nil {
			logger.Error("failed to issue api key", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to issue key")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"key":    plaintext,
			"record": record,
		})
	}
}
