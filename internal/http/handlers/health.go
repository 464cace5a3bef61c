package handlers

import "net/http"

// Health reports liveness and whether a model credential is configured.
func Health(modelConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"model_configured": modelConfigured,
		})
	}
}
