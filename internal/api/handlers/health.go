package handlers

import (
	"net/http"
)

// Health is the liveness endpoint used by deploy checks.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{
		"status":  "ok",
		"service": "field-service-scheduler",
	}
	writeJSON(w, r, http.StatusOK, res)
}
