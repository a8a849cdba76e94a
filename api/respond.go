package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"shuttle-tracker/fleet"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFleetError maps core error kinds onto status codes. Unexpected
// failures get a generic body; the detail goes to the log, not the caller.
func writeFleetError(w http.ResponseWriter, err error) {
	var verr *fleet.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, fleet.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
