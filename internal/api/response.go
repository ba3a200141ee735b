package api

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"github.com/highpoint-ops/gearlog/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("error encoding response: %v", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store failure onto an HTTP status: validation 400 with
// the problem list, not-found 404, integrity conflict 409, anything else a
// logged 500 with the generic fallback message.
func storeError(w http.ResponseWriter, err error, fallback string) {
	if v := model.AsValidation(err); v != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":    v.Error(),
			"problems": v.Problems,
		})
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, model.ErrIntegrity) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	slog.Error(fallback, "error", err)
	jsonError(w, http.StatusInternalServerError, fallback)
}
