package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"orgmatrix/pkg/domain"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps rule violations to 409 and everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var rve domain.RuleViolationError
	if errors.As(err, &rve) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      rve.Error(),
			"violations": rve.Result.Violations,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
