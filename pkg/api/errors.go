package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rostra-dev/rostra/pkg/engine"
	"github.com/rostra-dev/rostra/pkg/identity"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEngineError maps an engine/identity error to the status table in the
// error handling design: StaleHead is 409, bad identity material is 401,
// everything else from the engine is a 500. A secret that does not match
// the path id (403) is rejected earlier, by authenticate — callers
// are expected to validate request shape (400) themselves before invoking
// the engine.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrStaleHead):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrBadSecret), errors.Is(err, identity.ErrInvalidMnemonic):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
