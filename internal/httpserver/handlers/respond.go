package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

// maxBody caps request bodies; every payload the API accepts is tiny.
const maxBody = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

var errBadBody = errors.New("invalid request body")

// decode reads one JSON value into v. An empty body is an error.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadBody, err)
	}
	return nil
}

// badRequest logs at debug and answers 400.
func badRequest(w http.ResponseWriter, log logger.Logger, err error) {
	log.Debug("rejected request body", logger.Error(err))
	writeError(w, http.StatusBadRequest, err)
}
