package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/runner"
)

var (
	errCommandNotFound = errors.New("command not found")
	errNotInput        = errors.New("command does not take input")
)

type runResponse struct {
	runner.Result
	CloseAfterRun bool `json:"closeAfterRun"`
}

// RunCommand runs a catalog command by id. The runner result is always the
// body; the status tells allow-list rejections apart from failures.
func RunCommand(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		cmd, ok := d.Catalog.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errCommandNotFound, id))
			return
		}

		res, err := d.Runner.Run(r.Context(), cmd)
		body := runResponse{Result: res, CloseAfterRun: cmd.ShouldClose()}
		switch {
		case err == nil:
			recordUsage(r, d, id)
			writeJSON(w, http.StatusOK, body)
		case errors.Is(err, runner.ErrCommandNotAllowed), errors.Is(err, runner.ErrEmptyCommand):
			writeJSON(w, http.StatusForbidden, body)
		case errors.Is(err, runner.ErrUnknownAction):
			writeJSON(w, http.StatusUnprocessableEntity, body)
		default:
			writeJSON(w, http.StatusBadGateway, body)
		}
	}
}

type inputRequest struct {
	Value string `json:"value"`
}

// SubmitInput hands free text to an input command.
func SubmitInput(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		cmd, ok := d.Catalog.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errCommandNotFound, id))
			return
		}
		action, ok := cmd.Action.(domain.InputAction)
		if !ok || action.OnSubmit == nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("%w: %s", errNotInput, id))
			return
		}

		var req inputRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if err := action.OnSubmit(r.Context(), strings.TrimSpace(req.Value)); err != nil {
			d.Logger.Warn("input command failed", logger.String("id", id), logger.Error(err))
			writeJSON(w, http.StatusBadGateway, runResponse{Result: runner.Result{Error: err.Error()}})
			return
		}
		recordUsage(r, d, id)
		writeJSON(w, http.StatusOK, runResponse{Result: runner.Result{Success: true}, CloseAfterRun: cmd.ShouldClose()})
	}
}

// recordUsage is best effort; a counter failure never fails the run.
func recordUsage(r *http.Request, d deps.Deps, id string) {
	if d.Usage == nil {
		return
	}
	if err := d.Usage.IncrementUsage(r.Context(), id); err != nil {
		d.Logger.Debug("failed to record usage", logger.String("id", id), logger.Error(err))
	}
}
