package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/hotkeys"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
)

type globalResponse struct {
	Bindings   []domain.GlobalBinding `json:"bindings"`
	Registered []hotkeys.Binding      `json:"registered"`
}

// GlobalHotkeys shows the enabled global rules next to what the hotkey
// registry actually holds; a difference means a registration failed.
func GlobalHotkeys(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bindings := domain.GlobalBindings(d.Shortcuts.Rules())
		if bindings == nil {
			bindings = []domain.GlobalBinding{}
		}
		registered := d.Hotkeys.Registered()
		if registered == nil {
			registered = []hotkeys.Binding{}
		}
		writeJSON(w, http.StatusOK, globalResponse{Bindings: bindings, Registered: registered})
	}
}

type triggerRequest struct {
	Hotkey string `json:"hotkey"`
}

type triggerResponse struct {
	Handled bool `json:"handled"`
}

// TriggerHotkey is called by the desktop shell when the OS reports a
// global hotkey press.
func TriggerHotkey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triggerRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		handled, err := d.Hotkeys.Trigger(r.Context(), req.Hotkey)
		if err != nil {
			status := http.StatusBadGateway
			if !handled {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}
		status := http.StatusOK
		if !handled {
			status = http.StatusNotFound
		}
		writeJSON(w, status, triggerResponse{Handled: handled})
	}
}
