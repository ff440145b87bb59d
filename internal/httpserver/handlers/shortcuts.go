package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/shortcuts"
)

var errBadHotkey = errors.New("hotkey must be a string like \"Control+K\" or {modifiers, key}")

var validationErrors = []error{
	domain.ErrEmptyKey,
	domain.ErrKeyTooLong,
	domain.ErrKeyIsModifier,
	domain.ErrUnknownModifier,
	domain.ErrInvalidShortcutType,
	domain.ErrInvalidShortcutContext,
	domain.ErrInvalidResolution,
	domain.ErrEmptyShortcutID,
	errBadHotkey,
}

// shortcutStatus maps store errors onto HTTP statuses.
func shortcutStatus(err error) int {
	switch {
	case errors.Is(err, shortcuts.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, shortcuts.ErrBuiltinRule):
		return http.StatusConflict
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// decodeHotkey accepts the serialized string form or the object form.
// Unknown modifiers in the string form are dropped and logged.
func decodeHotkey(raw json.RawMessage, log logger.Logger) (domain.Hotkey, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.Hotkey{}, errBadHotkey
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.Hotkey{}, errors.Join(errBadHotkey, err)
		}
		hk, dropped, ok := domain.ParseHotkeyLenient(s)
		if !ok {
			return domain.Hotkey{}, fmt.Errorf("%w: %q", errBadHotkey, s)
		}
		if len(dropped) > 0 {
			log.Warn("dropped unknown hotkey modifiers",
				logger.String("hotkey", s),
				logger.Strings("dropped", dropped))
		}
		return hk, nil
	}

	var hk domain.Hotkey
	if err := json.Unmarshal(raw, &hk); err != nil {
		return domain.Hotkey{}, errors.Join(errBadHotkey, err)
	}
	if err := hk.Validate(); err != nil {
		return domain.Hotkey{}, err
	}
	return hk, nil
}

type shortcutsResponse struct {
	Shortcuts          []domain.ShortcutRule     `json:"shortcuts"`
	ConflictResolution domain.ConflictResolution `json:"conflictResolution"`
	Persisted          bool                      `json:"persisted"`
}

func ListShortcuts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Shortcuts.Snapshot()
		writeJSON(w, http.StatusOK, shortcutsResponse{
			Shortcuts:          snap.Shortcuts,
			ConflictResolution: snap.ConflictResolution,
			Persisted:          d.Shortcuts.Persisted(),
		})
	}
}

type conflict struct {
	Hotkey string   `json:"hotkey"`
	IDs    []string `json:"ids"`
}

// Conflicts lists conflicting groups sorted by hotkey.
func Conflicts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups := d.Shortcuts.Conflicts()
		out := make([]conflict, 0, len(groups))
		for key, ids := range groups {
			out = append(out, conflict{Hotkey: key, IDs: ids})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Hotkey < out[j].Hotkey })
		writeJSON(w, http.StatusOK, out)
	}
}

type customRequest struct {
	Hotkey      json.RawMessage        `json:"hotkey"`
	Description string                 `json:"description"`
	Action      string                 `json:"action"`
	Type        domain.ShortcutType    `json:"type"`
	Context     domain.ShortcutContext `json:"context"`
	Enabled     *bool                  `json:"enabled"`
}

// AddShortcut stores a custom command rule. Type and context default to
// command and launcher.
func AddShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		hk, err := decodeHotkey(req.Hotkey, d.Logger)
		if err != nil {
			badRequest(w, d.Logger, err)
			return
		}

		rule := domain.ShortcutRule{
			Type:        req.Type,
			Context:     req.Context,
			Hotkey:      hk,
			Description: req.Description,
			Action:      req.Action,
			Enabled:     req.Enabled == nil || *req.Enabled,
		}
		if rule.Type == "" {
			rule.Type = domain.ShortcutCommand
		}
		if rule.Context == "" {
			rule.Context = domain.ContextLauncher
		}

		added, err := d.Shortcuts.AddCustom(r.Context(), rule)
		if err != nil {
			writeError(w, shortcutStatus(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	}
}

type hotkeyRequest struct {
	Hotkey json.RawMessage `json:"hotkey"`
}

func UpdateShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hotkeyRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		hk, err := decodeHotkey(req.Hotkey, d.Logger)
		if err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		id := chi.URLParam(r, "id")
		respondRule(w, d, id, d.Shortcuts.Update(r.Context(), id, hk))
	}
}

func ResetShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		respondRule(w, d, id, d.Shortcuts.Reset(r.Context(), id))
	}
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

var errMissingEnabled = errors.New("enabled is required")

func ToggleShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if req.Enabled == nil {
			badRequest(w, d.Logger, errMissingEnabled)
			return
		}
		id := chi.URLParam(r, "id")
		respondRule(w, d, id, d.Shortcuts.Toggle(r.Context(), id, *req.Enabled))
	}
}

func DeleteShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Shortcuts.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, shortcutStatus(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type resolutionRequest struct {
	ConflictResolution domain.ConflictResolution `json:"conflictResolution"`
}

func SetResolution(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolutionRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if err := d.Shortcuts.SetConflictResolution(r.Context(), req.ConflictResolution); err != nil {
			writeError(w, shortcutStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resolutionRequest{ConflictResolution: d.Shortcuts.ConflictResolution()})
	}
}

// respondRule answers a single-rule mutation with the rule as stored.
func respondRule(w http.ResponseWriter, d deps.Deps, id string, err error) {
	if err != nil {
		writeError(w, shortcutStatus(err), err)
		return
	}
	rule, ok := d.Shortcuts.Get(id)
	if !ok {
		// reset of an id that has no rule is a no-op
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}
