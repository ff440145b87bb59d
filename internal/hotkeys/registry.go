// Package hotkeys keeps the set of global bindings the desktop shell must
// grab. The shell polls or is pushed Registered() and performs the OS-level
// registration itself.
package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

var ErrInvalidHotkey = errors.New("invalid global hotkey")

// Handler runs when a registered binding fires.
type Handler func(ctx context.Context) error

// Binding is one registered global hotkey.
type Binding struct {
	ID     string        `json:"id"`
	Hotkey domain.Hotkey `json:"hotkey"`
	Label  string        `json:"label"`
	Action string        `json:"action"`
}

// Registry is the in-process global hotkey table.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
	handlers map[string]Handler
	logger   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   log,
	}
}

// Handle installs the handler for an action tag.
func (r *Registry) Handle(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// Sync drops every binding, then registers bindings in order. An
// unparsable hotkey stops the sync; bindings before it stay registered.
func (r *Registry) Sync(ctx context.Context, bindings []domain.GlobalBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings = r.bindings[:0]
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return err
		}
		hk, dropped, ok := domain.ParseHotkeyLenient(b.Hotkey)
		if len(dropped) > 0 {
			r.logger.Warn("dropping unknown hotkey modifiers",
				logger.String("id", b.ID),
				logger.String("hotkey", b.Hotkey),
				logger.Strings("dropped", dropped))
		}
		if !ok {
			return fmt.Errorf("%w: %s: %q", ErrInvalidHotkey, b.ID, b.Hotkey)
		}
		r.bindings = append(r.bindings, Binding{
			ID:     b.ID,
			Hotkey: hk,
			Label:  hk.String(),
			Action: b.Action,
		})
	}

	r.logger.Info("global hotkeys synced", logger.Int("count", len(r.bindings)))
	return nil
}

// Registered returns a copy of the current bindings.
func (r *Registry) Registered() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Binding, len(r.bindings))
	for i, b := range r.bindings {
		b.Hotkey = b.Hotkey.Clone()
		out[i] = b
	}
	return out
}

// Trigger runs the handler of the binding registered for hotkey, as the
// shell reports it ("Super+Space"). It returns false when nothing is bound.
func (r *Registry) Trigger(ctx context.Context, hotkey string) (bool, error) {
	hk, ok := domain.ParseHotkey(strings.TrimSpace(hotkey))
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidHotkey, hotkey)
	}

	r.mu.RLock()
	var handler Handler
	var id string
	for _, b := range r.bindings {
		if b.Hotkey.Equal(hk) {
			handler = r.handlers[b.Action]
			id = b.ID
			break
		}
	}
	r.mu.RUnlock()

	if id == "" {
		return false, nil
	}
	if handler == nil {
		r.logger.Debug("no handler for global hotkey", logger.String("id", id))
		return true, nil
	}
	return true, handler(ctx)
}
