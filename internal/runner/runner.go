// Package runner executes the action of a launcher command.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/kballard/go-shellquote"
	"github.com/mitchellh/go-homedir"
)

var (
	ErrCommandNotAllowed = errors.New("command not allowed")
	ErrEmptyCommand      = errors.New("empty command")
	ErrUnknownAction     = errors.New("unknown action")
)

// DefaultAllowList is the set of executables a shell action may start.
var DefaultAllowList = []string{
	"google-chrome-stable",
	"nautilus",
	"dolphin",
	"thunar",
	"nemo",
	"pcmanfm",
	"xdg-open",
	"open",
	"code",
	"cursor",
}

// Result is what the launcher shows after running a command.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Starter launches name with args and returns once the process started.
type Starter func(name string, args ...string) error

// Runner dispatches actions. Shell commands are checked against the
// allow-list and started detached; nothing waits for them to exit.
type Runner struct {
	allowed map[string]struct{}
	names   []string
	start   Starter
	goos    string
	logger  logger.Logger
}

// Option customises a Runner.
type Option func(*Runner)

// WithAllowList replaces DefaultAllowList.
func WithAllowList(names []string) Option {
	return func(r *Runner) {
		r.names = append([]string(nil), names...)
		r.allowed = make(map[string]struct{}, len(names))
		for _, n := range names {
			r.allowed[n] = struct{}{}
		}
	}
}

// WithStarter replaces the process starter.
func WithStarter(s Starter) Option {
	return func(r *Runner) { r.start = s }
}

// WithGOOS picks the platform opener for another OS.
func WithGOOS(goos string) Option {
	return func(r *Runner) { r.goos = goos }
}

// New creates a Runner.
func New(log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		start:  startDetached,
		goos:   runtime.GOOS,
		logger: log,
	}
	WithAllowList(DefaultAllowList)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allowed reports whether the first word of command names an allowed
// executable. Only the base name counts, so /usr/bin/code is code.
func (r *Runner) Allowed(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	_, ok := r.allowed[path.Base(fields[0])]
	return ok
}

// Run executes the action of cmd.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) (Result, error) {
	err := r.run(ctx, cmd.Action)
	if err != nil {
		r.logger.Warn("command failed",
			logger.String("id", cmd.ID),
			logger.String("kind", kindOf(cmd.Action)),
			logger.Error(err))
		return Result{Error: err.Error()}, err
	}

	r.logger.Info("command run",
		logger.String("id", cmd.ID),
		logger.String("kind", kindOf(cmd.Action)))

	out := Result{Success: true}
	if _, ok := cmd.Action.(domain.ShellAction); ok {
		out.Output = "Process started"
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, action domain.Action) error {
	switch a := action.(type) {
	case domain.ShellAction:
		return r.shell(a.Command)
	case domain.OpenAction:
		target, err := homedir.Expand(a.Path)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", a.Path, err)
		}
		return r.open(target)
	case domain.URLAction:
		return r.open(a.URL)
	case domain.FunctionAction:
		if a.Fn == nil {
			return fmt.Errorf("%w: function without callback", ErrUnknownAction)
		}
		return a.Fn(ctx)
	case domain.SubmenuAction, domain.InputAction, domain.DialogAction:
		// handled by the UI
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func (r *Runner) shell(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	if !r.Allowed(command) {
		return fmt.Errorf("%w: only these executables are permitted: %s",
			ErrCommandNotAllowed, strings.Join(r.names, ", "))
	}

	argv, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}
	for i := 1; i < len(argv); i++ {
		if expanded, err := homedir.Expand(argv[i]); err == nil {
			argv[i] = expanded
		}
	}

	if err := r.start(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return nil
}

// open hands target to the desktop's default handler.
func (r *Runner) open(target string) error {
	if target == "" {
		return ErrEmptyCommand
	}
	name, args := opener(r.goos)
	if err := r.start(name, append(args, target)...); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

func opener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

func kindOf(a domain.Action) string {
	if a == nil {
		return "none"
	}
	return string(a.Kind())
}

func startDetached(name string, args ...string) error {
	c := exec.Command(name, args...)
	if err := c.Start(); err != nil {
		return err
	}
	// reap the child once it exits
	go func() { _ = c.Wait() }()
	return nil
}
