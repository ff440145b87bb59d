package shortcuts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
)

var (
	ErrRuleNotFound = errors.New("shortcut not found")
	ErrBuiltinRule  = errors.New("built-in shortcuts can only be reset or disabled")
)

// DefaultPushTimeout bounds one push of the global bindings.
const DefaultPushTimeout = 5 * time.Second

// Persister reads and writes the shortcut document. Load returns nil, nil
// when nothing was ever saved. Save must be all-or-nothing.
type Persister interface {
	LoadShortcuts(ctx context.Context) (*domain.ShortcutConfig, error)
	SaveShortcuts(ctx context.Context, cfg domain.ShortcutConfig) error
}

// Registrar receives the enabled global bindings after every change.
type Registrar interface {
	Sync(ctx context.Context, bindings []domain.GlobalBinding) error
}

// Store owns the shortcut rule collection. Mutations are queued on one
// mutex held from compute to commit, so each one sees the result of the
// previous. Readers always get copies.
type Store struct {
	queue sync.Mutex

	mu         sync.RWMutex
	cfg        domain.ShortcutConfig
	conflicts  map[string][]string
	fromDisk   bool
	lastCustom int64

	persister Persister
	registrar Registrar
	logger    logger.Logger
	now       func() time.Time

	pushTimeout time.Duration
	pushes      sync.WaitGroup

	// pushGen numbers pushes in commit order (written under queue).
	// pushMu serialises registrar calls; applied is the newest generation
	// handed to the registrar.
	pushGen uint64
	pushMu  sync.Mutex
	applied uint64
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, used for custom ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPushTimeout bounds each registrar push.
func WithPushTimeout(d time.Duration) Option {
	return func(s *Store) { s.pushTimeout = d }
}

// NewStore creates a store holding the compiled-in defaults. Call Load to
// pick up the persisted document. registrar may be nil.
func NewStore(p Persister, r Registrar, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		cfg:         domain.DefaultShortcutConfig(),
		persister:   p,
		registrar:   r,
		logger:      log,
		now:         time.Now,
		pushTimeout: DefaultPushTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conflicts = domain.DetectConflicts(s.cfg.Shortcuts)
	return s
}

// Load reads the persisted document. A missing, unreadable or invalid
// document leaves the defaults in place and is only logged. The global
// bindings are pushed either way.
func (s *Store) Load(ctx context.Context) {
	s.queue.Lock()
	defer s.queue.Unlock()

	cfg := domain.DefaultShortcutConfig()
	fromDisk := false

	loaded, err := s.persister.LoadShortcuts(ctx)
	switch {
	case err != nil:
		s.logger.Warn("failed to load shortcuts, using defaults", logger.Error(err))
	case loaded == nil:
		s.logger.Info("no saved shortcuts, using defaults")
	default:
		if verr := loaded.Validate(); verr != nil {
			s.logger.Warn("invalid saved shortcuts, using defaults", logger.Error(verr))
			break
		}
		cfg = cloneConfig(*loaded)
		if cfg.ConflictResolution == "" {
			cfg.ConflictResolution = domain.ResolutionWarn
		}
		fromDisk = true
	}

	s.commit(cfg)
	s.mu.Lock()
	s.fromDisk = fromDisk
	s.mu.Unlock()
	s.seedCustomToken(cfg.Shortcuts)

	s.logger.Info("shortcuts loaded",
		logger.Int("count", len(cfg.Shortcuts)),
		logger.Bool("persisted", fromDisk),
		logger.Int("conflicts", len(s.Conflicts())))

	s.push(cfg.Shortcuts)
}

// Rules returns a copy of the current rule collection.
func (s *Store) Rules() []domain.ShortcutRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRules(s.cfg.Shortcuts)
}

// Snapshot returns a copy of the whole shortcut document.
func (s *Store) Snapshot() domain.ShortcutConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneConfig(s.cfg)
}

// Get returns a copy of one rule.
func (s *Store) Get(id string) (domain.ShortcutRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.cfg.Shortcuts, id); i >= 0 {
		return s.cfg.Shortcuts[i].Clone(), true
	}
	return domain.ShortcutRule{}, false
}

// Conflicts returns the conflict groups of the current collection.
func (s *Store) Conflicts() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.conflicts))
	for k, ids := range s.conflicts {
		out[k] = append([]string(nil), ids...)
	}
	return out
}

// ConflictResolution returns the configured conflict policy.
func (s *Store) ConflictResolution() domain.ConflictResolution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg.ConflictResolution
}

// Persisted reports whether the collection came from the persister.
func (s *Store) Persisted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fromDisk
}

// Update rebinds rule id to hotkey.
func (s *Store) Update(ctx context.Context, id string, hotkey domain.Hotkey) error {
	if err := hotkey.Validate(); err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", hotkey.String(), err)
	}
	return s.mutate(ctx, "update", func(cfg *domain.ShortcutConfig) error {
		i := indexOf(cfg.Shortcuts, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
		}
		cfg.Shortcuts[i].Hotkey = hotkey.Clone()
		return nil
	})
}

// Reset restores the compiled-in version of rule id. It is a no-op for
// ids without a default and for defaults no longer in the collection.
func (s *Store) Reset(ctx context.Context, id string) error {
	def, ok := domain.DefaultShortcut(id)
	if !ok {
		return nil
	}
	return s.mutate(ctx, "reset", func(cfg *domain.ShortcutConfig) error {
		i := indexOf(cfg.Shortcuts, id)
		if i < 0 {
			return errNoChange
		}
		cfg.Shortcuts[i] = def
		return nil
	})
}

// AddCustom appends a user rule under a fresh custom-<millis> id and
// returns it as stored.
func (s *Store) AddCustom(ctx context.Context, rule domain.ShortcutRule) (domain.ShortcutRule, error) {
	var added domain.ShortcutRule
	err := s.mutate(ctx, "add", func(cfg *domain.ShortcutConfig) error {
		added = rule.Clone()
		added.ID = s.nextCustomID()
		added.IsCustom = true
		if err := added.Validate(); err != nil {
			return err
		}
		cfg.Shortcuts = append(cfg.Shortcuts, added)
		return nil
	})
	if err != nil {
		return domain.ShortcutRule{}, err
	}
	return added, nil
}

// Remove deletes a custom rule.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove", func(cfg *domain.ShortcutConfig) error {
		i := indexOf(cfg.Shortcuts, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
		}
		if !cfg.Shortcuts[i].IsCustom {
			return fmt.Errorf("%w: %s", ErrBuiltinRule, id)
		}
		cfg.Shortcuts = append(cfg.Shortcuts[:i], cfg.Shortcuts[i+1:]...)
		return nil
	})
}

// Toggle enables or disables rule id.
func (s *Store) Toggle(ctx context.Context, id string, enabled bool) error {
	return s.mutate(ctx, "toggle", func(cfg *domain.ShortcutConfig) error {
		i := indexOf(cfg.Shortcuts, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
		}
		cfg.Shortcuts[i].Enabled = enabled
		return nil
	})
}

// SetConflictResolution stores the conflict policy.
func (s *Store) SetConflictResolution(ctx context.Context, r domain.ConflictResolution) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidResolution, r)
	}
	return s.mutate(ctx, "resolution", func(cfg *domain.ShortcutConfig) error {
		cfg.ConflictResolution = r
		return nil
	})
}

// Wait blocks until every pending registrar push finished.
func (s *Store) Wait() {
	s.pushes.Wait()
}

var errNoChange = errors.New("no change")

// mutate runs one queued mutation: apply fn to a copy, persist the copy,
// and only then commit it. A persist failure leaves the store untouched.
func (s *Store) mutate(ctx context.Context, op string, fn func(cfg *domain.ShortcutConfig) error) error {
	s.queue.Lock()
	defer s.queue.Unlock()

	s.mu.RLock()
	next := cloneConfig(s.cfg)
	s.mu.RUnlock()

	if err := fn(&next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	if err := s.persister.SaveShortcuts(ctx, cloneConfig(next)); err != nil {
		s.logger.Error("failed to persist shortcuts",
			logger.String("op", op),
			logger.Error(err))
		return fmt.Errorf("failed to persist shortcuts: %w", err)
	}

	s.commit(next)
	s.mu.Lock()
	s.fromDisk = true
	s.mu.Unlock()

	s.logger.Debug("shortcuts updated",
		logger.String("op", op),
		logger.Int("count", len(next.Shortcuts)))

	s.push(next.Shortcuts)
	return nil
}

func (s *Store) commit(cfg domain.ShortcutConfig) {
	conflicts := domain.DetectConflicts(cfg.Shortcuts)

	s.mu.Lock()
	s.cfg = cfg
	s.conflicts = conflicts
	s.mu.Unlock()

	for key, ids := range conflicts {
		s.logger.Debug("shortcut conflict",
			logger.String("hotkey", key),
			logger.Strings("ids", ids))
	}
}

// push hands the enabled global bindings to the registrar in the
// background. Its failure is logged and never rolls anything back.
// Sync replaces the whole table, so a push that reaches the registrar
// after a newer one is dropped. Caller holds queue.
func (s *Store) push(rules []domain.ShortcutRule) {
	if s.registrar == nil {
		return
	}
	bindings := domain.GlobalBindings(rules)
	s.pushGen++
	gen := s.pushGen

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		s.pushMu.Lock()
		defer s.pushMu.Unlock()
		if gen <= s.applied {
			s.logger.Debug("stale global shortcut push dropped",
				logger.Uint64("generation", gen),
				logger.Uint64("applied", s.applied))
			return
		}
		s.applied = gen

		ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
		defer cancel()

		if err := s.registrar.Sync(ctx, bindings); err != nil {
			s.logger.Warn("failed to register global shortcuts",
				logger.Int("count", len(bindings)),
				logger.Error(err))
			return
		}
		s.logger.Debug("global shortcuts registered", logger.Int("count", len(bindings)))
	}()
}

// nextCustomID returns custom-<unix millis>, bumped past the last issued
// token so two adds in the same millisecond still differ. Caller holds queue.
func (s *Store) nextCustomID() string {
	token := s.now().UnixMilli()
	if token <= s.lastCustom {
		token = s.lastCustom + 1
	}
	s.lastCustom = token
	return domain.CustomShortcutPrefix + strconv.FormatInt(token, 10)
}

// seedCustomToken keeps new custom ids above the ones already stored.
func (s *Store) seedCustomToken(rules []domain.ShortcutRule) {
	for _, r := range rules {
		if !strings.HasPrefix(r.ID, domain.CustomShortcutPrefix) {
			continue
		}
		token, err := strconv.ParseInt(strings.TrimPrefix(r.ID, domain.CustomShortcutPrefix), 10, 64)
		if err == nil && token > s.lastCustom {
			s.lastCustom = token
		}
	}
}

func indexOf(rules []domain.ShortcutRule, id string) int {
	for i, r := range rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRules(rules []domain.ShortcutRule) []domain.ShortcutRule {
	out := make([]domain.ShortcutRule, len(rules))
	for i, r := range rules {
		out[i] = r.Clone()
	}
	return out
}

func cloneConfig(cfg domain.ShortcutConfig) domain.ShortcutConfig {
	return domain.ShortcutConfig{
		Shortcuts:          cloneRules(cfg.Shortcuts),
		ConflictResolution: cfg.ConflictResolution,
	}
}
