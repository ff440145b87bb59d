package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/store"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic retries when another writer touches the
// preference document between read and write.
const maxTxRetries = 5

// Store keeps the preference document and usage counters in Redis
type Store struct {
	client *redis.Client
	logger logger.Logger
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log.Named("prefs-redis"),
	}
}

// LoadShortcuts returns the shortcut member of the stored document, or
// nil, nil when nothing was stored
func (s *Store) LoadShortcuts(ctx context.Context) (*domain.ShortcutConfig, error) {
	data, err := s.document(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return store.DecodeShortcuts(data)
}

// SaveShortcuts rewrites the shortcut member and keeps the rest
func (s *Store) SaveShortcuts(ctx context.Context, cfg domain.ShortcutConfig) error {
	return s.update(ctx, func(data []byte) ([]byte, error) {
		return store.MergeShortcuts(data, cfg)
	})
}

// Preferences returns the whole document
func (s *Store) Preferences(ctx context.Context) (*domain.Preferences, error) {
	data, err := s.document(ctx, s.client)
	if err != nil {
		return nil, err
	}
	return store.DecodePreferences(data)
}

// SavePreferences writes the folder and setup members of prefs
func (s *Store) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	return s.update(ctx, func(data []byte) ([]byte, error) {
		return store.MergePreferences(data, prefs)
	})
}

func (s *Store) document(ctx context.Context, c redis.Cmdable) ([]byte, error) {
	data, err := c.Get(ctx, PreferencesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return data, nil
}

// update runs a read-modify-write of the document under WATCH so concurrent
// writers never lose each other's members.
func (s *Store) update(ctx context.Context, fn func([]byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		data, err := s.document(ctx, tx)
		if err != nil {
			return err
		}
		if cerr := store.Check(data); cerr != nil {
			s.logger.Warn("preferences document is malformed, starting from an empty one",
				logger.String("key", PreferencesKey()),
				logger.Error(cerr))
			data = nil
		}
		out, err := fn(data)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, PreferencesKey(), out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, PreferencesKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to save preferences: %w", redis.TxFailedErr)
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
