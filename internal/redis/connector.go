package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidOptions is returned before any dial attempt when the retry
// policy cannot work.
var ErrInvalidOptions = errors.New("invalid redis options")

// Options describes the preference backend connection and its retry policy.
type Options struct {
	Addr     string
	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	// ConnectTimeout bounds the whole connect loop. Waits start at
	// RetryInterval and double up to MaxWait.
	ConnectTimeout time.Duration
	RetryInterval  time.Duration
	MaxWait        time.Duration
	PingTimeout    time.Duration
}

func (o Options) validate() error {
	switch {
	case o.Addr == "":
		return fmt.Errorf("%w: empty address", ErrInvalidOptions)
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("%w: connect timeout must be > 0, got %v", ErrInvalidOptions, o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("%w: retry interval must be > 0, got %v", ErrInvalidOptions, o.RetryInterval)
	case o.MaxWait < o.RetryInterval:
		return fmt.Errorf("%w: max wait %v below retry interval %v", ErrInvalidOptions, o.MaxWait, o.RetryInterval)
	case o.PingTimeout <= 0:
		return fmt.Errorf("%w: ping timeout must be > 0, got %v", ErrInvalidOptions, o.PingTimeout)
	}
	return nil
}

// backoff yields the wait before each retry.
type backoff struct {
	next time.Duration
	max  time.Duration
}

func (b *backoff) wait() time.Duration {
	w := b.next
	b.next = min(b.next*2, b.max)
	return w
}

// Connect dials Redis and pings it until it answers or ConnectTimeout
// runs out. The launcher keeps working on the file backend without Redis,
// so callers decide whether a failure is fatal.
func Connect(ctx context.Context, opts Options, log logger.Logger) (*redis.Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	log = log.With(logger.String("addr", opts.Addr))
	log.Info("connecting to redis", logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	b := &backoff{next: opts.RetryInterval, max: opts.MaxWait}
	for attempt := 1; ; attempt++ {
		err := ping(ctx, client, opts.PingTimeout)
		if err == nil {
			log.Info("connected to redis",
				logger.Int("attempts", attempt),
				logger.Duration("elapsed", time.Since(start)))
			return client, nil
		}

		wait := b.wait()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = client.Close()
			log.Error("redis unavailable", logger.Int("attempts", attempt), logger.Error(err))
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
			log.Warn("redis connection failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err))
		}
	}
}

func ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(pingCtx).Err()
}
