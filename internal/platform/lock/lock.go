package lock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/group-stage/internal/platform/id"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
	"github.com/riskibarqy/group-stage/internal/platform/resilience"
)

// Keys guarding the two independent write paths.
const (
	TeamRosterKey   = "team_lock"
	MatchResultsKey = "match_lock"
)

const releaseTimeout = 2 * time.Second

var ErrNotAcquired = errors.New("lock not acquired")

// Store is an atomic key-value backend with expiring keys.
type Store interface {
	// SetNX stores value under key with ttl only when key is absent.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// CompareAndDelete removes key only while it still holds value.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

type Options struct {
	TTL          time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		TTL:          5 * time.Second,
		Timeout:      time.Second,
		PollInterval: 50 * time.Millisecond,
	}
}

func (o Options) withDefaults(defaults Options) Options {
	if o.TTL <= 0 {
		o.TTL = defaults.TTL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.PollInterval > o.Timeout {
		o.PollInterval = o.Timeout
	}
	return o
}

// Lease is proof of ownership of a held lock. Only the holder of the lease
// can release the lock, and only once.
type Lease struct {
	key        string
	token      string
	acquiredAt time.Time
	ttl        time.Duration
	released   atomic.Bool
}

func (l *Lease) Key() string {
	return l.key
}

func (l *Lease) Token() string {
	return l.token
}

// ExpiresAt is when the backend drops the lock if it is never released.
func (l *Lease) ExpiresAt() time.Time {
	return l.acquiredAt.Add(l.ttl)
}

type Service struct {
	store    Store
	tokens   id.Generator
	breaker  *resilience.CircuitBreaker
	defaults Options
	logger   *logging.Logger
	now      func() time.Time
}

func NewService(store Store, tokens id.Generator, breaker *resilience.CircuitBreaker, defaults Options, logger *logging.Logger) *Service {
	if tokens == nil {
		tokens = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Service{
		store:    store,
		tokens:   tokens,
		breaker:  breaker,
		defaults: defaults.withDefaults(DefaultOptions()),
		logger:   logger,
		now:      time.Now,
	}
}

// Acquire polls until it owns key or opts.Timeout elapses. Backend errors and
// an open breaker fail immediately; both wrap ErrNotAcquired.
func (s *Service) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, fmt.Errorf("lock key is required")
	}
	opts = opts.withDefaults(s.defaults)

	token, err := s.tokens.NewID()
	if err != nil {
		return nil, fmt.Errorf("%w: generate token: %w", ErrNotAcquired, err)
	}

	deadline := s.now().Add(opts.Timeout)
	for attempt := 1; ; attempt++ {
		var ok bool
		err := s.breaker.Execute(ctx, func(ctx context.Context) error {
			var setErr error
			ok, setErr = s.store.SetNX(ctx, key, token, opts.TTL)
			return setErr
		})
		if err != nil {
			s.logger.WarnContext(ctx, "lock acquire failed", "key", key, "attempt", attempt, "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
		}
		if ok {
			return &Lease{
				key:        key,
				token:      token,
				acquiredAt: s.now(),
				ttl:        opts.TTL,
			}, nil
		}

		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			s.logger.InfoContext(ctx, "lock acquire timed out", "key", key, "attempts", attempt, "timeout", opts.Timeout)
			return nil, fmt.Errorf("%w: %s held by another owner after %s", ErrNotAcquired, key, opts.Timeout)
		}

		wait := time.NewTimer(min(opts.PollInterval, remaining))
		select {
		case <-ctx.Done():
			wait.Stop()
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
		case <-wait.C:
		}
	}
}

// Release deletes the lock if the lease still owns it. It reports whether the
// lock was deleted; backend errors are logged, never returned.
func (s *Service) Release(ctx context.Context, lease *Lease) bool {
	if lease == nil || !lease.released.CompareAndSwap(false, true) {
		return false
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	deleted, err := s.store.CompareAndDelete(releaseCtx, lease.key, lease.token)
	if err != nil {
		s.logger.ErrorContext(ctx, "lock release failed", "key", lease.key, "error", err)
		return false
	}
	if !deleted {
		s.logger.WarnContext(ctx, "lock expired before release", "key", lease.key, "held_for", s.now().Sub(lease.acquiredAt))
	}
	return deleted
}

// WithLock runs fn while holding key. The lock is released exactly once on
// every exit path, panics included.
func (s *Service) WithLock(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := s.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer s.Release(ctx, lease)

	return fn(ctx)
}

// WithLocks acquires keys in the given order and releases them in reverse.
// Callers must pass keys in a fixed global order.
func (s *Service) WithLocks(ctx context.Context, keys []string, opts Options, fn func(ctx context.Context) error) error {
	if len(keys) == 0 {
		return fn(ctx)
	}
	return s.WithLock(ctx, keys[0], opts, func(ctx context.Context) error {
		return s.WithLocks(ctx, keys[1:], opts, fn)
	})
}
