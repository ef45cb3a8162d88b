package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/group-stage/internal/domain/standing"
	"github.com/riskibarqy/group-stage/internal/domain/subscription"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

const defaultBroadcastTimeout = 5 * time.Second

// StandingsReader computes group tables for a round.
type StandingsReader interface {
	GetStandings(ctx context.Context, round int, group *int, qualifyingCount int) ([]standing.GroupRanking, error)
}

// Broadcaster recomputes live views after committed writes and hands them to
// a publisher. Work runs on a bounded pool detached from the request; when
// the pool is saturated the notification is dropped and logged.
type Broadcaster struct {
	standings StandingsReader
	teamRepo  team.Repository
	publisher subscription.Publisher
	rules     tournament.Rules
	pool      *ants.Pool
	timeout   time.Duration
	logger    *logging.Logger
	inflight  sync.WaitGroup
}

func NewBroadcaster(
	standings StandingsReader,
	teamRepo team.Repository,
	publisher subscription.Publisher,
	rules tournament.Rules,
	workers int,
	timeout time.Duration,
	logger *logging.Logger,
) (*Broadcaster, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = defaultBroadcastTimeout
	}

	workerPool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create broadcast pool: %w", err)
	}

	return &Broadcaster{
		standings: standings,
		teamRepo:  teamRepo,
		publisher: publisher,
		rules:     rules,
		pool:      workerPool,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

func (b *Broadcaster) RoundChanged(ctx context.Context, round int, groups []int) {
	b.submit(ctx, "round", func(ctx context.Context) error {
		return b.PublishRound(ctx, round, groups)
	})
}

func (b *Broadcaster) RosterChanged(ctx context.Context, groups []int) {
	b.submit(ctx, "roster", func(ctx context.Context) error {
		if err := b.PublishRoster(ctx); err != nil {
			return err
		}
		var errs []error
		for _, round := range b.rules.Rounds() {
			if err := b.PublishRound(ctx, round, groups); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// PublishRound recomputes and publishes the tables of groups for round, one
// group per goroutine. Nil groups means every group.
func (b *Broadcaster) PublishRound(ctx context.Context, round int, groups []int) error {
	if groups == nil {
		groups = b.rules.Groups()
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, group := range groups {
		p.Go(func(ctx context.Context) error {
			rankings, err := b.standings.GetStandings(ctx, round, &group, DefaultQualifyingCount)
			if err != nil {
				return fmt.Errorf("standings round %d group %d: %w", round, group, err)
			}
			for _, ranking := range rankings {
				topic := subscription.StandingsTopic(round, ranking.Group)
				if err := b.publisher.Publish(ctx, topic, ranking); err != nil {
					return fmt.Errorf("publish %s: %w", topic, err)
				}
			}
			return nil
		})
	}
	return p.Wait()
}

// PublishRoster publishes the full team list.
func (b *Broadcaster) PublishRoster(ctx context.Context) error {
	teams, err := b.teamRepo.ListByGroup(ctx, nil)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if err := b.publisher.Publish(ctx, subscription.TeamsTopic(), teams); err != nil {
		return fmt.Errorf("publish %s: %w", subscription.TeamsTopic(), err)
	}
	return nil
}

// Close waits for queued notifications, bounded by ctx, and stops the pool.
func (b *Broadcaster) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	defer b.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait broadcasts: %w", ctx.Err())
	}
}

func (b *Broadcaster) submit(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)

	b.inflight.Add(1)
	err := b.pool.Submit(func() {
		defer b.inflight.Done()

		runCtx, cancel := context.WithTimeout(detached, b.timeout)
		defer cancel()
		if err := fn(runCtx); err != nil {
			b.logger.WarnContext(runCtx, "broadcast failed", "kind", kind, "error", err)
		}
	})
	if err != nil {
		b.inflight.Done()
		b.logger.WarnContext(ctx, "broadcast dropped", "kind", kind, "error", err)
	}
}
