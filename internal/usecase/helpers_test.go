package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/group-stage/internal/platform/id"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

// stubLocker runs fn inline unless err is set, recording the keys requested.
type stubLocker struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (l *stubLocker) WithLock(ctx context.Context, key string, _ lock.Options, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	err := l.err
	l.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}

func (l *stubLocker) WithLocks(ctx context.Context, keys []string, opts lock.Options, fn func(ctx context.Context) error) error {
	if len(keys) == 0 {
		return fn(ctx)
	}
	return l.WithLock(ctx, keys[0], opts, func(ctx context.Context) error {
		return l.WithLocks(ctx, keys[1:], opts, fn)
	})
}

type roundChange struct {
	round  int
	groups []int
}

type recordingNotifier struct {
	mu      sync.Mutex
	rounds  []roundChange
	rosters [][]int
}

func (n *recordingNotifier) RoundChanged(_ context.Context, round int, groups []int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rounds = append(n.rounds, roundChange{round: round, groups: groups})
}

func (n *recordingNotifier) RosterChanged(_ context.Context, groups []int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rosters = append(n.rosters, groups)
}

type memoryFixture struct {
	store    *memory.Store
	teams    *memory.TeamRepository
	matches  *memory.MatchRepository
	locks    *lock.Service
	lockOpts lock.Options
	rules    tournament.Rules
	notifier *recordingNotifier
}

func newMemoryFixture() *memoryFixture {
	store := memory.NewStore()
	return &memoryFixture{
		store:   store,
		teams:   memory.NewTeamRepository(store),
		matches: memory.NewMatchRepository(store),
		locks: lock.NewService(
			lock.NewMemoryStore(),
			id.NewUUIDGenerator(),
			nil,
			lock.DefaultOptions(),
			logging.NewNop(),
		),
		lockOpts: lock.Options{TTL: 5 * time.Second, Timeout: 2 * time.Second, PollInterval: time.Millisecond},
		rules:    tournament.DefaultRules(),
		notifier: &recordingNotifier{},
	}
}

func (f *memoryFixture) matchService() *MatchService {
	return NewMatchService(f.teams, f.matches, f.locks, f.lockOpts, f.rules, f.notifier, logging.NewNop())
}

func (f *memoryFixture) teamService() *TeamService {
	return NewTeamService(f.teams, f.matches, f.locks, f.lockOpts, f.rules, f.notifier, logging.NewNop())
}

func (f *memoryFixture) standingService() *StandingService {
	return NewStandingService(f.teams, f.matches, f.rules)
}

func (f *memoryFixture) seed(teams ...team.Team) []team.Team {
	created, err := f.teams.Create(context.Background(), teams)
	if err != nil {
		panic(err)
	}
	return created
}

func intPtr(v int) *int {
	return &v
}
