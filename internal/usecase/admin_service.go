package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

type AdminService struct {
	teamRepo  team.Repository
	matchRepo match.Repository
	locker    Locker
	lockOpts  lock.Options
	notifier  ChangeNotifier
	logger    *logging.Logger
}

func NewAdminService(
	teamRepo team.Repository,
	matchRepo match.Repository,
	locker Locker,
	lockOpts lock.Options,
	notifier ChangeNotifier,
	logger *logging.Logger,
) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		locker:    locker,
		lockOpts:  lockOpts,
		notifier:  notifierOrNop(notifier),
		logger:    logger,
	}
}

// ResetAll deletes every match and then every team while holding both write
// locks.
func (s *AdminService) ResetAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.ResetAll")
	err := s.resetAll(ctx)
	endSpan(span, err)
	return err
}

func (s *AdminService) resetAll(ctx context.Context) error {
	keys := []string{lock.TeamRosterKey, lock.MatchResultsKey}
	err := s.locker.WithLocks(ctx, keys, s.lockOpts, func(ctx context.Context) error {
		if err := s.matchRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete all matches: %w", err)
		}
		if err := s.teamRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete all teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return lockedOr(err)
	}

	s.logger.WarnContext(ctx, "tournament data reset")
	s.notifier.RosterChanged(ctx, nil)
	return nil
}
