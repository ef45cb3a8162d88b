package usecase

import (
	"context"
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

type SubmitResultsInput struct {
	Round   int
	Results []match.ProposedResult
}

type SubmitResultsOutput struct {
	Round    int
	MatchIDs []int64
	// Groups lists every group with a team in the batch, ascending.
	Groups []int
}

type MatchService struct {
	teamRepo  team.Repository
	matchRepo match.Repository
	locker    Locker
	lockOpts  lock.Options
	rules     tournament.Rules
	notifier  ChangeNotifier
	logger    *logging.Logger
}

func NewMatchService(
	teamRepo team.Repository,
	matchRepo match.Repository,
	locker Locker,
	lockOpts lock.Options,
	rules tournament.Rules,
	notifier ChangeNotifier,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		locker:    locker,
		lockOpts:  lockOpts,
		rules:     rules,
		notifier:  notifierOrNop(notifier),
		logger:    logger,
	}
}

// SubmitResults records a batch of fixtures for one round. The batch is
// validated without the lock, then re-checked against persisted fixtures and
// written in one transaction while holding the match lock. Either every
// fixture is stored or none is.
func (s *MatchService) SubmitResults(ctx context.Context, input SubmitResultsInput) (SubmitResultsOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SubmitResults",
		attribute.Int("round.number", input.Round),
		attribute.Int("fixtures.count", len(input.Results)),
	)
	out, err := s.submitResults(ctx, input)
	endSpan(span, err)
	return out, err
}

func (s *MatchService) submitResults(ctx context.Context, input SubmitResultsInput) (SubmitResultsOutput, error) {
	if !s.rules.ValidRound(input.Round) {
		return SubmitResultsOutput{}, fmt.Errorf("%w: round must be between 1 and %d", ErrInvalidInput, s.rules.FinalRound)
	}
	if len(input.Results) == 0 {
		return SubmitResultsOutput{}, fmt.Errorf("%w: at least one result is required", ErrInvalidInput)
	}
	if err := match.ValidateBatch(input.Results); err != nil {
		return SubmitResultsOutput{}, err
	}

	teams, err := s.teamRepo.ListByNames(ctx, match.TeamNames(input.Results))
	if err != nil {
		return SubmitResultsOutput{}, fmt.Errorf("list teams by names: %w", err)
	}
	teamsByName := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamsByName[t.Name] = t
	}
	if err := match.ValidateParticipants(input.Results, teamsByName, s.rules.IsFinalRound(input.Round)); err != nil {
		return SubmitResultsOutput{}, err
	}

	teamIDs := make([]int64, 0, len(teams))
	groupSet := make(map[int]struct{})
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
		groupSet[t.Group] = struct{}{}
	}

	var matchIDs []int64
	err = s.locker.WithLock(ctx, lock.MatchResultsKey, s.lockOpts, func(ctx context.Context) error {
		played, err := s.matchRepo.MatchupsByRound(ctx, input.Round, teamIDs)
		if err != nil {
			return crerr.Wrap(crerr.Mark(err, match.ErrPersistenceFailure), "load played fixtures")
		}
		if err := match.CheckAlreadyPlayed(input.Results, teamsByName, played); err != nil {
			return err
		}

		ids, err := s.persist(ctx, input, teamsByName)
		if err != nil {
			return err
		}
		matchIDs = ids
		return nil
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		s.logger.WarnContext(ctx, "match results lock busy", "round", input.Round, "error", err)
		return SubmitResultsOutput{}, crerr.Wrapf(match.ErrLockTimeout, "round %d", input.Round)
	}
	if err != nil {
		if crerr.Is(err, match.ErrPersistenceFailure) {
			s.logger.ErrorContext(ctx, "persist match results failed", "round", input.Round, "error", err)
		}
		return SubmitResultsOutput{}, err
	}

	out := SubmitResultsOutput{
		Round:    input.Round,
		MatchIDs: matchIDs,
		Groups:   sortedGroups(groupSet),
	}
	s.logger.InfoContext(ctx, "match results recorded",
		"round", out.Round,
		"matches", len(out.MatchIDs),
		"groups", out.Groups,
	)
	s.notifier.RoundChanged(ctx, out.Round, out.Groups)
	return out, nil
}

func (s *MatchService) persist(ctx context.Context, input SubmitResultsInput, teamsByName map[string]team.Team) ([]int64, error) {
	var matchIDs []int64
	err := s.matchRepo.InTx(ctx, func(ctx context.Context, tx match.Tx) error {
		ids, err := tx.CreateMatches(ctx, input.Round, len(input.Results))
		if err != nil {
			return crerr.Wrap(crerr.Mark(err, match.ErrPersistenceFailure), "create matches")
		}
		if len(ids) != len(input.Results) {
			return crerr.Wrapf(match.ErrPersistenceFailure, "created %d matches, expected %d", len(ids), len(input.Results))
		}

		if err := tx.CreateResults(ctx, match.BuildResults(input.Results, ids, teamsByName)); err != nil {
			return crerr.Wrap(crerr.Mark(err, match.ErrPersistenceFailure), "create match results")
		}
		matchIDs = ids
		return nil
	})
	if err != nil {
		if crerr.Is(err, match.ErrPersistenceFailure) {
			return nil, err
		}
		return nil, crerr.Wrap(crerr.Mark(err, match.ErrPersistenceFailure), "match results transaction")
	}
	return matchIDs, nil
}

// ListResults returns the fixtures of a round, optionally restricted to those
// involving a team of group, ordered by match id.
func (s *MatchService) ListResults(ctx context.Context, round int, group *int) ([]match.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListResults", attribute.Int("round.number", round))
	fixtures, err := s.listResults(ctx, round, group)
	endSpan(span, err)
	return fixtures, err
}

func (s *MatchService) listResults(ctx context.Context, round int, group *int) ([]match.Fixture, error) {
	if !s.rules.ValidRound(round) {
		return nil, fmt.Errorf("%w: round must be between 1 and %d", ErrInvalidInput, s.rules.FinalRound)
	}
	if group != nil && !s.rules.ValidGroup(*group) {
		return nil, fmt.Errorf("%w: group must be between 1 and %d", ErrInvalidInput, s.rules.GroupCount)
	}

	rows, err := s.matchRepo.ResultsByRound(ctx, round, group)
	if err != nil {
		return nil, fmt.Errorf("list results by round: %w", err)
	}
	return match.GroupFixtures(rows), nil
}
