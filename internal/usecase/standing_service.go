package usecase

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/standing"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
)

// DefaultQualifyingCount asks GetStandings for the configured count of the
// round.
const DefaultQualifyingCount = -1

type StandingService struct {
	teamRepo  team.Repository
	matchRepo match.Repository
	rules     tournament.Rules
}

func NewStandingService(teamRepo team.Repository, matchRepo match.Repository, rules tournament.Rules) *StandingService {
	return &StandingService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		rules:     rules,
	}
}

// GetStandings ranks every team of group (all groups when nil) on the results
// of round. Every call reads the repositories afresh, so a call that starts
// after a commit always sees it.
func (s *StandingService) GetStandings(ctx context.Context, round int, group *int, qualifyingCount int) ([]standing.GroupRanking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.GetStandings", attribute.Int("round.number", round))
	rankings, err := s.getStandings(ctx, round, group, qualifyingCount)
	endSpan(span, err)
	return rankings, err
}

func (s *StandingService) getStandings(ctx context.Context, round int, group *int, qualifyingCount int) ([]standing.GroupRanking, error) {
	if !s.rules.ValidRound(round) {
		return nil, fmt.Errorf("%w: round must be between 1 and %d", ErrInvalidInput, s.rules.FinalRound)
	}
	if group != nil && !s.rules.ValidGroup(*group) {
		return nil, fmt.Errorf("%w: group must be between 1 and %d", ErrInvalidInput, s.rules.GroupCount)
	}
	if qualifyingCount < 0 {
		qualifyingCount = s.rules.QualifyingCount(round)
	}
	return s.rank(ctx, round, group, qualifyingCount)
}

func (s *StandingService) rank(ctx context.Context, round int, group *int, qualifyingCount int) ([]standing.GroupRanking, error) {
	var (
		roster  []team.Team
		results []match.ResultDetail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.teamRepo.ListByGroup(gctx, group)
		if err != nil {
			return fmt.Errorf("list teams by group: %w", err)
		}
		roster = items
		return nil
	})
	g.Go(func() error {
		items, err := s.matchRepo.ResultsByRound(gctx, round, group)
		if err != nil {
			return fmt.Errorf("list results by round: %w", err)
		}
		results = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rankings := standing.Rank(results, roster, qualifyingCount)
	if group != nil {
		return withGroups(rankings, []int{*group}), nil
	}
	return withGroups(rankings, s.rules.Groups()), nil
}

// withGroups adds an empty table for every group in groups that has no team.
func withGroups(rankings []standing.GroupRanking, groups []int) []standing.GroupRanking {
	present := make(map[int]struct{}, len(rankings))
	for _, r := range rankings {
		present[r.Group] = struct{}{}
	}
	for _, group := range groups {
		if _, ok := present[group]; !ok {
			rankings = append(rankings, standing.GroupRanking{Group: group, Standings: []standing.Standing{}})
		}
	}
	sort.Slice(rankings, func(i, j int) bool { return rankings[i].Group < rankings[j].Group })
	return rankings
}
