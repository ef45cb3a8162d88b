package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

type RegisterTeamInput struct {
	Name string
	// RegistrationDate is DD/MM.
	RegistrationDate string
	Group            int
}

type UpdateTeamInput struct {
	TeamID           int64
	Name             string
	RegistrationDate string
}

type TeamDetails struct {
	Team    team.Team
	Matches []match.TeamMatchup
}

type TeamService struct {
	teamRepo  team.Repository
	matchRepo match.Repository
	locker    Locker
	lockOpts  lock.Options
	rules     tournament.Rules
	notifier  ChangeNotifier
	logger    *logging.Logger
}

func NewTeamService(
	teamRepo team.Repository,
	matchRepo match.Repository,
	locker Locker,
	lockOpts lock.Options,
	rules tournament.Rules,
	notifier ChangeNotifier,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		locker:    locker,
		lockOpts:  lockOpts,
		rules:     rules,
		notifier:  notifierOrNop(notifier),
		logger:    logger,
	}
}

// RegisterTeams creates every team of the batch or none of them.
func (s *TeamService) RegisterTeams(ctx context.Context, inputs []RegisterTeamInput) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.RegisterTeams")
	created, err := s.registerTeams(ctx, inputs)
	endSpan(span, err)
	return created, err
}

func (s *TeamService) registerTeams(ctx context.Context, inputs []RegisterTeamInput) ([]team.Team, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one team is required", ErrInvalidInput)
	}

	items := make([]team.Team, 0, len(inputs))
	names := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	added := make(map[int]int)
	for i, input := range inputs {
		name, day, err := normalizeTeamFields(input.Name, input.RegistrationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: team %d: %v", ErrInvalidInput, i, err)
		}
		if !s.rules.ValidGroup(input.Group) {
			return nil, fmt.Errorf("%w: team %q: group must be between 1 and %d", ErrInvalidInput, name, s.rules.GroupCount)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q appears more than once", ErrDuplicateTeamName, name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
		added[input.Group]++
		items = append(items, team.Team{Name: name, Group: input.Group, RegistrationDayOfYear: day})
	}

	var created []team.Team
	err := s.locker.WithLock(ctx, lock.TeamRosterKey, s.lockOpts, func(ctx context.Context) error {
		existing, err := s.teamRepo.ListByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("list teams by names: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateTeamName, existing[0].Name)
		}

		counts, err := s.teamRepo.CountByGroup(ctx)
		if err != nil {
			return fmt.Errorf("count teams by group: %w", err)
		}
		for group, n := range added {
			if counts[group]+n > s.rules.MaxTeamsPerGroup {
				return fmt.Errorf("%w: group %d has %d of %d teams, cannot add %d",
					ErrGroupFull, group, counts[group], s.rules.MaxTeamsPerGroup, n)
			}
		}

		created, err = s.teamRepo.Create(ctx, items)
		if errors.Is(err, team.ErrDuplicateName) {
			return fmt.Errorf("%w: %v", ErrDuplicateTeamName, err)
		}
		if err != nil {
			return fmt.Errorf("create teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, lockedOr(err)
	}

	groups := make(map[int]struct{}, len(added))
	for group := range added {
		groups[group] = struct{}{}
	}
	s.logger.InfoContext(ctx, "teams registered", "count", len(created), "groups", sortedGroups(groups))
	s.notifier.RosterChanged(ctx, sortedGroups(groups))
	return created, nil
}

// UpdateTeam corrects a team's name and registration date. The group is fixed
// at registration.
func (s *TeamService) UpdateTeam(ctx context.Context, input UpdateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.UpdateTeam")
	updated, err := s.updateTeam(ctx, input)
	endSpan(span, err)
	return updated, err
}

func (s *TeamService) updateTeam(ctx context.Context, input UpdateTeamInput) (team.Team, error) {
	if input.TeamID <= 0 {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	name, day, err := normalizeTeamFields(input.Name, input.RegistrationDate)
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated team.Team
	err = s.locker.WithLock(ctx, lock.TeamRosterKey, s.lockOpts, func(ctx context.Context) error {
		current, exists, err := s.teamRepo.GetByID(ctx, input.TeamID)
		if err != nil {
			return fmt.Errorf("get team by id: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: team=%d", ErrNotFound, input.TeamID)
		}

		current.Name = name
		current.RegistrationDayOfYear = day
		if err := s.teamRepo.Update(ctx, current); err != nil {
			if errors.Is(err, team.ErrDuplicateName) {
				return fmt.Errorf("%w: %q", ErrDuplicateTeamName, name)
			}
			return fmt.Errorf("update team: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return team.Team{}, lockedOr(err)
	}

	s.logger.InfoContext(ctx, "team updated", "team_id", updated.ID, "group", updated.Group)
	s.notifier.RosterChanged(ctx, []int{updated.Group})
	return updated, nil
}

// DeleteTeam removes a team and every match it played. It takes the roster
// lock and then the match lock.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.DeleteTeam")
	err := s.deleteTeam(ctx, teamID)
	endSpan(span, err)
	return err
}

func (s *TeamService) deleteTeam(ctx context.Context, teamID int64) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	keys := []string{lock.TeamRosterKey, lock.MatchResultsKey}
	err := s.locker.WithLocks(ctx, keys, s.lockOpts, func(ctx context.Context) error {
		_, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return fmt.Errorf("get team by id: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
		}
		if err := s.teamRepo.Delete(ctx, teamID); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return lockedOr(err)
	}

	s.logger.InfoContext(ctx, "team deleted", "team_id", teamID)
	// Final-round opponents may sit in any group.
	s.notifier.RosterChanged(ctx, nil)
	return nil
}

func (s *TeamService) ListTeams(ctx context.Context, group *int) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	items, err := s.listTeams(ctx, group)
	endSpan(span, err)
	return items, err
}

func (s *TeamService) listTeams(ctx context.Context, group *int) ([]team.Team, error) {
	if group != nil && !s.rules.ValidGroup(*group) {
		return nil, fmt.Errorf("%w: group must be between 1 and %d", ErrInvalidInput, s.rules.GroupCount)
	}

	items, err := s.teamRepo.ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

func (s *TeamService) GetTeamDetails(ctx context.Context, teamID int64) (TeamDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeamDetails")
	details, err := s.getTeamDetails(ctx, teamID)
	endSpan(span, err)
	return details, err
}

func (s *TeamService) getTeamDetails(ctx context.Context, teamID int64) (TeamDetails, error) {
	if teamID <= 0 {
		return TeamDetails{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return TeamDetails{}, fmt.Errorf("get team by id: %w", err)
	}
	if !exists {
		return TeamDetails{}, fmt.Errorf("%w: team=%d", ErrNotFound, teamID)
	}

	history, err := s.matchRepo.HistoryByTeam(ctx, teamID)
	if err != nil {
		return TeamDetails{}, fmt.Errorf("list team history: %w", err)
	}

	return TeamDetails{Team: item, Matches: history}, nil
}

func normalizeTeamFields(name, registrationDate string) (string, int, error) {
	name = strings.TrimSpace(name)
	if err := team.ValidateName(name); err != nil {
		return "", 0, err
	}
	day, err := team.ParseRegistrationDate(strings.TrimSpace(registrationDate))
	if err != nil {
		return "", 0, err
	}
	return name, day, nil
}

func lockedOr(err error) error {
	if errors.Is(err, lock.ErrNotAcquired) {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}
	return err
}
