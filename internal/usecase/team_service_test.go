package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
)

func TestTeamService_RegisterTeams(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	service := f.teamService()

	created, err := service.RegisterTeams(context.Background(), []RegisterTeamInput{
		{Name: " Team-A ", RegistrationDate: "29/02", Group: 1},
		{Name: "team_b", RegistrationDate: "31/12", Group: 2},
	})
	if err != nil {
		t.Fatalf("register teams: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 {
		t.Fatalf("unexpected created teams: %+v", created)
	}
	if created[0].Name != "Team-A" || created[0].RegistrationDayOfYear != 60 {
		t.Fatalf("expected trimmed name and leap day, got %+v", created[0])
	}
	if created[1].RegistrationDate() != "31/12" {
		t.Fatalf("unexpected rendered date: %s", created[1].RegistrationDate())
	}
	if len(f.notifier.rosters) != 1 || len(f.notifier.rosters[0]) != 2 {
		t.Fatalf("expected one roster notification for groups 1 and 2, got %+v", f.notifier.rosters)
	}
}

func TestTeamService_RegisterTeams_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		inputs  []RegisterTeamInput
		wantErr error
	}{
		{name: "empty batch", inputs: nil, wantErr: ErrInvalidInput},
		{name: "bad name", inputs: []RegisterTeamInput{{Name: "bad!name", RegistrationDate: "01/01", Group: 1}}, wantErr: ErrInvalidInput},
		{name: "bad date", inputs: []RegisterTeamInput{{Name: "ok", RegistrationDate: "30/02", Group: 1}}, wantErr: ErrInvalidInput},
		{name: "bad group", inputs: []RegisterTeamInput{{Name: "ok", RegistrationDate: "01/01", Group: 3}}, wantErr: ErrInvalidInput},
		{
			name: "duplicate in batch",
			inputs: []RegisterTeamInput{
				{Name: "same", RegistrationDate: "01/01", Group: 1},
				{Name: "same", RegistrationDate: "02/01", Group: 2},
			},
			wantErr: ErrDuplicateTeamName,
		},
		{name: "duplicate existing", inputs: []RegisterTeamInput{{Name: "existing", RegistrationDate: "01/01", Group: 2}}, wantErr: ErrDuplicateTeamName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newMemoryFixture()
			f.seed(team.Team{Name: "existing", Group: 1, RegistrationDayOfYear: 1})

			_, err := f.teamService().RegisterTeams(context.Background(), tt.inputs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			all, _ := f.teams.ListByGroup(context.Background(), nil)
			if len(all) != 1 {
				t.Fatalf("expected rejected batch to insert nothing, got %+v", all)
			}
		})
	}
}

func TestTeamService_RegisterTeams_GroupCapacity(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	service := f.teamService()
	ctx := context.Background()

	inputs := make([]RegisterTeamInput, 0, f.rules.MaxTeamsPerGroup)
	for i := 0; i < f.rules.MaxTeamsPerGroup-1; i++ {
		inputs = append(inputs, RegisterTeamInput{Name: fmt.Sprintf("team%d", i), RegistrationDate: "01/01", Group: 1})
	}
	if _, err := service.RegisterTeams(ctx, inputs); err != nil {
		t.Fatalf("fill group: %v", err)
	}

	_, err := service.RegisterTeams(ctx, []RegisterTeamInput{
		{Name: "last", RegistrationDate: "01/01", Group: 1},
		{Name: "overflow", RegistrationDate: "01/01", Group: 1},
	})
	if !errors.Is(err, ErrGroupFull) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrGroupFull, got %v", err)
	}

	if _, err := service.RegisterTeams(ctx, []RegisterTeamInput{{Name: "last", RegistrationDate: "01/01", Group: 1}}); err != nil {
		t.Fatalf("expected final slot to be accepted: %v", err)
	}
}

func TestTeamService_RegisterTeams_LockBusy(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	locker := &stubLocker{err: fmt.Errorf("%w: team_lock", lock.ErrNotAcquired)}
	service := NewTeamService(f.teams, f.matches, locker, f.lockOpts, f.rules, f.notifier, nil)

	_, err := service.RegisterTeams(context.Background(), []RegisterTeamInput{{Name: "a", RegistrationDate: "01/01", Group: 1}})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(locker.keys) != 1 || locker.keys[0] != lock.TeamRosterKey {
		t.Fatalf("expected team lock, got %v", locker.keys)
	}
}

func TestTeamService_UpdateTeam(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	created := f.seed(
		team.Team{Name: "alpha", Group: 2, RegistrationDayOfYear: 1},
		team.Team{Name: "beta", Group: 2, RegistrationDayOfYear: 2},
	)
	service := f.teamService()
	ctx := context.Background()

	updated, err := service.UpdateTeam(ctx, UpdateTeamInput{TeamID: created[0].ID, Name: "alpha2", RegistrationDate: "15/03"})
	if err != nil {
		t.Fatalf("update team: %v", err)
	}
	if updated.Name != "alpha2" || updated.RegistrationDate() != "15/03" || updated.Group != 2 {
		t.Fatalf("unexpected updated team: %+v", updated)
	}

	if _, err := service.UpdateTeam(ctx, UpdateTeamInput{TeamID: created[0].ID, Name: "beta", RegistrationDate: "15/03"}); !errors.Is(err, ErrDuplicateTeamName) {
		t.Fatalf("expected ErrDuplicateTeamName, got %v", err)
	}
	if _, err := service.UpdateTeam(ctx, UpdateTeamInput{TeamID: 999, Name: "x", RegistrationDate: "15/03"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeamService_DeleteTeamRemovesMatches(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	created := f.seed(
		team.Team{Name: "alpha", Group: 1, RegistrationDayOfYear: 1},
		team.Team{Name: "beta", Group: 1, RegistrationDayOfYear: 2},
	)
	ctx := context.Background()
	if _, err := f.matchService().SubmitResults(ctx, SubmitResultsInput{
		Round:   1,
		Results: []match.ProposedResult{{TeamA: "alpha", GoalsA: 1, TeamB: "beta"}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	locker := &stubLocker{}
	service := NewTeamService(f.teams, f.matches, locker, f.lockOpts, f.rules, f.notifier, nil)
	if err := service.DeleteTeam(ctx, created[0].ID); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if len(locker.keys) != 2 || locker.keys[0] != lock.TeamRosterKey || locker.keys[1] != lock.MatchResultsKey {
		t.Fatalf("expected team lock then match lock, got %v", locker.keys)
	}

	details, err := service.GetTeamDetails(ctx, created[1].ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details.Matches) != 0 {
		t.Fatalf("expected opponent history to be empty, got %+v", details.Matches)
	}
	if err := service.DeleteTeam(ctx, created[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTeamService_ListAndDetails(t *testing.T) {
	t.Parallel()

	f := newMemoryFixture()
	created := f.seed(
		team.Team{Name: "alpha", Group: 1, RegistrationDayOfYear: 1},
		team.Team{Name: "beta", Group: 1, RegistrationDayOfYear: 2},
		team.Team{Name: "gamma", Group: 2, RegistrationDayOfYear: 3},
	)
	ctx := context.Background()
	if _, err := f.matchService().SubmitResults(ctx, SubmitResultsInput{
		Round:   1,
		Results: []match.ProposedResult{{TeamA: "beta", GoalsA: 3, TeamB: "alpha", GoalsB: 1}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	service := f.teamService()

	group1, err := service.ListTeams(ctx, intPtr(1))
	if err != nil || len(group1) != 2 {
		t.Fatalf("unexpected group listing %+v err %v", group1, err)
	}
	if _, err := service.ListTeams(ctx, intPtr(0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid group, got %v", err)
	}

	details, err := service.GetTeamDetails(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details.Matches) != 1 {
		t.Fatalf("unexpected history: %+v", details.Matches)
	}
	m := details.Matches[0]
	if m.OpponentName != "beta" || m.GoalsScored != 1 || m.GoalsConceded != 3 || m.Round != 1 {
		t.Fatalf("unexpected matchup: %+v", m)
	}
	if _, err := service.GetTeamDetails(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
