package standing

import (
	"reflect"
	"testing"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
)

func resultRows(matchID int64, a team.Team, goalsA int, b team.Team, goalsB int) []match.ResultDetail {
	return []match.ResultDetail{
		{MatchID: matchID, Round: 1, TeamID: a.ID, TeamName: a.Name, Group: a.Group, RegistrationDayOfYear: a.RegistrationDayOfYear, GoalsScored: goalsA},
		{MatchID: matchID, Round: 1, TeamID: b.ID, TeamName: b.Name, Group: b.Group, RegistrationDayOfYear: b.RegistrationDayOfYear, GoalsScored: goalsB},
	}
}

func findStanding(t *testing.T, rows []Standing, teamID int64) Standing {
	t.Helper()
	for _, row := range rows {
		if row.TeamID == teamID {
			return row
		}
	}
	t.Fatalf("team %d not ranked", teamID)
	return Standing{}
}

func TestRank_SingleWin(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 10}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 11}

	rankings := Rank(resultRows(1, a, 2, b, 1), []team.Team{a, b}, 4)
	if len(rankings) != 1 || rankings[0].Group != 1 {
		t.Fatalf("unexpected rankings: %+v", rankings)
	}

	rows := rankings[0].Standings
	if rows[0].TeamID != a.ID || rows[0].Position != 1 || rows[0].Points != 3 || rows[0].GoalsFor != 2 || rows[0].AltPoints != 5 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
	if rows[1].TeamID != b.ID || rows[1].Position != 2 || rows[1].Points != 0 || rows[1].Losses != 1 || rows[1].AltPoints != 1 {
		t.Fatalf("unexpected runner-up: %+v", rows[1])
	}
	if rows[0].IsTied || rows[1].IsTied {
		t.Fatalf("expected no ties")
	}
	if !rows[0].IsQualified || !rows[1].IsQualified {
		t.Fatalf("expected both teams to qualify with qualifying count 4")
	}
}

func TestRank_DrawSeparatedByRegistrationDay(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 40}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 12}

	rows := Rank(resultRows(1, a, 1, b, 1), []team.Team{a, b}, 1)[0].Standings
	if rows[0].TeamID != b.ID || rows[0].Position != 1 {
		t.Fatalf("expected earlier registration to lead, got %+v", rows[0])
	}
	if rows[1].Position != 2 || rows[1].IsTied {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if !rows[0].IsQualified || rows[1].IsQualified {
		t.Fatalf("expected only the leader to qualify")
	}
}

func TestRank_GoalsBreakPointsTie(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 1}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 2}
	c := team.Team{ID: 3, Name: "C", Group: 1, RegistrationDayOfYear: 3}
	d := team.Team{ID: 4, Name: "D", Group: 1, RegistrationDayOfYear: 4}

	var results []match.ResultDetail
	results = append(results, resultRows(1, a, 1, c, 0)...)
	results = append(results, resultRows(2, b, 5, d, 0)...)

	rows := Rank(results, []team.Team{a, b, c, d}, 4)[0].Standings
	if rows[0].TeamID != b.ID || rows[1].TeamID != a.ID {
		t.Fatalf("expected B ahead of A on goals, got %d then %d", rows[0].TeamID, rows[1].TeamID)
	}
}

func TestRank_AltPointsBreakGoalsTie(t *testing.T) {
	// A: one win (3 pts, alt 5). B: three draws (3 pts, alt 9). Same goals.
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 1}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 2}
	c := team.Team{ID: 3, Name: "C", Group: 1, RegistrationDayOfYear: 3}
	d := team.Team{ID: 4, Name: "D", Group: 1, RegistrationDayOfYear: 4}
	e := team.Team{ID: 5, Name: "E", Group: 1, RegistrationDayOfYear: 5}

	var results []match.ResultDetail
	results = append(results, resultRows(1, a, 3, c, 0)...)
	results = append(results, resultRows(2, b, 1, c, 1)...)
	results = append(results, resultRows(3, b, 1, d, 1)...)
	results = append(results, resultRows(4, b, 1, e, 1)...)

	rows := Rank(results, []team.Team{a, b, c, d, e}, 4)[0].Standings
	first := rows[0]
	if first.TeamID != b.ID || first.AltPoints != 9 {
		t.Fatalf("expected B to lead on alternate points, got %+v", first)
	}
	if rows[1].TeamID != a.ID || rows[1].AltPoints != 5 {
		t.Fatalf("expected A second, got %+v", rows[1])
	}
}

func TestRank_CompetitionRankingOnFullTie(t *testing.T) {
	// Three unplayed teams registered the same day tie at position 1; a fourth
	// registered later is placed 4th.
	a := team.Team{ID: 7, Name: "A", Group: 1, RegistrationDayOfYear: 5}
	b := team.Team{ID: 3, Name: "B", Group: 1, RegistrationDayOfYear: 5}
	c := team.Team{ID: 5, Name: "C", Group: 1, RegistrationDayOfYear: 5}
	d := team.Team{ID: 1, Name: "D", Group: 1, RegistrationDayOfYear: 9}

	rows := Rank(nil, []team.Team{a, b, c, d}, 2)[0].Standings
	wantIDs := []int64{3, 5, 7, 1}
	wantPositions := []int{1, 1, 1, 4}
	for i, row := range rows {
		if row.TeamID != wantIDs[i] || row.Position != wantPositions[i] {
			t.Fatalf("row %d: expected team %d at %d, got team %d at %d", i, wantIDs[i], wantPositions[i], row.TeamID, row.Position)
		}
	}
	for _, row := range rows[:3] {
		if !row.IsTied || !row.IsQualified {
			t.Fatalf("expected tied block straddling the cutoff to qualify: %+v", row)
		}
	}
	if rows[3].IsTied || rows[3].IsQualified {
		t.Fatalf("unexpected last row flags: %+v", rows[3])
	}
}

func TestRank_ZeroMatchTeamsIncluded(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 1}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 2}
	idle := team.Team{ID: 3, Name: "Idle", Group: 1, RegistrationDayOfYear: 3}

	rows := Rank(resultRows(1, a, 0, b, 0), []team.Team{a, b, idle}, 0)[0].Standings
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	row := findStanding(t, rows, idle.ID)
	if row.Played != 0 || row.Points != 0 || row.AltPoints != 0 || row.Position != 3 {
		t.Fatalf("unexpected idle team row: %+v", row)
	}
	for _, item := range rows {
		if item.IsQualified {
			t.Fatalf("expected no qualification with qualifying count 0: %+v", item)
		}
	}
}

func TestRank_GroupsSplitAndOrdered(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 2, RegistrationDayOfYear: 1}
	b := team.Team{ID: 2, Name: "B", Group: 2, RegistrationDayOfYear: 2}
	c := team.Team{ID: 3, Name: "C", Group: 1, RegistrationDayOfYear: 3}

	rankings := Rank(resultRows(1, a, 1, b, 0), []team.Team{a, b, c}, 4)
	if len(rankings) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(rankings))
	}
	if rankings[0].Group != 1 || rankings[1].Group != 2 {
		t.Fatalf("expected ascending groups, got %d then %d", rankings[0].Group, rankings[1].Group)
	}
	if len(rankings[0].Standings) != 1 || len(rankings[1].Standings) != 2 {
		t.Fatalf("unexpected group sizes: %+v", rankings)
	}
}

func TestRank_CrossGroupOpponentOutsideRoster(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 1}
	x := team.Team{ID: 9, Name: "X", Group: 2, RegistrationDayOfYear: 1}

	rankings := Rank(resultRows(1, a, 2, x, 3), []team.Team{a}, 4)
	if len(rankings) != 1 || len(rankings[0].Standings) != 1 {
		t.Fatalf("expected only roster team ranked, got %+v", rankings)
	}
	row := rankings[0].Standings[0]
	if row.Losses != 1 || row.GoalsFor != 2 {
		t.Fatalf("expected loss recorded against outside opponent: %+v", row)
	}
}

func TestRank_IgnoresIncompleteMatches(t *testing.T) {
	a := team.Team{ID: 1, Name: "A", Group: 1, RegistrationDayOfYear: 1}
	b := team.Team{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 2}

	results := []match.ResultDetail{
		{MatchID: 1, TeamID: a.ID, TeamName: a.Name, Group: 1, GoalsScored: 3},
	}
	rows := Rank(results, []team.Team{a, b}, 4)[0].Standings
	if row := findStanding(t, rows, a.ID); row.Played != 0 || row.GoalsFor != 0 {
		t.Fatalf("expected single-sided match to be ignored: %+v", row)
	}
}

func TestRank_Deterministic(t *testing.T) {
	roster := []team.Team{
		{ID: 4, Name: "D", Group: 1, RegistrationDayOfYear: 3},
		{ID: 2, Name: "B", Group: 1, RegistrationDayOfYear: 3},
		{ID: 3, Name: "C", Group: 2, RegistrationDayOfYear: 3},
		{ID: 1, Name: "A", Group: 2, RegistrationDayOfYear: 3},
	}
	var results []match.ResultDetail
	results = append(results, resultRows(1, roster[0], 1, roster[1], 1)...)
	results = append(results, resultRows(2, roster[2], 0, roster[3], 0)...)

	first := Rank(results, roster, 1)
	reversed := []team.Team{roster[3], roster[2], roster[1], roster[0]}
	for i := 0; i < 20; i++ {
		if got := Rank(results, reversed, 1); !reflect.DeepEqual(first, got) {
			t.Fatalf("ranking changed between runs:\n%+v\n%+v", first, got)
		}
	}
	if first[0].Standings[0].TeamID != 2 {
		t.Fatalf("expected lower team id first inside a tie block, got %d", first[0].Standings[0].TeamID)
	}
}
