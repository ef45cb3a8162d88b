package match

import "strings"

// ProposedResult is one fixture submitted in a result batch.
type ProposedResult struct {
	TeamA  string
	GoalsA int
	TeamB  string
	GoalsB int
}

// Pair returns the unordered team pair played in the fixture.
func (p ProposedResult) Pair() Pair {
	return NewPair(p.TeamA, p.TeamB)
}

// Result is one team's side of a persisted match.
type Result struct {
	MatchID     int64
	TeamID      int64
	GoalsScored int
}

// ResultDetail is a persisted result row joined with its team attributes.
type ResultDetail struct {
	MatchID               int64
	Round                 int
	TeamID                int64
	TeamName              string
	Group                 int
	RegistrationDayOfYear int
	GoalsScored           int
}

// Matchup identifies one side of a match already played in a round.
type Matchup struct {
	MatchID  int64
	TeamID   int64
	TeamName string
}

// Side is one participant of a fixture listing.
type Side struct {
	TeamID      int64
	TeamName    string
	Group       int
	GoalsScored int
}

type Fixture struct {
	MatchID int64
	Round   int
	Home    Side
	Away    Side
}

// TeamMatchup is a fixture seen from one team.
type TeamMatchup struct {
	MatchID       int64
	Round         int
	OpponentID    int64
	OpponentName  string
	GoalsScored   int
	GoalsConceded int
}

// Pair is an unordered pair of team names.
type Pair struct {
	first  string
	second string
}

func NewPair(a, b string) Pair {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return Pair{first: a, second: b}
}

func (p Pair) Teams() (string, string) {
	return p.first, p.second
}

func (p Pair) String() string {
	return p.first + " vs " + p.second
}

// GroupFixtures folds result rows into fixtures ordered by match id. Rows are
// expected sorted by match id; matches without exactly two rows are skipped.
func GroupFixtures(rows []ResultDetail) []Fixture {
	out := make([]Fixture, 0, len(rows)/2)
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].MatchID == rows[i].MatchID {
			j++
		}
		if j-i == 2 {
			out = append(out, Fixture{
				MatchID: rows[i].MatchID,
				Round:   rows[i].Round,
				Home:    sideFromDetail(rows[i]),
				Away:    sideFromDetail(rows[i+1]),
			})
		}
		i = j
	}
	return out
}

func sideFromDetail(row ResultDetail) Side {
	return Side{
		TeamID:      row.TeamID,
		TeamName:    row.TeamName,
		Group:       row.Group,
		GoalsScored: row.GoalsScored,
	}
}
