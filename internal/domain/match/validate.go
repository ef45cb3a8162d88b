package match

import (
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/group-stage/internal/domain/team"
)

// ValidateBatch checks a batch on its own: scores, self-matches and fixtures
// repeated inside the batch.
func ValidateBatch(batch []ProposedResult) error {
	seen := make(map[Pair]struct{}, len(batch))
	for i, item := range batch {
		if strings.TrimSpace(item.TeamA) == "" || strings.TrimSpace(item.TeamB) == "" {
			return crerr.Wrapf(ErrUnknownTeam, "fixture %d has an empty team name", i)
		}
		if item.GoalsA < 0 || item.GoalsB < 0 {
			return crerr.Wrapf(ErrInvalidScore, "fixture %d", i)
		}
		if item.TeamA == item.TeamB {
			return crerr.Wrapf(ErrSelfMatch, "team %q", item.TeamA)
		}

		pair := item.Pair()
		if _, exists := seen[pair]; exists {
			return crerr.Wrapf(ErrDuplicateFixture, "%s repeated in batch", pair)
		}
		seen[pair] = struct{}{}
	}
	return nil
}

// TeamNames returns the distinct team names referenced by the batch in
// first-seen order.
func TeamNames(batch []ProposedResult) []string {
	seen := make(map[string]struct{}, len(batch)*2)
	out := make([]string, 0, len(batch)*2)
	for _, item := range batch {
		for _, name := range []string{item.TeamA, item.TeamB} {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// ValidateParticipants checks that every team exists and, unless crossGroup
// is allowed, that both sides of a fixture share a group.
func ValidateParticipants(batch []ProposedResult, teamsByName map[string]team.Team, crossGroup bool) error {
	for _, item := range batch {
		teamA, ok := teamsByName[item.TeamA]
		if !ok {
			return crerr.Wrapf(ErrUnknownTeam, "team %q", item.TeamA)
		}
		teamB, ok := teamsByName[item.TeamB]
		if !ok {
			return crerr.Wrapf(ErrUnknownTeam, "team %q", item.TeamB)
		}
		if !crossGroup && teamA.Group != teamB.Group {
			return crerr.Wrapf(ErrCrossGroupNotAllowed, "%s (group %d vs group %d)", item.Pair(), teamA.Group, teamB.Group)
		}
	}
	return nil
}

// CheckAlreadyPlayed rejects the batch when any of its pairs is already
// recorded among the persisted matchups of the round. Pairs are compared by
// team id, so a rename after the batch was resolved cannot hide a fixture.
func CheckAlreadyPlayed(batch []ProposedResult, teamsByName map[string]team.Team, played []Matchup) error {
	idsByMatch := make(map[int64][]int64, len(played)/2)
	for _, row := range played {
		idsByMatch[row.MatchID] = append(idsByMatch[row.MatchID], row.TeamID)
	}

	existing := make(map[idPair]struct{}, len(idsByMatch))
	for _, ids := range idsByMatch {
		if len(ids) != 2 {
			continue
		}
		existing[newIDPair(ids[0], ids[1])] = struct{}{}
	}

	for _, item := range batch {
		teamA, okA := teamsByName[item.TeamA]
		teamB, okB := teamsByName[item.TeamB]
		if !okA || !okB {
			return crerr.Wrapf(ErrUnknownTeam, "%s", item.Pair())
		}
		if _, ok := existing[newIDPair(teamA.ID, teamB.ID)]; ok {
			return crerr.Wrapf(ErrDuplicateFixture, "%s already played", item.Pair())
		}
	}
	return nil
}

type idPair struct {
	low  int64
	high int64
}

func newIDPair(a, b int64) idPair {
	if a > b {
		a, b = b, a
	}
	return idPair{low: a, high: b}
}

// BuildResults pairs each created match id with the two sides of its fixture.
func BuildResults(batch []ProposedResult, matchIDs []int64, teamsByName map[string]team.Team) []Result {
	out := make([]Result, 0, len(batch)*2)
	for i, item := range batch {
		out = append(out,
			Result{MatchID: matchIDs[i], TeamID: teamsByName[item.TeamA].ID, GoalsScored: item.GoalsA},
			Result{MatchID: matchIDs[i], TeamID: teamsByName[item.TeamB].ID, GoalsScored: item.GoalsB},
		)
	}
	return out
}
