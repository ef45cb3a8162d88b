package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/group-stage/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) ResultsByRound(_ context.Context, round int, group *int) ([]match.ResultDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.ResultDetail, 0)
	for _, matchID := range r.sortedMatchIDsLocked(round) {
		rows := r.store.results[matchID]
		if group != nil && !r.involvesGroupLocked(rows, *group) {
			continue
		}
		for _, row := range sortedRows(rows) {
			t := r.store.teams[row.TeamID]
			out = append(out, match.ResultDetail{
				MatchID:               matchID,
				Round:                 round,
				TeamID:                row.TeamID,
				TeamName:              t.Name,
				Group:                 t.Group,
				RegistrationDayOfYear: t.RegistrationDayOfYear,
				GoalsScored:           row.GoalsScored,
			})
		}
	}
	return out, nil
}

func (r *MatchRepository) MatchupsByRound(_ context.Context, round int, teamIDs []int64) ([]match.Matchup, error) {
	wanted := make(map[int64]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = struct{}{}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Matchup, 0)
	for _, matchID := range r.sortedMatchIDsLocked(round) {
		rows := sortedRows(r.store.results[matchID])
		involved := false
		for _, row := range rows {
			if _, ok := wanted[row.TeamID]; ok {
				involved = true
				break
			}
		}
		if !involved {
			continue
		}
		for _, row := range rows {
			out = append(out, match.Matchup{
				MatchID:  matchID,
				TeamID:   row.TeamID,
				TeamName: r.store.teams[row.TeamID].Name,
			})
		}
	}
	return out, nil
}

func (r *MatchRepository) HistoryByTeam(_ context.Context, teamID int64) ([]match.TeamMatchup, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.TeamMatchup, 0)
	for matchID, rows := range r.store.results {
		if len(rows) != 2 {
			continue
		}
		self, other := rows[0], rows[1]
		if other.TeamID == teamID {
			self, other = other, self
		}
		if self.TeamID != teamID {
			continue
		}
		out = append(out, match.TeamMatchup{
			MatchID:       matchID,
			Round:         r.store.matchRounds[matchID],
			OpponentID:    other.TeamID,
			OpponentName:  r.store.teams[other.TeamID].Name,
			GoalsScored:   self.GoalsScored,
			GoalsConceded: other.GoalsScored,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

// InTx holds the store write lock for the whole of fn and applies the staged
// rows only when fn returns nil.
func (r *MatchRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx match.Tx) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := &matchTx{
		store:       r.store,
		nextMatchID: r.store.nextMatchID,
		rounds:      make(map[int64]int),
		results:     make(map[int64][]match.Result),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, round := range tx.rounds {
		r.store.matchRounds[id] = round
	}
	for id, rows := range tx.results {
		r.store.results[id] = append(r.store.results[id], rows...)
	}
	r.store.nextMatchID = tx.nextMatchID
	return nil
}

func (r *MatchRepository) DeleteAll(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.matchRounds = make(map[int64]int)
	r.store.results = make(map[int64][]match.Result)
	return nil
}

func (r *MatchRepository) sortedMatchIDsLocked(round int) []int64 {
	ids := make([]int64, 0)
	for id, matchRound := range r.store.matchRounds {
		if matchRound == round {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *MatchRepository) involvesGroupLocked(rows []match.Result, group int) bool {
	for _, row := range rows {
		if r.store.teams[row.TeamID].Group == group {
			return true
		}
	}
	return false
}

func sortedRows(rows []match.Result) []match.Result {
	out := append([]match.Result(nil), rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

// matchTx stages writes and enforces the constraints the SQL schema would.
type matchTx struct {
	store       *Store
	nextMatchID int64
	rounds      map[int64]int
	results     map[int64][]match.Result
}

func (t *matchTx) CreateMatches(_ context.Context, round, count int) ([]int64, error) {
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		t.nextMatchID++
		t.rounds[t.nextMatchID] = round
		ids = append(ids, t.nextMatchID)
	}
	return ids, nil
}

func (t *matchTx) CreateResults(_ context.Context, results []match.Result) error {
	for _, res := range results {
		if _, staged := t.rounds[res.MatchID]; !staged {
			if _, stored := t.store.matchRounds[res.MatchID]; !stored {
				return fmt.Errorf("insert match results: unknown match %d", res.MatchID)
			}
		}
		if _, ok := t.store.teams[res.TeamID]; !ok {
			return fmt.Errorf("insert match results: unknown team %d", res.TeamID)
		}
		if res.GoalsScored < 0 {
			return fmt.Errorf("insert match results: negative goals for team %d", res.TeamID)
		}
		if hasTeamRow(t.store.results[res.MatchID], res.TeamID) || hasTeamRow(t.results[res.MatchID], res.TeamID) {
			return fmt.Errorf("insert match results: duplicate row for match %d team %d", res.MatchID, res.TeamID)
		}
		t.results[res.MatchID] = append(t.results[res.MatchID], res)
	}
	return nil
}

func hasTeamRow(rows []match.Result, teamID int64) bool {
	for _, row := range rows {
		if row.TeamID == teamID {
			return true
		}
	}
	return false
}
