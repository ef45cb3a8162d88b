package memory

import (
	"sync"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
)

// Store holds the tables shared by the memory repositories so that team
// deletes can cascade into matches.
type Store struct {
	mu          sync.RWMutex
	teams       map[int64]team.Team
	matchRounds map[int64]int
	results     map[int64][]match.Result
	nextTeamID  int64
	nextMatchID int64
}

func NewStore() *Store {
	return &Store{
		teams:       make(map[int64]team.Team),
		matchRounds: make(map[int64]int),
		results:     make(map[int64][]match.Result),
	}
}

func (s *Store) teamNameTakenLocked(name string, exceptID int64) bool {
	for id, t := range s.teams {
		if id != exceptID && t.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) deleteMatchLocked(matchID int64) {
	delete(s.matchRounds, matchID)
	delete(s.results, matchID)
}
