package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/group-stage/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) ListByNames(_ context.Context, names []string) ([]team.Team, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Team, 0, len(names))
	for _, t := range r.store.teams {
		if _, ok := wanted[t.Name]; ok {
			out = append(out, t)
		}
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) ListByGroup(_ context.Context, group *int) ([]team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Team, 0, len(r.store.teams))
	for _, t := range r.store.teams {
		if group != nil && t.Group != *group {
			continue
		}
		out = append(out, t)
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.teams[id]
	return t, ok, nil
}

func (r *TeamRepository) CountByGroup(_ context.Context) (map[int]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[int]int)
	for _, t := range r.store.teams {
		out[t.Group]++
	}
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, teams []team.Team) ([]team.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	seen := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		if _, dup := seen[t.Name]; dup || r.store.teamNameTakenLocked(t.Name, 0) {
			return nil, fmt.Errorf("%w: %s", team.ErrDuplicateName, t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	out := make([]team.Team, 0, len(teams))
	for _, t := range teams {
		r.store.nextTeamID++
		t.ID = r.store.nextTeamID
		r.store.teams[t.ID] = t
		out = append(out, t)
	}
	return out, nil
}

func (r *TeamRepository) Update(_ context.Context, t team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.teams[t.ID]
	if !ok {
		return nil
	}
	if r.store.teamNameTakenLocked(t.Name, t.ID) {
		return fmt.Errorf("%w: %s", team.ErrDuplicateName, t.Name)
	}

	current.Name = t.Name
	current.RegistrationDayOfYear = t.RegistrationDayOfYear
	r.store.teams[t.ID] = current
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for matchID, rows := range r.store.results {
		for _, row := range rows {
			if row.TeamID == id {
				r.store.deleteMatchLocked(matchID)
				break
			}
		}
	}
	delete(r.store.teams, id)
	return nil
}

// DeleteAll removes every team; result rows of those teams go with them.
func (r *TeamRepository) DeleteAll(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.teams = make(map[int64]team.Team)
	for matchID := range r.store.results {
		delete(r.store.results, matchID)
	}
	return nil
}

func sortTeams(items []team.Team) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Group != items[j].Group {
			return items[i].Group < items[j].Group
		}
		return items[i].ID < items[j].ID
	})
}
