package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/group-stage/internal/domain/team"
	basecache "github.com/riskibarqy/group-stage/internal/platform/cache"
)

const teamListPrefix = "team:list:"

// TeamRepository serves roster listings from an in-process cache and drops
// every cached listing on any write that goes through it.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[[]team.Team]
}

func NewTeamRepository(next team.Repository, cache *basecache.Store[[]team.Team]) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) ListByNames(ctx context.Context, names []string) ([]team.Team, error) {
	return r.next.ListByNames(ctx, names)
}

func (r *TeamRepository) ListByGroup(ctx context.Context, group *int) ([]team.Team, error) {
	key := teamListPrefix + "all"
	if group != nil {
		key = teamListPrefix + strconv.Itoa(*group)
	}

	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]team.Team, error) {
		items, err := r.next.ListByGroup(ctx, group)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *TeamRepository) CountByGroup(ctx context.Context) (map[int]int, error) {
	return r.next.CountByGroup(ctx)
}

func (r *TeamRepository) Create(ctx context.Context, teams []team.Team) ([]team.Team, error) {
	defer r.invalidate(ctx)
	return r.next.Create(ctx, teams)
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	defer r.invalidate(ctx)
	return r.next.Update(ctx, t)
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	defer r.invalidate(ctx)
	return r.next.Delete(ctx, id)
}

func (r *TeamRepository) DeleteAll(ctx context.Context) error {
	defer r.invalidate(ctx)
	return r.next.DeleteAll(ctx)
}

func (r *TeamRepository) invalidate(ctx context.Context) {
	r.cache.DeletePrefix(ctx, teamListPrefix)
}
