package team

import (
	"context"
	"errors"
)

var ErrDuplicateName = errors.New("team name already exists")

// Repository describes team persistence needs from use cases.
type Repository interface {
	// ListByNames returns the teams whose names are in names; unknown names are skipped.
	ListByNames(ctx context.Context, names []string) ([]Team, error)
	// ListByGroup returns every team when group is nil.
	ListByGroup(ctx context.Context, group *int) ([]Team, error)
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	CountByGroup(ctx context.Context) (map[int]int, error)
	// Create inserts all teams or none; ErrDuplicateName on a name clash.
	Create(ctx context.Context, teams []Team) ([]Team, error)
	Update(ctx context.Context, t Team) error
	// Delete removes the team together with every match it played.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
