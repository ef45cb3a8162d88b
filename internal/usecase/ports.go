package usecase

import (
	"context"
	"sort"

	"github.com/riskibarqy/group-stage/internal/platform/lock"
)

// Locker is the distributed lock surface used by the write paths.
type Locker interface {
	WithLock(ctx context.Context, key string, opts lock.Options, fn func(ctx context.Context) error) error
	WithLocks(ctx context.Context, keys []string, opts lock.Options, fn func(ctx context.Context) error) error
}

// ChangeNotifier is told about committed writes so live views can refresh.
// Implementations must not block the caller.
type ChangeNotifier interface {
	// RoundChanged reports new results in round touching groups.
	RoundChanged(ctx context.Context, round int, groups []int)
	// RosterChanged reports a team mutation; nil groups means every group.
	RosterChanged(ctx context.Context, groups []int)
}

type nopNotifier struct{}

func (nopNotifier) RoundChanged(context.Context, int, []int) {}
func (nopNotifier) RosterChanged(context.Context, []int)     {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func sortedGroups(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for group := range set {
		out = append(out, group)
	}
	sort.Ints(out)
	return out
}
