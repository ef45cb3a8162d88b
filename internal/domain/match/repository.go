package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	// ResultsByRound returns both rows of every match in round involving a
	// team of group, ordered by match id then team id. A nil group returns
	// every match of the round.
	ResultsByRound(ctx context.Context, round int, group *int) ([]ResultDetail, error)
	// MatchupsByRound returns both rows of every match in round that involves
	// any of teamIDs.
	MatchupsByRound(ctx context.Context, round int, teamIDs []int64) ([]Matchup, error)
	HistoryByTeam(ctx context.Context, teamID int64) ([]TeamMatchup, error)
	// InTx runs fn in one repeatable-read transaction, committing when fn
	// returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	DeleteAll(ctx context.Context) error
}

// Tx is the write surface available inside InTx.
type Tx interface {
	// CreateMatches inserts count matches for round and returns their ids.
	CreateMatches(ctx context.Context, round, count int) ([]int64, error)
	CreateResults(ctx context.Context, results []Result) error
}
