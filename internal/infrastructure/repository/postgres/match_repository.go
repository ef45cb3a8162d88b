package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	qb "github.com/riskibarqy/group-stage/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ResultsByRound(ctx context.Context, round int, group *int) ([]match.ResultDetail, error) {
	builder := qb.Select(
		"r.match_id",
		"m.round_number",
		"r.team_id",
		"t.name AS team_name",
		"t.group_number",
		"t.registration_day_of_year",
		"r.goals_scored",
	).
		From("match_results r").
		Join("matches m", "m.id = r.match_id").
		Join("teams t", "t.id = r.team_id").
		Where(qb.Eq("m.round_number", round))
	if group != nil {
		inGroup := qb.Select("gr.match_id").
			From("match_results gr").
			Join("teams gt", "gt.id = gr.team_id").
			Where(qb.Eq("gt.group_number", *group))
		builder.Where(qb.InSubquery("r.match_id", inGroup))
	}

	query, args, err := builder.OrderBy("r.match_id", "r.team_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select results by round query: %w", err)
	}

	var rows []resultDetailModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select results by round: %w", err)
	}

	out := make([]match.ResultDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.ResultDetail{
			MatchID:               row.MatchID,
			Round:                 row.RoundNumber,
			TeamID:                row.TeamID,
			TeamName:              row.TeamName,
			Group:                 row.GroupNumber,
			RegistrationDayOfYear: row.RegistrationDayOfYear,
			GoalsScored:           row.GoalsScored,
		})
	}
	return out, nil
}

func (r *MatchRepository) MatchupsByRound(ctx context.Context, round int, teamIDs []int64) ([]match.Matchup, error) {
	if len(teamIDs) == 0 {
		return []match.Matchup{}, nil
	}

	involving := qb.Select("ir.match_id").From("match_results ir").Where(qb.In("ir.team_id", teamIDs))
	query, args, err := qb.Select("r.match_id", "r.team_id", "t.name AS team_name").
		From("match_results r").
		Join("matches m", "m.id = r.match_id").
		Join("teams t", "t.id = r.team_id").
		Where(
			qb.Eq("m.round_number", round),
			qb.InSubquery("r.match_id", involving),
		).
		OrderBy("r.match_id", "r.team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matchups by round query: %w", err)
	}

	var rows []matchupModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matchups by round: %w", err)
	}

	out := make([]match.Matchup, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Matchup{MatchID: row.MatchID, TeamID: row.TeamID, TeamName: row.TeamName})
	}
	return out, nil
}

func (r *MatchRepository) HistoryByTeam(ctx context.Context, teamID int64) ([]match.TeamMatchup, error) {
	query, args, err := qb.Select(
		"m.id AS match_id",
		"m.round_number",
		"o.team_id AS opponent_id",
		"t.name AS opponent_name",
		"s.goals_scored",
		"o.goals_scored AS goals_conceded",
	).
		From("match_results s").
		Join("matches m", "m.id = s.match_id").
		Join("match_results o", "o.match_id = s.match_id AND o.team_id <> s.team_id").
		Join("teams t", "t.id = o.team_id").
		Where(qb.Eq("s.team_id", teamID)).
		OrderBy("m.round_number", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team history query: %w", err)
	}

	var rows []teamMatchupModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team history: %w", err)
	}

	out := make([]match.TeamMatchup, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.TeamMatchup{
			MatchID:       row.MatchID,
			Round:         row.RoundNumber,
			OpponentID:    row.OpponentID,
			OpponentName:  row.OpponentName,
			GoalsScored:   row.GoalsScored,
			GoalsConceded: row.GoalsConceded,
		})
	}
	return out, nil
}

func (r *MatchRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx match.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("begin match tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &matchTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) DeleteAll(ctx context.Context) error {
	query, args, err := qb.DeleteFrom("matches").All().ToSQL()
	if err != nil {
		return fmt.Errorf("build delete all matches query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete all matches: %w", err)
	}
	return nil
}

type matchTx struct {
	tx *sqlx.Tx
}

func (t *matchTx) CreateMatches(ctx context.Context, round, count int) ([]int64, error) {
	if count <= 0 {
		return []int64{}, nil
	}

	models := make([]matchInsertModel, count)
	for i := range models {
		models[i].RoundNumber = round
	}
	query, args, err := qb.InsertModels("matches", models, "RETURNING id")
	if err != nil {
		return nil, fmt.Errorf("build insert matches query: %w", err)
	}

	var ids []int64
	if err := t.tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("insert matches: %w", err)
	}
	return ids, nil
}

func (t *matchTx) CreateResults(ctx context.Context, results []match.Result) error {
	if len(results) == 0 {
		return nil
	}

	models := make([]matchResultInsertModel, 0, len(results))
	for _, res := range results {
		models = append(models, matchResultInsertModel{
			MatchID:     res.MatchID,
			TeamID:      res.TeamID,
			GoalsScored: res.GoalsScored,
		})
	}
	query, args, err := qb.InsertModels("match_results", models, "")
	if err != nil {
		return fmt.Errorf("build insert match results query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert match results: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert match results rows affected: %w", err)
	}
	if affected != int64(len(results)) {
		return fmt.Errorf("insert match results: expected %d rows, got %d", len(results), affected)
	}
	return nil
}
