package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/group-stage/internal/domain/team"
	qb "github.com/riskibarqy/group-stage/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByNames(ctx context.Context, names []string) ([]team.Team, error) {
	if len(names) == 0 {
		return []team.Team{}, nil
	}

	query, args, err := qb.Select(teamColumns...).
		From("teams").
		Where(qb.In("name", names)).
		OrderBy("group_number", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by names query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by names: %w", err)
	}
	return teamsFromRows(rows), nil
}

func (r *TeamRepository) ListByGroup(ctx context.Context, group *int) ([]team.Team, error) {
	builder := qb.Select(teamColumns...).From("teams")
	if group != nil {
		builder.Where(qb.Eq("group_number", *group))
	}
	query, args, err := builder.OrderBy("group_number", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by group query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by group: %w", err)
	}
	return teamsFromRows(rows), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).
		From("teams").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) CountByGroup(ctx context.Context) (map[int]int, error) {
	query, args, err := qb.Select("group_number", "COUNT(*) AS team_count").
		From("teams").
		GroupBy("group_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count teams by group query: %w", err)
	}

	var rows []groupCountModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count teams by group: %w", err)
	}

	out := make(map[int]int, len(rows))
	for _, row := range rows {
		out[row.GroupNumber] = row.TeamCount
	}
	return out, nil
}

// Create inserts the batch as one multi-row statement, so it is atomic
// without an explicit transaction.
func (r *TeamRepository) Create(ctx context.Context, teams []team.Team) ([]team.Team, error) {
	if len(teams) == 0 {
		return []team.Team{}, nil
	}

	models := make([]teamInsertModel, 0, len(teams))
	for _, t := range teams {
		models = append(models, teamInsertModel{
			Name:                  t.Name,
			GroupNumber:           t.Group,
			RegistrationDayOfYear: t.RegistrationDayOfYear,
		})
	}
	query, args, err := qb.InsertModels("teams", models, "RETURNING "+strings.Join(teamColumns, ", "))
	if err != nil {
		return nil, fmt.Errorf("build insert teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isUniqueViolation(err, teamsNameConstraint) {
			return nil, fmt.Errorf("%w: %v", team.ErrDuplicateName, err)
		}
		return nil, fmt.Errorf("insert teams: %w", err)
	}
	if len(rows) != len(teams) {
		return nil, fmt.Errorf("insert teams: expected %d rows, got %d", len(teams), len(rows))
	}
	return teamsFromRows(rows), nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	query, args, err := qb.Update("teams").
		Set("name", t.Name).
		Set("registration_day_of_year", t.RegistrationDayOfYear).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, teamsNameConstraint) {
			return fmt.Errorf("%w: %v", team.ErrDuplicateName, err)
		}
		return fmt.Errorf("update team: %w", err)
	}
	return nil
}

// Delete removes every match the team took part in before the team itself.
// The foreign key only cascades result rows, which would leave the opponent
// holding a one-sided match.
func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	playedBy := qb.Select("match_id").From("match_results").Where(qb.Eq("team_id", id))
	query, args, err := qb.DeleteFrom("matches").Where(qb.InSubquery("id", playedBy)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team matches: %w", err)
	}

	query, args, err = qb.DeleteFrom("teams").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete team: %w", err)
	}
	return nil
}

func (r *TeamRepository) DeleteAll(ctx context.Context) error {
	query, args, err := qb.DeleteFrom("teams").All().ToSQL()
	if err != nil {
		return fmt.Errorf("build delete all teams query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete all teams: %w", err)
	}
	return nil
}

func teamsFromRows(rows []teamTableModel) []team.Team {
	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:                    row.ID,
		Name:                  row.Name,
		Group:                 row.GroupNumber,
		RegistrationDayOfYear: row.RegistrationDayOfYear,
	}
}
