package postgres

type matchInsertModel struct {
	RoundNumber int `db:"round_number"`
}

type matchResultInsertModel struct {
	MatchID     int64 `db:"match_id"`
	TeamID      int64 `db:"team_id"`
	GoalsScored int   `db:"goals_scored"`
}

type resultDetailModel struct {
	MatchID               int64  `db:"match_id"`
	RoundNumber           int    `db:"round_number"`
	TeamID                int64  `db:"team_id"`
	TeamName              string `db:"team_name"`
	GroupNumber           int    `db:"group_number"`
	RegistrationDayOfYear int    `db:"registration_day_of_year"`
	GoalsScored           int    `db:"goals_scored"`
}

type matchupModel struct {
	MatchID  int64  `db:"match_id"`
	TeamID   int64  `db:"team_id"`
	TeamName string `db:"team_name"`
}

type teamMatchupModel struct {
	MatchID       int64  `db:"match_id"`
	RoundNumber   int    `db:"round_number"`
	OpponentID    int64  `db:"opponent_id"`
	OpponentName  string `db:"opponent_name"`
	GoalsScored   int    `db:"goals_scored"`
	GoalsConceded int    `db:"goals_conceded"`
}
