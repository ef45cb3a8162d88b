package postgres

import "time"

const teamsNameConstraint = "teams_name_key"

type teamTableModel struct {
	ID                    int64     `db:"id"`
	Name                  string    `db:"name"`
	GroupNumber           int       `db:"group_number"`
	RegistrationDayOfYear int       `db:"registration_day_of_year"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	Name                  string `db:"name"`
	GroupNumber           int    `db:"group_number"`
	RegistrationDayOfYear int    `db:"registration_day_of_year"`
}

type groupCountModel struct {
	GroupNumber int `db:"group_number"`
	TeamCount   int `db:"team_count"`
}

var teamColumns = []string{"id", "name", "group_number", "registration_day_of_year", "created_at", "updated_at"}
