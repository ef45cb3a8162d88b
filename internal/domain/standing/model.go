package standing

// Standing is one team's derived row in a group table.
type Standing struct {
	TeamID                int64
	TeamName              string
	Group                 int
	RegistrationDayOfYear int
	Played                int
	Wins                  int
	Draws                 int
	Losses                int
	GoalsFor              int
	Points                int
	AltPoints             int
	Position              int
	IsTied                bool
	IsQualified           bool
}

// GroupRanking is the ordered table of one group.
type GroupRanking struct {
	Group     int
	Standings []Standing
}
