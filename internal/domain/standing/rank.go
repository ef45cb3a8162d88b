package standing

import (
	"sort"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/team"
)

const (
	pointsPerWin     = 3
	pointsPerDraw    = 1
	altPointsPerWin  = 5
	altPointsPerDraw = 3
	altPointsPerLoss = 1
)

// record accumulates one team's results while ranking.
type record struct {
	teamID                int64
	teamName              string
	group                 int
	registrationDayOfYear int
	wins                  int
	draws                 int
	losses                int
	goalsFor              int
}

func (r *record) add(scored, conceded int) {
	r.goalsFor += scored
	switch {
	case scored > conceded:
		r.wins++
	case scored == conceded:
		r.draws++
	default:
		r.losses++
	}
}

func (r *record) points() int {
	return pointsPerWin*r.wins + pointsPerDraw*r.draws
}

func (r *record) altPoints() int {
	return altPointsPerWin*r.wins + altPointsPerDraw*r.draws + altPointsPerLoss*r.losses
}

// rankKey holds the ordering criteria, most significant first.
type rankKey struct {
	points                int
	goalsFor              int
	altPoints             int
	registrationDayOfYear int
}

func (r *record) key() rankKey {
	return rankKey{
		points:                r.points(),
		goalsFor:              r.goalsFor,
		altPoints:             r.altPoints(),
		registrationDayOfYear: r.registrationDayOfYear,
	}
}

// ahead reports whether a ranks strictly above b.
func (a rankKey) ahead(b rankKey) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	if a.goalsFor != b.goalsFor {
		return a.goalsFor > b.goalsFor
	}
	if a.altPoints != b.altPoints {
		return a.altPoints > b.altPoints
	}
	return a.registrationDayOfYear < b.registrationDayOfYear
}

// Rank builds group tables from a round's result rows and the team roster.
// Only roster teams are ranked, including those without results; a result
// against a team outside the roster still counts for the roster side.
// Teams equal on points, goals, alternate points and registration day share
// a position (1, 1, 3). Teams positioned at or above qualifyingCount qualify.
func Rank(results []match.ResultDetail, roster []team.Team, qualifyingCount int) []GroupRanking {
	records := make(map[int64]*record, len(roster))
	for _, item := range roster {
		records[item.ID] = &record{
			teamID:                item.ID,
			teamName:              item.Name,
			group:                 item.Group,
			registrationDayOfYear: item.RegistrationDayOfYear,
		}
	}

	for _, sides := range pairSides(results) {
		for i, side := range sides {
			rec, ok := records[side.TeamID]
			if !ok {
				continue
			}
			rec.add(side.GoalsScored, sides[1-i].GoalsScored)
		}
	}

	byGroup := make(map[int][]*record)
	for _, rec := range records {
		byGroup[rec.group] = append(byGroup[rec.group], rec)
	}

	groups := make([]int, 0, len(byGroup))
	for group := range byGroup {
		groups = append(groups, group)
	}
	sort.Ints(groups)

	out := make([]GroupRanking, 0, len(groups))
	for _, group := range groups {
		out = append(out, GroupRanking{
			Group:     group,
			Standings: rankGroup(byGroup[group], qualifyingCount),
		})
	}
	return out
}

// pairSides groups rows by match id, keeping only matches with exactly two
// sides, in match id order.
func pairSides(results []match.ResultDetail) [][2]match.ResultDetail {
	rowsByMatch := make(map[int64][]match.ResultDetail, len(results)/2)
	ids := make([]int64, 0, len(results)/2)
	for _, row := range results {
		if _, ok := rowsByMatch[row.MatchID]; !ok {
			ids = append(ids, row.MatchID)
		}
		rowsByMatch[row.MatchID] = append(rowsByMatch[row.MatchID], row)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([][2]match.ResultDetail, 0, len(ids))
	for _, id := range ids {
		rows := rowsByMatch[id]
		if len(rows) != 2 || rows[0].TeamID == rows[1].TeamID {
			continue
		}
		out = append(out, [2]match.ResultDetail{rows[0], rows[1]})
	}
	return out
}

func rankGroup(records []*record, qualifyingCount int) []Standing {
	keys := make(map[int64]rankKey, len(records))
	for _, rec := range records {
		keys[rec.teamID] = rec.key()
	}

	sort.Slice(records, func(i, j int) bool {
		ki, kj := keys[records[i].teamID], keys[records[j].teamID]
		if ki != kj {
			return ki.ahead(kj)
		}
		return records[i].teamID < records[j].teamID
	})

	out := make([]Standing, len(records))
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && keys[records[end].teamID] == keys[records[start].teamID] {
			end++
		}

		position := start + 1
		tied := end-start > 1
		for i := start; i < end; i++ {
			rec := records[i]
			out[i] = Standing{
				TeamID:                rec.teamID,
				TeamName:              rec.teamName,
				Group:                 rec.group,
				RegistrationDayOfYear: rec.registrationDayOfYear,
				Played:                rec.wins + rec.draws + rec.losses,
				Wins:                  rec.wins,
				Draws:                 rec.draws,
				Losses:                rec.losses,
				GoalsFor:              rec.goalsFor,
				Points:                rec.points(),
				AltPoints:             rec.altPoints(),
				Position:              position,
				IsTied:                tied,
				IsQualified:           position <= qualifyingCount,
			}
		}
		start = end
	}
	return out
}
