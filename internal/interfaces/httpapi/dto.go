package httpapi

import (
	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/domain/standing"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/usecase"
)

type registerTeamsRequest struct {
	Teams []registerTeamRequest `json:"teams" validate:"required,min=1,dive"`
}

type registerTeamRequest struct {
	TeamName         string `json:"team_name" validate:"required,max=50"`
	RegistrationDate string `json:"registration_date_ddmm" validate:"required,len=5"`
	GroupNumber      int    `json:"group_number" validate:"required,min=1"`
}

type updateTeamRequest struct {
	TeamName         string `json:"team_name" validate:"required,max=50"`
	RegistrationDate string `json:"registration_date_ddmm" validate:"required,len=5"`
}

type submitResultsRequest struct {
	Results []fixtureResultRequest `json:"results" validate:"required,min=1,dive"`
}

type fixtureResultRequest struct {
	Result []teamScoreRequest `json:"result" validate:"required,len=2,dive"`
}

type teamScoreRequest struct {
	TeamName    string `json:"team_name" validate:"required"`
	GoalsScored *int   `json:"goals_scored" validate:"required,min=0"`
}

type teamDTO struct {
	ID               int64  `json:"id"`
	TeamName         string `json:"team_name"`
	RegistrationDate string `json:"registration_date_ddmm"`
	GroupNumber      int    `json:"group_number"`
}

type teamMatchupDTO struct {
	MatchID       int64  `json:"match_id"`
	Round         int    `json:"round_number"`
	OpponentID    int64  `json:"opponent_id"`
	OpponentName  string `json:"opponent_name"`
	GoalsScored   int    `json:"goals_scored"`
	GoalsConceded int    `json:"goals_conceded"`
}

type teamDetailsDTO struct {
	teamDTO
	Matches []teamMatchupDTO `json:"matches"`
}

type fixtureSideDTO struct {
	TeamID      int64  `json:"team_id"`
	TeamName    string `json:"team_name"`
	GroupNumber int    `json:"group_number"`
	GoalsScored int    `json:"goals_scored"`
}

type fixtureDTO struct {
	MatchID int64            `json:"match_id"`
	Round   int              `json:"round_number"`
	Result  []fixtureSideDTO `json:"result"`
}

type submitResultsDTO struct {
	Round    int     `json:"round_number"`
	MatchIDs []int64 `json:"match_ids"`
	Groups   []int   `json:"group_numbers"`
}

type standingDTO struct {
	Position         int    `json:"position"`
	TeamID           int64  `json:"team_id"`
	TeamName         string `json:"team_name"`
	RegistrationDate string `json:"registration_date_ddmm"`
	Played           int    `json:"played"`
	Wins             int    `json:"wins"`
	Draws            int    `json:"draws"`
	Losses           int    `json:"losses"`
	GoalsFor         int    `json:"goals_for"`
	Points           int    `json:"points"`
	AltPoints        int    `json:"alt_points"`
	IsTied           bool   `json:"is_tied"`
	IsQualified      bool   `json:"is_qualified"`
}

type groupRankingDTO struct {
	GroupNumber int           `json:"group_number"`
	Standings   []standingDTO `json:"standings"`
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:               t.ID,
		TeamName:         t.Name,
		RegistrationDate: t.RegistrationDate(),
		GroupNumber:      t.Group,
	}
}

func teamsToDTO(items []team.Team) []teamDTO {
	out := make([]teamDTO, 0, len(items))
	for _, t := range items {
		out = append(out, teamToDTO(t))
	}
	return out
}

func teamDetailsToDTO(details usecase.TeamDetails) teamDetailsDTO {
	matches := make([]teamMatchupDTO, 0, len(details.Matches))
	for _, m := range details.Matches {
		matches = append(matches, teamMatchupDTO{
			MatchID:       m.MatchID,
			Round:         m.Round,
			OpponentID:    m.OpponentID,
			OpponentName:  m.OpponentName,
			GoalsScored:   m.GoalsScored,
			GoalsConceded: m.GoalsConceded,
		})
	}
	return teamDetailsDTO{teamDTO: teamToDTO(details.Team), Matches: matches}
}

func fixturesToDTO(items []match.Fixture) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(items))
	for _, f := range items {
		out = append(out, fixtureDTO{
			MatchID: f.MatchID,
			Round:   f.Round,
			Result:  []fixtureSideDTO{sideToDTO(f.Home), sideToDTO(f.Away)},
		})
	}
	return out
}

func sideToDTO(s match.Side) fixtureSideDTO {
	return fixtureSideDTO{
		TeamID:      s.TeamID,
		TeamName:    s.TeamName,
		GroupNumber: s.Group,
		GoalsScored: s.GoalsScored,
	}
}

func groupRankingToDTO(ranking standing.GroupRanking) groupRankingDTO {
	rows := make([]standingDTO, 0, len(ranking.Standings))
	for _, s := range ranking.Standings {
		rows = append(rows, standingDTO{
			Position:         s.Position,
			TeamID:           s.TeamID,
			TeamName:         s.TeamName,
			RegistrationDate: team.FormatRegistrationDate(s.RegistrationDayOfYear),
			Played:           s.Played,
			Wins:             s.Wins,
			Draws:            s.Draws,
			Losses:           s.Losses,
			GoalsFor:         s.GoalsFor,
			Points:           s.Points,
			AltPoints:        s.AltPoints,
			IsTied:           s.IsTied,
			IsQualified:      s.IsQualified,
		})
	}
	return groupRankingDTO{GroupNumber: ranking.Group, Standings: rows}
}

func groupRankingsToDTO(items []standing.GroupRanking) []groupRankingDTO {
	out := make([]groupRankingDTO, 0, len(items))
	for _, ranking := range items {
		out = append(out, groupRankingToDTO(ranking))
	}
	return out
}

func proposedResultsFromRequest(req submitResultsRequest) []match.ProposedResult {
	out := make([]match.ProposedResult, 0, len(req.Results))
	for _, item := range req.Results {
		home, away := item.Result[0], item.Result[1]
		out = append(out, match.ProposedResult{
			TeamA:  home.TeamName,
			GoalsA: *home.GoalsScored,
			TeamB:  away.TeamName,
			GoalsB: *away.GoalsScored,
		})
	}
	return out
}
