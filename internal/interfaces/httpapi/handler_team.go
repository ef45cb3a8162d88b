package httpapi

import (
	"net/http"

	"github.com/riskibarqy/group-stage/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	group, err := queryInt(r, "group")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.teamService.ListTeams(ctx, group)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamsToDTO(teams))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	details, err := h.teamService.GetTeamDetails(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team details failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamDetailsToDTO(details))
}

func (h *Handler) RegisterTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterTeams")
	defer span.End()

	var req registerTeamsRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.RegisterTeamInput, 0, len(req.Teams))
	for _, item := range req.Teams {
		inputs = append(inputs, usecase.RegisterTeamInput{
			Name:             item.TeamName,
			RegistrationDate: item.RegistrationDate,
			Group:            item.GroupNumber,
		})
	}

	created, err := h.teamService.RegisterTeams(ctx, inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "register teams failed", "count", len(inputs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamsToDTO(created))
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTeam")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateTeamRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.teamService.UpdateTeam(ctx, usecase.UpdateTeamInput{
		TeamID:           teamID,
		Name:             req.TeamName,
		RegistrationDate: req.RegistrationDate,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(updated))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.teamService.DeleteTeam(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "delete team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeNoContent(w)
}
