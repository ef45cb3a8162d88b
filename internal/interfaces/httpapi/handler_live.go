package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/group-stage/internal/domain/standing"
	"github.com/riskibarqy/group-stage/internal/domain/subscription"
	"github.com/riskibarqy/group-stage/internal/domain/team"
	"github.com/riskibarqy/group-stage/internal/infrastructure/realtime"
	"github.com/riskibarqy/group-stage/internal/usecase"
)

// LivePublisher converts domain payloads into the REST DTOs before handing
// them to the websocket hub.
type LivePublisher struct {
	hub *realtime.Hub
}

func NewLivePublisher(hub *realtime.Hub) *LivePublisher {
	return &LivePublisher{hub: hub}
}

func (p *LivePublisher) Publish(ctx context.Context, topic subscription.Topic, payload any) error {
	switch v := payload.(type) {
	case standing.GroupRanking:
		return p.hub.Publish(ctx, topic, groupRankingToDTO(v))
	case []team.Team:
		return p.hub.Publish(ctx, topic, teamsToDTO(v))
	default:
		return p.hub.Publish(ctx, topic, payload)
	}
}

// StreamStandings subscribes to one group's table for a round. The current
// table is sent first.
func (h *Handler) StreamStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamStandings")
	defer span.End()

	round, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	group, err := queryInt(r, "group")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if group == nil {
		writeError(ctx, w, fmt.Errorf("%w: group query parameter is required", usecase.ErrInvalidInput))
		return
	}

	rankings, err := h.standingService.GetStandings(ctx, round, group, usecase.DefaultQualifyingCount)
	if err != nil {
		h.logger.WarnContext(ctx, "load standings snapshot failed", "round", round, "group", *group, "error", err)
		writeError(ctx, w, err)
		return
	}
	snapshot := groupRankingDTO{GroupNumber: *group, Standings: []standingDTO{}}
	if len(rankings) > 0 {
		snapshot = groupRankingToDTO(rankings[0])
	}

	if err := h.hub.Serve(w, r, subscription.StandingsTopic(round, *group), snapshot); err != nil {
		h.logger.WarnContext(ctx, "standings websocket rejected", "round", round, "group", *group, "error", err)
	}
}

// StreamTeams subscribes to roster changes. The current roster is sent first.
func (h *Handler) StreamTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamTeams")
	defer span.End()

	teams, err := h.teamService.ListTeams(ctx, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "load roster snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	if err := h.hub.Serve(w, r, subscription.TeamsTopic(), teamsToDTO(teams)); err != nil {
		h.logger.WarnContext(ctx, "teams websocket rejected", "error", err)
	}
}
