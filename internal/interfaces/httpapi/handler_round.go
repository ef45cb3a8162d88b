package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/group-stage/internal/usecase"
)

func (h *Handler) SubmitResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitResults")
	defer span.End()

	round, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitResultsRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.matchService.SubmitResults(ctx, usecase.SubmitResultsInput{
		Round:   round,
		Results: proposedResultsFromRequest(req),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit results failed", "round", round, "fixtures", len(req.Results), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submitResultsDTO{
		Round:    out.Round,
		MatchIDs: out.MatchIDs,
		Groups:   out.Groups,
	})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListResults")
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

	fixtures, err := h.matchService.ListResults(ctx, round, group)
	if err != nil {
		h.logger.WarnContext(ctx, "list results failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(fixtures))
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
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
	qualifyingCount := usecase.DefaultQualifyingCount
	if override, err := queryInt(r, "qualifying_count"); err != nil {
		writeError(ctx, w, err)
		return
	} else if override != nil {
		if *override < 0 {
			writeError(ctx, w, fmt.Errorf("%w: qualifying_count must be >= 0", usecase.ErrInvalidInput))
			return
		}
		qualifyingCount = *override
	}

	rankings, err := h.standingService.GetStandings(ctx, round, group, qualifyingCount)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupRankingsToDTO(rankings))
}

func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetAll")
	defer span.End()

	if err := h.adminService.ResetAll(ctx); err != nil {
		h.logger.ErrorContext(ctx, "reset tournament data failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeNoContent(w)
}
