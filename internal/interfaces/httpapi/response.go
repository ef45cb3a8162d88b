package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/group-stage/internal/domain/match"
	"github.com/riskibarqy/group-stage/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "group-stage"

	// retryAfterSeconds is advertised on lock contention and rate limiting.
	retryAfterSeconds = 1
)

var errRateLimited = errors.New("too many requests")

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
	Retryable  bool
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	markSpanError(ctx, mapped.HTTPStatus, mapped.Reason, err)
	if mapped.Retryable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = "internal server error"
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

// mapError gives each match-write failure its own reason so clients can tell
// a rejected batch from a retryable one.
func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case crerr.Is(err, match.ErrSelfMatch):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "selfMatch", Status: "INVALID_ARGUMENT"}
	case crerr.Is(err, match.ErrInvalidScore):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidScore", Status: "INVALID_ARGUMENT"}
	case crerr.Is(err, match.ErrDuplicateFixture):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "duplicateFixture", Status: "ALREADY_EXISTS"}
	case crerr.Is(err, match.ErrUnknownTeam):
		return mappedError{HTTPStatus: http.StatusUnprocessableEntity, Reason: "unknownTeam", Status: "FAILED_PRECONDITION"}
	case crerr.Is(err, match.ErrCrossGroupNotAllowed):
		return mappedError{HTTPStatus: http.StatusUnprocessableEntity, Reason: "crossGroupNotAllowed", Status: "FAILED_PRECONDITION"}
	case crerr.Is(err, match.ErrLockTimeout):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "lockTimeout", Status: "UNAVAILABLE", Retryable: true}
	case crerr.Is(err, match.ErrPersistenceFailure):
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "persistenceFailure", Status: "INTERNAL"}
	case errors.Is(err, usecase.ErrDuplicateTeamName):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "duplicateTeamName", Status: "ALREADY_EXISTS"}
	case errors.Is(err, usecase.ErrGroupFull):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "groupFull", Status: "RESOURCE_EXHAUSTED"}
	case errors.Is(err, usecase.ErrConflict):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "conflict", Status: "ABORTED"}
	case errors.Is(err, usecase.ErrLocked):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "locked", Status: "UNAVAILABLE", Retryable: true}
	case errors.Is(err, errRateLimited):
		return mappedError{HTTPStatus: http.StatusTooManyRequests, Reason: "rateLimited", Status: "RESOURCE_EXHAUSTED", Retryable: true}
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE", Retryable: true}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	}
}
