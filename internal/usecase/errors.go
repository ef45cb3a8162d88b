package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrLocked means another writer holds the roster lock; retry later.
	ErrLocked = errors.New("resource is locked by another writer")
)

var (
	ErrDuplicateTeamName = fmt.Errorf("%w: team name already registered", ErrConflict)
	ErrGroupFull         = fmt.Errorf("%w: group is full", ErrConflict)
)
