package match

import crerr "github.com/cockroachdb/errors"

var (
	ErrSelfMatch            = crerr.New("team cannot play itself")
	ErrDuplicateFixture     = crerr.New("fixture already recorded for round")
	ErrUnknownTeam          = crerr.New("unknown team")
	ErrCrossGroupNotAllowed = crerr.New("cross-group fixture not allowed before final round")
	ErrInvalidScore         = crerr.New("goals scored must be >= 0")
	ErrLockTimeout          = crerr.New("match results are locked by another writer")
	ErrPersistenceFailure   = crerr.New("match results persistence failed")
)
