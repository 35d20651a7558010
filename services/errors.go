package services

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrValidation covers bad team ids, bad week numbers and malformed requests
	ErrValidation = crerr.New("validation failed")

	// ErrGameLocked is the expected outcome of a write after kickoff
	ErrGameLocked = crerr.New("picks are locked")

	// ErrNotFound is returned when a referenced game, user or pick does not exist
	ErrNotFound = crerr.New("not found")

	// ErrFeedUnavailable marks timeouts, non-2xx responses and undecodable provider bodies
	ErrFeedUnavailable = crerr.New("score feed unavailable")
)

// IsGameLocked reports whether err is, or wraps, ErrGameLocked
func IsGameLocked(err error) bool { return crerr.Is(err, ErrGameLocked) }

// IsValidation reports whether err is, or wraps, ErrValidation
func IsValidation(err error) bool { return crerr.Is(err, ErrValidation) }

// IsNotFound reports whether err is, or wraps, ErrNotFound
func IsNotFound(err error) bool { return crerr.Is(err, ErrNotFound) }

// IsFeedUnavailable reports whether err is, or was marked as, ErrFeedUnavailable
func IsFeedUnavailable(err error) bool { return crerr.Is(err, ErrFeedUnavailable) }

func validationErrorf(format string, args ...interface{}) error {
	return crerr.Wrapf(ErrValidation, format, args...)
}

func notFoundErrorf(format string, args ...interface{}) error {
	return crerr.Wrapf(ErrNotFound, format, args...)
}

func lockedError(gameID int) error {
	return crerr.Wrapf(ErrGameLocked, "game %d", gameID)
}
