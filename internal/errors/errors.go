package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tracking core. Operations wrap these with
// context via the constructors below; callers match with Is and turn
// them into user-facing text at the transport boundary.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrChallengeExpired = errors.New("challenge expired")
	ErrValidation       = errors.New("validation failed")
)

func InvalidArgumentf(format string, args ...interface{}) error {
	return wrapf(ErrInvalidArgument, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return wrapf(ErrNotFound, format, args...)
}

func InvalidStatef(format string, args ...interface{}) error {
	return wrapf(ErrInvalidState, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return wrapf(ErrConflict, format, args...)
}

func Expiredf(format string, args ...interface{}) error {
	return wrapf(ErrChallengeExpired, format, args...)
}

func Validationf(format string, args ...interface{}) error {
	return wrapf(ErrValidation, format, args...)
}

func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Is reports whether err matches target. Re-exported so callers don't
// need a second import of the standard errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}
