package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrNoTrackerIdentity  = errors.New("user has no tracker identity")
	ErrOptedOut           = errors.New("user opted out of reports")
	ErrMissingCredentials = errors.New("missing api credentials")
)

type NoTrackerIdentityError struct{ UserID string }

func (e *NoTrackerIdentityError) Error() string {
	return fmt.Sprintf("user '%s' has no tracker identity", e.UserID)
}
func (e *NoTrackerIdentityError) Is(target error) bool { return target == ErrNoTrackerIdentity }

type OptedOutError struct{ UserID string }

func (e *OptedOutError) Error() string {
	return fmt.Sprintf("user '%s' opted out of reports", e.UserID)
}
func (e *OptedOutError) Is(target error) bool { return target == ErrOptedOut }
