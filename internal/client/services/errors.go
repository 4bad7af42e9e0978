package services

import "errors"

var (
	// ErrOperationInProgress is returned when an auth operation starts while
	// another one has not finished.
	ErrOperationInProgress = errors.New("another authentication operation is in progress")
	ErrOnboardingRequired  = errors.New("complete onboarding first")
	ErrNotPermitted        = errors.New("not permitted for your role")
	ErrMalformedResponse   = errors.New("malformed authentication response")
)
