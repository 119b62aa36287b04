package verification

import "errors"

var (
	// ErrNotFound is returned when a referenced request, organization or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when approving a request that is no longer pending.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingVerification is returned to authenticated users whose domain is not yet verified.
	ErrPendingVerification = errors.New("account pending domain verification")
	// ErrNoActiveEnrollment is returned to verified students with no enrollment at a verified university.
	ErrNoActiveEnrollment = errors.New("no enrollment at a verified university")
)
