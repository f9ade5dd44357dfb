package repository

import "errors"

// Sentinel errors for outcomes decided inside a transaction. Services map them
// to API errors with errors.Is.
var (
	// ErrEmailTaken is returned when an account already exists for the email.
	ErrEmailTaken = errors.New("account email already registered")
	// ErrRoleNotFound is returned when a required role name does not resolve.
	ErrRoleNotFound = errors.New("role not found")
	// ErrAlreadyDecided is returned when an application has been approved or rejected already.
	ErrAlreadyDecided = errors.New("application already decided")
	// ErrOpenRequestExists is returned when the mentee already has a pending or accepted request with the mentor.
	ErrOpenRequestExists = errors.New("open mentorship request exists for pair")
	// ErrCapacityReached is returned when the storage capacity check rejects an accepted request.
	ErrCapacityReached = errors.New("mentor capacity reached")
	// ErrMentorProfileExists is returned when the account already has a mentor profile.
	ErrMentorProfileExists = errors.New("mentor profile already exists")
)
