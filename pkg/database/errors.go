package database

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories react to.
const (
	CodeUniqueViolation      = "23505"
	CodeCheckViolation       = "23514"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// ErrorCode returns the SQLSTATE carried by err, or "" when err is not a driver error.
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsRetryable reports whether the transaction can be replayed from the start.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return true
	}
	return false
}

// IsUniqueViolation reports a unique-constraint failure, optionally restricted to the named constraints.
func IsUniqueViolation(err error, constraints ...string) bool {
	return isConstraint(err, CodeUniqueViolation, constraints)
}

// IsCheckViolation reports a check failure, optionally restricted to the named constraints.
func IsCheckViolation(err error, constraints ...string) bool {
	return isConstraint(err, CodeCheckViolation, constraints)
}

func isConstraint(err error, code string, constraints []string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, name := range constraints {
		if pqErr.Constraint == name {
			return true
		}
	}
	return false
}
