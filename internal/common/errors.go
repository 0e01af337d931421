// Package common provides shared utilities and types used across the
// application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Manual-override validation errors. These are expected operator
	// mistakes, reported as structured failures rather than raised.
	ErrEntryNotFound   = errors.New("ledger entry not found")
	ErrBankNotFound    = errors.New("bank transaction not found")
	ErrEntryClaimed    = errors.New("ledger entry already claimed")
	ErrAmountMismatch  = errors.New("amounts do not balance")
	ErrAlreadySettled  = errors.New("bank transaction already settled")
	ErrUnknownProposal = errors.New("unknown proposal")

	// State-file errors.
	ErrStateCorrupted = errors.New("state file corrupted")
	ErrInvalidStatus  = errors.New("invalid status")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
