package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation      = errors.New("invalid input")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInsufficientDue = errors.New("payment exceeds due amount")
	ErrHasTransactions = errors.New("member has recorded transactions")
	ErrUnauthenticated = errors.New("no active session")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrPersistence     = errors.New("persistence operation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeMemberNotFound  = "MEMBER_NOT_FOUND"
	ErrCodeInsufficientDue = "INSUFFICIENT_DUE"
	ErrCodeHasTransactions = "HAS_TRANSACTIONS"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeEmailTaken      = "EMAIL_TAKEN"
	ErrCodeBadCredentials  = "BAD_CREDENTIALS"
	ErrCodePersistence     = "PERSISTENCE_ERROR"
)

// Wrap common errors with business context
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapInsufficientDue(due, requested string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientDue,
		fmt.Sprintf("Payment of %s exceeds due amount %s", requested, due),
		ErrInsufficientDue,
	)
}

func WrapHasTransactions(memberID string, count int) *BusinessError {
	return NewBusinessError(
		ErrCodeHasTransactions,
		fmt.Sprintf("Member with ID %s has %d recorded transactions and cannot be deleted", memberID, count),
		ErrHasTransactions,
	)
}

func WrapUnauthenticated() *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthenticated,
		"Operation requires an active session",
		ErrUnauthenticated,
	)
}

func WrapEmailTaken(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmailTaken,
		fmt.Sprintf("Email %s is already registered", email),
		ErrEmailTaken,
	)
}

func WrapBadCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeBadCredentials,
		"Invalid email or password",
		ErrBadCredentials,
	)
}

func WrapPersistence(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"persistence operation failed",
		err,
	)
}

// CodeOf returns the business error code, or PERSISTENCE_ERROR for errors
// that did not originate in this package.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrCodePersistence
}
