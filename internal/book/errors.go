package book

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDatabaseLocked is returned when another writer holds the book lock and
	// the caller did not ask to open the book regardless.
	ErrDatabaseLocked = errors.New("book is locked by another user")
	// ErrReadOnly is returned by write operations on a read-only session.
	ErrReadOnly = errors.New("book session is read-only")
)

// ValidationError reports a malformed or out-of-range request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AccountNotFoundError reports an account path or guid that does not resolve.
type AccountNotFoundError struct {
	Name string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account not found: %q", e.Name)
}

// TransactionNotFoundError reports a transaction guid that does not resolve.
type TransactionNotFoundError struct {
	GUID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction not found: %q", e.GUID)
}

// IntegrityError reports a request that the forms should never have produced,
// such as a transaction between accounts of different commodities.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Message
}

// StatusCode maps an error to the HTTP status it is reported with.
func StatusCode(err error) int {
	var (
		validationErr  *ValidationError
		accountErr     *AccountNotFoundError
		transactionErr *TransactionNotFoundError
		integrityErr   *IntegrityError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &integrityErr):
		return http.StatusBadRequest
	case errors.As(err, &accountErr), errors.As(err, &transactionErr):
		return http.StatusNotFound
	case errors.Is(err, ErrDatabaseLocked):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
