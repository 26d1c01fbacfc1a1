package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

// TransactionRequest describes a two-split transaction as entered in the
// account view: a non-negative magnitude and the direction it flows for the
// account.
type TransactionRequest struct {
	AccountName       string
	ContraAccountName string
	Date              time.Time
	Description       string
	Value             decimal.Decimal
	// Sign is +1 when the value is credited to the account and -1 when it is
	// debited.
	Sign int
}

func (r *TransactionRequest) Validate() error {
	if r.Value.IsNegative() {
		return book.NewValidationError("value", "must not be negative")
	}
	if r.Sign != 1 && r.Sign != -1 {
		return book.NewValidationError("sign", "must be +1 or -1")
	}
	return nil
}

// EditTransactionRequest rewrites the transaction identified by GUID.
type EditTransactionRequest struct {
	GUID string
	TransactionRequest
}

func (r *EditTransactionRequest) Validate() error {
	if r.GUID == "" {
		return book.NewValidationError("guid", "is required")
	}
	return r.TransactionRequest.Validate()
}

// DeleteTransactionRequest removes a transaction. AccountName is only the
// account shown afterwards.
type DeleteTransactionRequest struct {
	GUID        string
	AccountName string
}

func (r *DeleteTransactionRequest) Validate() error {
	if r.GUID == "" {
		return book.NewValidationError("guid", "is required")
	}
	return nil
}
