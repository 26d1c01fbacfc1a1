package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

// LedgerRequest selects an account by full name, or by guid when AccountGUID
// is set, and the page of its ledger to show.
type LedgerRequest struct {
	AccountName string
	AccountGUID string
	Page        int
}

// LedgerLine is one split of the shown account.
type LedgerLine struct {
	Split       *book.Split
	Transaction *book.Transaction
	// ContraAccount is the other side of a two-split transaction, nil
	// otherwise.
	ContraAccount *book.Account
	// Balance is the account balance after this split.
	Balance decimal.Decimal
}

// LedgerPage is everything the account view shows.
type LedgerPage struct {
	Account *book.Account
	// Subaccounts are the direct children of Account. Their own children hang
	// off each entry.
	Subaccounts []*book.Account
	Lines       []*LedgerLine
	Page        int
	NumPages    int
	Today       time.Time

	AccountTypes             []book.AccountType
	Accounts                 []*book.Account
	Currencies               []*book.Commodity
	PreselectedContraAccount string
}
