package actions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

// CreateTransaction books a two-split transaction between an account and its
// contra account in the account's currency.
type CreateTransaction struct {
	AccountName       string
	ContraAccountName string
	Date              time.Time
	Description       string
	Value             decimal.Decimal
	Sign              int

	// Account is the receiving account, set once Perform succeeds.
	Account *book.Account
	// GUID of the created transaction.
	GUID string
}

func (t *CreateTransaction) Perform(ctx context.Context, writer book.Writer) error {
	chart, err := writer.Chart(ctx)
	if err != nil {
		return err
	}
	pair, err := resolvePair(chart, t.AccountName, t.ContraAccountName)
	if err != nil {
		return err
	}

	tx := &book.Transaction{
		GUID:        book.NewGUID(),
		Currency:    pair.account.Commodity,
		Description: t.Description,
		PostDate:    t.Date,
		EnterDate:   now(),
	}
	tx.Splits = pair.splits(tx.GUID, t.Value, t.Sign)

	if err := writer.InsertTransaction(ctx, tx); err != nil {
		return err
	}

	t.Account = pair.account
	t.GUID = tx.GUID
	return nil
}
