package actions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

// EditTransaction rewrites an existing two-split transaction. Its splits are
// replaced wholesale.
type EditTransaction struct {
	GUID              string
	AccountName       string
	ContraAccountName string
	Date              time.Time
	Description       string
	Value             decimal.Decimal
	Sign              int

	Account *book.Account
}

func (t *EditTransaction) Perform(ctx context.Context, writer book.Writer) error {
	chart, err := writer.Chart(ctx)
	if err != nil {
		return err
	}
	pair, err := resolvePair(chart, t.AccountName, t.ContraAccountName)
	if err != nil {
		return err
	}

	tx, err := writer.Transaction(ctx, t.GUID)
	if err != nil {
		return err
	}
	if len(tx.Splits) > 2 {
		return book.NewValidationError("guid", "transaction %s has %d splits, only two can be edited", t.GUID, len(tx.Splits))
	}

	tx.Description = t.Description
	tx.PostDate = t.Date
	tx.Currency = pair.account.Commodity
	tx.Splits = pair.splits(tx.GUID, t.Value, t.Sign)

	if err := writer.ReplaceTransaction(ctx, tx); err != nil {
		return err
	}

	t.Account = pair.account
	return nil
}
