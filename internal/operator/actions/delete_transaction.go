package actions

import (
	"context"

	"github.com/carson-networks/book-server/internal/book"
)

// DeleteTransaction removes a transaction with all of its splits. AccountName
// only selects the account shown afterwards.
type DeleteTransaction struct {
	GUID        string
	AccountName string

	Account *book.Account
}

func (t *DeleteTransaction) Perform(ctx context.Context, writer book.Writer) error {
	chart, err := writer.Chart(ctx)
	if err != nil {
		return err
	}
	acc, err := chart.Resolve(t.AccountName)
	if err != nil {
		return err
	}

	if err := writer.DeleteTransaction(ctx, t.GUID); err != nil {
		return err
	}

	t.Account = acc
	return nil
}
