package actions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

type IAction interface {
	Perform(ctx context.Context, writer book.Writer) error
}

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// resolvePostable resolves an account that a transaction is booked to.
func resolvePostable(chart *book.Chart, fullName, field string) (*book.Account, error) {
	acc, err := chart.Resolve(fullName)
	if err != nil {
		return nil, err
	}
	if acc.IsRoot() {
		return nil, book.NewValidationError(field, "cannot post to the root account")
	}
	if acc.Placeholder {
		return nil, book.NewValidationError(field, "account %s is a placeholder", acc.FullName())
	}
	if acc.Commodity == nil {
		return nil, book.NewValidationError(field, "account %s has no commodity", acc.FullName())
	}
	return acc, nil
}

// transactionPair holds the validated inputs shared by create and edit.
type transactionPair struct {
	account *book.Account
	contra  *book.Account
}

func resolvePair(chart *book.Chart, accountName, contraName string) (*transactionPair, error) {
	acc, err := resolvePostable(chart, accountName, "account_name")
	if err != nil {
		return nil, err
	}
	contra, err := resolvePostable(chart, contraName, "contra_account_name")
	if err != nil {
		return nil, err
	}
	if !acc.Commodity.Equal(contra.Commodity) {
		return nil, &book.IntegrityError{Message: acc.FullName() + " uses " + acc.Commodity.Mnemonic +
			" but " + contra.FullName() + " uses " + contra.Commodity.Mnemonic}
	}
	return &transactionPair{account: acc, contra: contra}, nil
}

// splits books sign*value to the account and the opposite to the contra
// account, so the transaction always balances.
func (p *transactionPair) splits(txGUID string, value decimal.Decimal, sign int) []*book.Split {
	amount := value.Mul(decimal.NewFromInt(int64(sign)))
	return []*book.Split{
		{GUID: book.NewGUID(), TransactionGUID: txGUID, AccountGUID: p.account.GUID, Value: amount},
		{GUID: book.NewGUID(), TransactionGUID: txGUID, AccountGUID: p.contra.GUID, Value: amount.Neg()},
	}
}
