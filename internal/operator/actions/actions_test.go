package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/book/booktest"
)

type fixture struct {
	book   *booktest.Book
	usd    *book.Commodity
	eur    *book.Commodity
	assets string
	cash   string
	food   string
	travel string
}

func newFixture() *fixture {
	b := booktest.New()
	f := &fixture{book: b}
	f.usd = b.AddCurrency("USD", 100)
	f.eur = b.AddCurrency("EUR", 100)
	f.assets = b.AddAccount(booktest.AccountSpec{Name: "Assets", Type: book.AccountTypeAsset, Commodity: f.usd, Placeholder: true})
	f.cash = b.AddAccount(booktest.AccountSpec{Parent: f.assets, Name: "Cash", Type: book.AccountTypeCash, Commodity: f.usd})
	f.food = b.AddAccount(booktest.AccountSpec{Name: "Food", Type: book.AccountTypeExpense, Commodity: f.usd})
	f.travel = b.AddAccount(booktest.AccountSpec{Name: "Travel", Type: book.AccountTypeExpense, Commodity: f.eur})
	return f
}

// perform runs the action in a write session and saves on success.
func (f *fixture) perform(t *testing.T, action IAction) error {
	t.Helper()
	ctx := context.Background()
	session, err := f.book.Open(ctx, book.OpenOptions{})
	require.NoError(t, err)
	defer session.Close()

	if err := action.Perform(ctx, session); err != nil {
		return err
	}
	return session.Save(ctx)
}

func splitFor(tx *book.Transaction, accountGUID string) *book.Split {
	for _, s := range tx.Splits {
		if s.AccountGUID == accountGUID {
			return s
		}
	}
	return nil
}

// -- CreateTransaction tests --

func TestCreateTransaction_Success(t *testing.T) {
	f := newFixture()
	date := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	action := &CreateTransaction{
		AccountName:       "Assets:Cash",
		ContraAccountName: "Food",
		Date:              date,
		Description:       "Lunch",
		Value:             decimal.RequireFromString("9.50"),
		Sign:              -1,
	}

	require.NoError(t, f.perform(t, action))
	assert.Equal(t, f.cash, action.Account.GUID)

	tx, ok := f.book.Transaction(action.GUID)
	require.True(t, ok)
	assert.Equal(t, "Lunch", tx.Description)
	assert.Equal(t, date, tx.PostDate)
	assert.True(t, tx.Currency.Equal(f.usd))
	require.Len(t, tx.Splits, 2)
	assert.True(t, tx.Balance().IsZero())
	assert.Equal(t, "-9.5", splitFor(tx, f.cash).Value.String())
	assert.Equal(t, "9.5", splitFor(tx, f.food).Value.String())
}

func TestCreateTransaction_ZeroSumForManyValues(t *testing.T) {
	f := newFixture()
	for _, value := range []string{"0", "0.01", "1234.56", "0.125"} {
		for _, sign := range []int{1, -1} {
			action := &CreateTransaction{
				AccountName:       "Food",
				ContraAccountName: "Assets:Cash",
				Date:              time.Now(),
				Value:             decimal.RequireFromString(value),
				Sign:              sign,
			}
			require.NoError(t, f.perform(t, action))
			tx, ok := f.book.Transaction(action.GUID)
			require.True(t, ok)
			assert.True(t, tx.Balance().IsZero(), "value %s sign %d", value, sign)
		}
	}
}

func TestCreateTransaction_Placeholder(t *testing.T) {
	f := newFixture()

	err := f.perform(t, &CreateTransaction{AccountName: "Assets", ContraAccountName: "Food", Value: decimal.NewFromInt(1), Sign: 1})
	var validationErr *book.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "account_name", validationErr.Field)

	err = f.perform(t, &CreateTransaction{AccountName: "Food", ContraAccountName: "Assets", Value: decimal.NewFromInt(1), Sign: 1})
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "contra_account_name", validationErr.Field)
	assert.Empty(t, f.book.Transactions())
}

func TestCreateTransaction_RootAccount(t *testing.T) {
	f := newFixture()

	err := f.perform(t, &CreateTransaction{AccountName: "", ContraAccountName: "Food", Value: decimal.NewFromInt(1), Sign: 1})
	var validationErr *book.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestCreateTransaction_UnknownAccount(t *testing.T) {
	f := newFixture()

	err := f.perform(t, &CreateTransaction{AccountName: "Assets:Wallet", ContraAccountName: "Food", Value: decimal.NewFromInt(1), Sign: 1})
	var notFound *book.AccountNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Assets:Wallet", notFound.Name)
	assert.Equal(t, 0, f.book.Saves())
}

func TestCreateTransaction_CommodityMismatch(t *testing.T) {
	f := newFixture()

	err := f.perform(t, &CreateTransaction{AccountName: "Travel", ContraAccountName: "Assets:Cash", Value: decimal.NewFromInt(1), Sign: 1})
	var integrityErr *book.IntegrityError
	assert.True(t, errors.As(err, &integrityErr))
	assert.Empty(t, f.book.Transactions())
	assert.Equal(t, 0, f.book.Saves())
}

// -- EditTransaction tests --

func TestEditTransaction_ReplacesSplits(t *testing.T) {
	f := newFixture()
	guid := f.book.AddTransaction(f.usd, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Old",
		booktest.SplitSpec{Account: f.cash, Value: "-3"},
		booktest.SplitSpec{Account: f.food, Value: "3"},
	)
	date := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	action := &EditTransaction{
		GUID:              guid,
		AccountName:       "Food",
		ContraAccountName: "Assets:Cash",
		Date:              date,
		Description:       "New",
		Value:             decimal.RequireFromString("7.25"),
		Sign:              1,
	}
	require.NoError(t, f.perform(t, action))
	assert.Equal(t, f.food, action.Account.GUID)

	tx, ok := f.book.Transaction(guid)
	require.True(t, ok)
	assert.Equal(t, "New", tx.Description)
	assert.Equal(t, date, tx.PostDate)
	require.Len(t, tx.Splits, 2)
	assert.Equal(t, "7.25", splitFor(tx, f.food).Value.String())
	assert.Equal(t, "-7.25", splitFor(tx, f.cash).Value.String())
}

func TestEditTransaction_MoreThanTwoSplits(t *testing.T) {
	f := newFixture()
	guid := f.book.AddTransaction(f.usd, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Split bill",
		booktest.SplitSpec{Account: f.cash, Value: "-10"},
		booktest.SplitSpec{Account: f.food, Value: "6"},
		booktest.SplitSpec{Account: f.food, Value: "4"},
	)

	err := f.perform(t, &EditTransaction{
		GUID: guid, AccountName: "Food", ContraAccountName: "Assets:Cash",
		Date: time.Now(), Description: "Changed", Value: decimal.NewFromInt(1), Sign: 1,
	})
	var validationErr *book.ValidationError
	require.True(t, errors.As(err, &validationErr))

	tx, ok := f.book.Transaction(guid)
	require.True(t, ok)
	assert.Equal(t, "Split bill", tx.Description)
	assert.Len(t, tx.Splits, 3)
}

func TestEditTransaction_Unknown(t *testing.T) {
	f := newFixture()

	err := f.perform(t, &EditTransaction{
		GUID: book.NewGUID(), AccountName: "Food", ContraAccountName: "Assets:Cash",
		Value: decimal.NewFromInt(1), Sign: 1,
	})
	var notFound *book.TransactionNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// -- DeleteTransaction tests --

func TestDeleteTransaction_Success(t *testing.T) {
	f := newFixture()
	guid := f.book.AddTransaction(f.usd, time.Now(), "Gone",
		booktest.SplitSpec{Account: f.cash, Value: "-1"},
		booktest.SplitSpec{Account: f.food, Value: "1"},
	)

	action := &DeleteTransaction{GUID: guid, AccountName: "Assets:Cash"}
	require.NoError(t, f.perform(t, action))
	assert.Equal(t, f.cash, action.Account.GUID)

	_, ok := f.book.Transaction(guid)
	assert.False(t, ok)

	err := f.perform(t, &DeleteTransaction{GUID: guid, AccountName: "Assets:Cash"})
	var notFound *book.TransactionNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestDeleteTransaction_AccountNotParty(t *testing.T) {
	f := newFixture()
	guid := f.book.AddTransaction(f.usd, time.Now(), "Gone",
		booktest.SplitSpec{Account: f.cash, Value: "-1"},
		booktest.SplitSpec{Account: f.food, Value: "1"},
	)

	require.NoError(t, f.perform(t, &DeleteTransaction{GUID: guid, AccountName: "Travel"}))
	_, ok := f.book.Transaction(guid)
	assert.False(t, ok)
}

func TestDeleteTransaction_UnknownAccountKeepsTransaction(t *testing.T) {
	f := newFixture()
	guid := f.book.AddTransaction(f.usd, time.Now(), "Kept",
		booktest.SplitSpec{Account: f.cash, Value: "-1"},
		booktest.SplitSpec{Account: f.food, Value: "1"},
	)

	err := f.perform(t, &DeleteTransaction{GUID: guid, AccountName: "Nowhere"})
	var notFound *book.AccountNotFoundError
	require.True(t, errors.As(err, &notFound))
	_, ok := f.book.Transaction(guid)
	assert.True(t, ok)
}

// -- EditAccount tests --

func validEdit(f *fixture) *EditAccount {
	return &EditAccount{
		GUID:              f.cash,
		Name:              "Wallet",
		Code:              "1001",
		Description:       "pocket",
		ParentGUID:        f.book.RootGUID(),
		Type:              "BANK",
		CommodityMnemonic: "EUR",
		CommoditySCU:      DefaultSCU,
		Hidden:            true,
	}
}

func TestEditAccount_DefaultSCU(t *testing.T) {
	f := newFixture()
	action := validEdit(f)

	require.NoError(t, f.perform(t, action))
	assert.Equal(t, "Wallet", action.Account.FullName())

	acc, ok := f.book.Account(f.cash)
	require.True(t, ok)
	assert.Equal(t, "Wallet", acc.Name)
	assert.Equal(t, "1001", acc.Code)
	assert.Equal(t, "pocket", acc.Description)
	assert.Equal(t, book.AccountTypeBank, acc.Type)
	assert.Equal(t, f.book.RootGUID(), acc.ParentGUID)
	assert.True(t, acc.Commodity.Equal(f.eur))
	assert.False(t, acc.NonStdSCU)
	assert.Equal(t, f.eur.Fraction, acc.CommoditySCU)
	assert.True(t, acc.Hidden)
	assert.False(t, acc.Placeholder)
}

func TestEditAccount_CustomSCU(t *testing.T) {
	f := newFixture()
	action := validEdit(f)
	action.CommoditySCU = 1000
	action.ParentGUID = f.assets

	require.NoError(t, f.perform(t, action))
	assert.Equal(t, "Assets:Wallet", action.Account.FullName())

	acc, _ := f.book.Account(f.cash)
	assert.True(t, acc.NonStdSCU)
	assert.Equal(t, int64(1000), acc.CommoditySCU)
}

func TestEditAccount_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *fixture, a *EditAccount)
		field string
	}{
		{"unknown commodity", func(_ *fixture, a *EditAccount) { a.CommodityMnemonic = "XXX" }, "commodity"},
		{"zero scu", func(_ *fixture, a *EditAccount) { a.CommoditySCU = 0 }, "commodity_scu"},
		{"negative scu", func(_ *fixture, a *EditAccount) { a.CommoditySCU = -5 }, "commodity_scu"},
		{"unknown type", func(_ *fixture, a *EditAccount) { a.Type = "GOLD" }, "type"},
		{"root type", func(_ *fixture, a *EditAccount) { a.Type = "ROOT" }, "type"},
		{"parent is self", func(f *fixture, a *EditAccount) { a.ParentGUID = f.cash }, "parent"},
		{"empty name", func(_ *fixture, a *EditAccount) { a.Name = "" }, "name"},
		{"separator in name", func(_ *fixture, a *EditAccount) { a.Name = "A:B" }, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			action := validEdit(f)
			tt.edit(f, action)

			err := f.perform(t, action)
			var validationErr *book.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)

			acc, _ := f.book.Account(f.cash)
			assert.Equal(t, "Cash", acc.Name)
		})
	}
}

func TestEditAccount_ParentIsDescendant(t *testing.T) {
	f := newFixture()
	action := validEdit(f)
	action.GUID = f.assets
	action.ParentGUID = f.cash

	err := f.perform(t, action)
	var validationErr *book.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "parent", validationErr.Field)
}

func TestEditAccount_NotFound(t *testing.T) {
	f := newFixture()

	action := validEdit(f)
	action.GUID = book.NewGUID()
	var notFound *book.AccountNotFoundError
	assert.True(t, errors.As(f.perform(t, action), &notFound))

	action = validEdit(f)
	action.ParentGUID = book.NewGUID()
	assert.True(t, errors.As(f.perform(t, action), &notFound))

	action = validEdit(f)
	action.GUID = f.book.RootGUID()
	assert.True(t, errors.As(f.perform(t, action), &notFound))
}
