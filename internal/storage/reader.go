package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/storage/sqlconfig"
)

// Reader loads book entities from the GnuCash tables.
type Reader struct {
	books        sqlconfig.BooksTable
	accounts     sqlconfig.AccountsTable
	commodities  sqlconfig.CommoditiesTable
	transactions sqlconfig.TransactionsTable
	splits       sqlconfig.SplitsTable

	commodityCache map[string]*book.Commodity
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		books:        sqlconfig.NewBooksTable(exec),
		accounts:     sqlconfig.NewAccountsTable(exec),
		commodities:  sqlconfig.NewCommoditiesTable(exec),
		transactions: sqlconfig.NewTransactionsTable(exec),
		splits:       sqlconfig.NewSplitsTable(exec),
	}
}

// Chart loads the account tree below the book's root account.
func (r *Reader) Chart(ctx context.Context) (*book.Chart, error) {
	bookRow, err := r.books.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	commodities, err := r.commodityMap(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.accounts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	var root *book.Account
	accounts := make([]*book.Account, 0, len(rows))
	for _, row := range rows {
		acc := accountFromRow(row, commodities)
		if acc.GUID == bookRow.RootAccountGUID {
			root = acc
			continue
		}
		accounts = append(accounts, acc)
	}
	if root == nil {
		return nil, fmt.Errorf("root account %s is missing", bookRow.RootAccountGUID)
	}
	return book.NewChart(root, accounts), nil
}

// Transaction loads a transaction and its splits.
func (r *Reader) Transaction(ctx context.Context, guid string) (*book.Transaction, error) {
	row, err := r.transactions.FindByGUID(ctx, guid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &book.TransactionNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", guid, err)
	}
	commodities, err := r.commodityMap(ctx)
	if err != nil {
		return nil, err
	}
	splitRows, err := r.splits.ListByTransaction(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("load splits of %s: %w", guid, err)
	}

	tx := transactionFromRow(row, commodities)
	for _, splitRow := range splitRows {
		tx.Splits = append(tx.Splits, splitFromRow(splitRow))
	}
	return tx, nil
}

// AccountSplits returns every split booked to the account together with its
// transaction, oldest first.
func (r *Reader) AccountSplits(ctx context.Context, accountGUID string) ([]*book.LedgerEntry, error) {
	commodities, err := r.commodityMap(ctx)
	if err != nil {
		return nil, err
	}
	txRows, err := r.transactions.ListForAccount(ctx, accountGUID)
	if err != nil {
		return nil, fmt.Errorf("load transactions of %s: %w", accountGUID, err)
	}
	splitRows, err := r.splits.ListForAccountTransactions(ctx, accountGUID)
	if err != nil {
		return nil, fmt.Errorf("load splits of %s: %w", accountGUID, err)
	}

	txs := make(map[string]*book.Transaction, len(txRows))
	for _, row := range txRows {
		txs[row.GUID] = transactionFromRow(row, commodities)
	}

	var entries []*book.LedgerEntry
	for _, row := range splitRows {
		tx, ok := txs[row.TxGUID]
		if !ok {
			continue
		}
		split := splitFromRow(row)
		tx.Splits = append(tx.Splits, split)
		if split.AccountGUID == accountGUID {
			entries = append(entries, &book.LedgerEntry{Split: split, Transaction: tx})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Transaction, entries[j].Transaction
		if !a.PostDate.Equal(b.PostDate) {
			return a.PostDate.Before(b.PostDate)
		}
		if !a.EnterDate.Equal(b.EnterDate) {
			return a.EnterDate.Before(b.EnterDate)
		}
		return entries[i].Split.GUID < entries[j].Split.GUID
	})
	return entries, nil
}

// Commodities lists the commodities of a namespace ordered by mnemonic.
func (r *Reader) Commodities(ctx context.Context, namespace string) ([]*book.Commodity, error) {
	rows, err := r.commodities.ByNamespace(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("load commodities: %w", err)
	}
	commodities := make([]*book.Commodity, len(rows))
	for i, row := range rows {
		commodities[i] = commodityFromRow(row)
	}
	return commodities, nil
}

// Commodity looks up a commodity. An unknown commodity is a validation error on
// the commodity field since it can only come from user input.
func (r *Reader) Commodity(ctx context.Context, namespace, mnemonic string) (*book.Commodity, error) {
	row, err := r.commodities.Find(ctx, namespace, mnemonic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, book.NewValidationError("commodity", "unknown commodity %s:%s", namespace, mnemonic)
	}
	if err != nil {
		return nil, fmt.Errorf("load commodity %s:%s: %w", namespace, mnemonic, err)
	}
	return commodityFromRow(row), nil
}

func (r *Reader) commodityMap(ctx context.Context) (map[string]*book.Commodity, error) {
	if r.commodityCache != nil {
		return r.commodityCache, nil
	}
	rows, err := r.commodities.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commodities: %w", err)
	}
	r.commodityCache = make(map[string]*book.Commodity, len(rows))
	for _, row := range rows {
		r.commodityCache[row.GUID] = commodityFromRow(row)
	}
	return r.commodityCache, nil
}

func commodityFromRow(row *sqlconfig.Commodity) *book.Commodity {
	return &book.Commodity{
		GUID:      row.GUID,
		Namespace: row.Namespace,
		Mnemonic:  row.Mnemonic,
		Fullname:  deref(row.Fullname),
		Fraction:  row.Fraction,
	}
}

func accountFromRow(row *sqlconfig.Account, commodities map[string]*book.Commodity) *book.Account {
	acc := &book.Account{
		GUID:         row.GUID,
		Name:         row.Name,
		Code:         deref(row.Code),
		Description:  deref(row.Description),
		Type:         book.AccountType(row.AccountType),
		CommoditySCU: row.CommoditySCU,
		NonStdSCU:    row.NonStdSCU != 0,
		Placeholder:  row.Placeholder != nil && *row.Placeholder != 0,
		Hidden:       row.Hidden != nil && *row.Hidden != 0,
		ParentGUID:   deref(row.ParentGUID),
	}
	if row.CommodityGUID != nil {
		acc.Commodity = commodities[*row.CommodityGUID]
	}
	return acc
}

func transactionFromRow(row *sqlconfig.Transaction, commodities map[string]*book.Commodity) *book.Transaction {
	return &book.Transaction{
		GUID:        row.GUID,
		Currency:    commodities[row.CurrencyGUID],
		Num:         row.Num,
		Description: deref(row.Description),
		PostDate:    row.PostDate.Time,
		EnterDate:   row.EnterDate.Time,
	}
}

func splitFromRow(row *sqlconfig.Split) *book.Split {
	return &book.Split{
		GUID:            row.GUID,
		TransactionGUID: row.TxGUID,
		AccountGUID:     row.AccountGUID,
		Memo:            row.Memo,
		Value:           sqlconfig.FromRational(row.ValueNum, row.ValueDenom),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
