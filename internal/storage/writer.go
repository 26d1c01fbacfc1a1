package storage

import (
	"context"
	"fmt"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/storage/sqlconfig"
)

// Writer applies changes inside a database transaction. Nothing is visible to
// other connections until Commit.
type Writer struct {
	*Reader
	tx bob.Tx
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		Reader: NewReader(tx),
		tx:     tx,
	}
}

// InsertTransaction writes a new transaction with its splits.
func (w *Writer) InsertTransaction(ctx context.Context, tx *book.Transaction) error {
	if err := w.transactions.Insert(ctx, transactionToRow(tx)); err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.GUID, err)
	}
	return w.insertSplits(ctx, tx)
}

// ReplaceTransaction overwrites an existing transaction and swaps its splits
// for the given ones.
func (w *Writer) ReplaceTransaction(ctx context.Context, tx *book.Transaction) error {
	if err := w.requireTransaction(ctx, tx.GUID); err != nil {
		return err
	}
	if err := w.transactions.Update(ctx, transactionToRow(tx)); err != nil {
		return fmt.Errorf("update transaction %s: %w", tx.GUID, err)
	}
	if err := w.splits.DeleteByTransaction(ctx, tx.GUID); err != nil {
		return fmt.Errorf("delete splits of %s: %w", tx.GUID, err)
	}
	return w.insertSplits(ctx, tx)
}

// DeleteTransaction removes a transaction and its splits.
func (w *Writer) DeleteTransaction(ctx context.Context, guid string) error {
	if err := w.requireTransaction(ctx, guid); err != nil {
		return err
	}
	if err := w.splits.DeleteByTransaction(ctx, guid); err != nil {
		return fmt.Errorf("delete splits of %s: %w", guid, err)
	}
	if err := w.transactions.Delete(ctx, guid); err != nil {
		return fmt.Errorf("delete transaction %s: %w", guid, err)
	}
	return nil
}

// UpdateAccount overwrites every editable field of an account.
func (w *Writer) UpdateAccount(ctx context.Context, acc *book.Account) error {
	update := &sqlconfig.AccountUpdate{
		GUID:         acc.GUID,
		Name:         acc.Name,
		AccountType:  string(acc.Type),
		CommoditySCU: acc.CommoditySCU,
		NonStdSCU:    acc.NonStdSCU,
		ParentGUID:   acc.ParentGUID,
		Code:         acc.Code,
		Description:  acc.Description,
		Hidden:       acc.Hidden,
		Placeholder:  acc.Placeholder,
	}
	if acc.Commodity != nil {
		update.CommodityGUID = acc.Commodity.GUID
	}
	if err := w.accounts.Update(ctx, update); err != nil {
		return fmt.Errorf("update account %s: %w", acc.GUID, err)
	}
	return nil
}

func (w *Writer) Commit(ctx context.Context) error {
	return w.tx.Commit(ctx)
}

func (w *Writer) Rollback(ctx context.Context) error {
	return w.tx.Rollback(ctx)
}

func (w *Writer) requireTransaction(ctx context.Context, guid string) error {
	_, err := w.Transaction(ctx, guid)
	return err
}

func (w *Writer) insertSplits(ctx context.Context, tx *book.Transaction) error {
	var fraction int64
	if tx.Currency != nil {
		fraction = tx.Currency.Fraction
	}
	for _, split := range tx.Splits {
		if split.GUID == "" {
			split.GUID = book.NewGUID()
		}
		split.TransactionGUID = tx.GUID
		num, denom := sqlconfig.ToRational(split.Value, fraction)
		row := &sqlconfig.Split{
			GUID:           split.GUID,
			TxGUID:         tx.GUID,
			AccountGUID:    split.AccountGUID,
			Memo:           split.Memo,
			ReconcileState: sqlconfig.ReconcileNew,
			ValueNum:       num,
			ValueDenom:     denom,
			QuantityNum:    num,
			QuantityDenom:  denom,
		}
		if err := w.splits.Insert(ctx, row); err != nil {
			return fmt.Errorf("insert split %s: %w", split.GUID, err)
		}
	}
	return nil
}

func transactionToRow(tx *book.Transaction) *sqlconfig.Transaction {
	row := &sqlconfig.Transaction{
		GUID:      tx.GUID,
		Num:       tx.Num,
		PostDate:  sqlconfig.Time{Time: sqlconfig.PostingTime(tx.PostDate)},
		EnterDate: sqlconfig.Time{Time: tx.EnterDate},
	}
	if tx.Currency != nil {
		row.CurrencyGUID = tx.Currency.GUID
	}
	if tx.Description != "" {
		description := tx.Description
		row.Description = &description
	}
	return row
}
