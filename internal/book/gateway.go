package book

import (
	"context"
)

// OpenOptions selects the book and the way it is opened.
type OpenOptions struct {
	URI string
	// OpenIfLock opens the book even when another writer holds its lock.
	OpenIfLock bool
	ReadOnly   bool
}

// Gateway opens sessions on a book.
type Gateway interface {
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}

// Reader is the read side of a book session.
type Reader interface {
	// Chart loads the account tree.
	Chart(ctx context.Context) (*Chart, error)
	// Transaction loads a transaction and its splits.
	Transaction(ctx context.Context, guid string) (*Transaction, error)
	// AccountSplits returns every split of the account with its transaction,
	// oldest first.
	AccountSplits(ctx context.Context, accountGUID string) ([]*LedgerEntry, error)
	// Commodities lists the commodities of a namespace ordered by mnemonic.
	Commodities(ctx context.Context, namespace string) ([]*Commodity, error)
	// Commodity looks up a commodity by namespace and mnemonic.
	Commodity(ctx context.Context, namespace, mnemonic string) (*Commodity, error)
}

// Writer is the write side of a book session. Changes become durable only
// after Save.
type Writer interface {
	Reader
	InsertTransaction(ctx context.Context, tx *Transaction) error
	// ReplaceTransaction overwrites the transaction fields and replaces all of
	// its splits.
	ReplaceTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, guid string) error
	UpdateAccount(ctx context.Context, acc *Account) error
	Save(ctx context.Context) error
}

// Session is an open book. Close must always be called; it discards anything
// not saved.
type Session interface {
	Writer
	Close() error
}

// WithReadSession opens a read-only session, runs fn and closes the session on
// every path.
func WithReadSession(ctx context.Context, gw Gateway, opts OpenOptions, fn func(Reader) error) (err error) {
	opts.ReadOnly = true
	session, err := gw.Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(session)
}
