// Package booktest provides an in-memory book gateway for tests.
package booktest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

type state struct {
	accounts     map[string]book.Account
	commodities  map[string]book.Commodity
	transactions map[string]*book.Transaction
}

func (s *state) clone() *state {
	c := &state{
		accounts:     make(map[string]book.Account, len(s.accounts)),
		commodities:  make(map[string]book.Commodity, len(s.commodities)),
		transactions: make(map[string]*book.Transaction, len(s.transactions)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.commodities {
		c.commodities[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	return c
}

func copyTransaction(tx *book.Transaction) *book.Transaction {
	cp := *tx
	if tx.Currency != nil {
		currency := *tx.Currency
		cp.Currency = &currency
	}
	cp.Splits = make([]*book.Split, len(tx.Splits))
	for i, s := range tx.Splits {
		split := *s
		cp.Splits[i] = &split
	}
	return &cp
}

// Book is an in-memory book implementing book.Gateway. Sessions work on a copy
// of the book that replaces the book on Save.
type Book struct {
	mu       sync.Mutex
	state    *state
	rootGUID string

	// Locked simulates another writer holding the book lock.
	Locked bool

	saves    int
	opened   int
	closed   int
	lastOpts book.OpenOptions
}

var _ book.Gateway = (*Book)(nil)

// New creates an empty book holding only a root account.
func New() *Book {
	root := book.Account{
		GUID: book.NewGUID(),
		Name: "Root Account",
		Type: book.AccountTypeRoot,
	}
	return &Book{
		state: &state{
			accounts:     map[string]book.Account{root.GUID: root},
			commodities:  map[string]book.Commodity{},
			transactions: map[string]*book.Transaction{},
		},
		rootGUID: root.GUID,
	}
}

// RootGUID returns the guid of the root account.
func (b *Book) RootGUID() string {
	return b.rootGUID
}

// AddCurrency adds a commodity to the currency namespace.
func (b *Book) AddCurrency(mnemonic string, fraction int64) *book.Commodity {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := book.Commodity{
		GUID:      book.NewGUID(),
		Namespace: book.CurrencyNamespace,
		Mnemonic:  mnemonic,
		Fullname:  mnemonic,
		Fraction:  fraction,
	}
	b.state.commodities[c.GUID] = c
	return &c
}

// AccountSpec describes an account to add.
type AccountSpec struct {
	Parent      string
	Name        string
	Type        book.AccountType
	Commodity   *book.Commodity
	Placeholder bool
	Hidden      bool
}

// AddAccount adds an account and returns its guid. An empty Parent places the
// account below the root.
func (b *Book) AddAccount(spec AccountSpec) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	parent := spec.Parent
	if parent == "" {
		parent = b.rootGUID
	}
	acc := book.Account{
		GUID:        book.NewGUID(),
		Name:        spec.Name,
		Type:        spec.Type,
		Commodity:   spec.Commodity,
		Placeholder: spec.Placeholder,
		Hidden:      spec.Hidden,
		ParentGUID:  parent,
	}
	if spec.Commodity != nil {
		acc.CommoditySCU = spec.Commodity.Fraction
	}
	b.state.accounts[acc.GUID] = acc
	return acc.GUID
}

// SplitSpec describes one leg of a transaction to add.
type SplitSpec struct {
	Account string
	Value   string
}

// AddTransaction adds a transaction and returns its guid.
func (b *Book) AddTransaction(currency *book.Commodity, postDate time.Time, description string, splits ...SplitSpec) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx := &book.Transaction{
		GUID:        book.NewGUID(),
		Currency:    currency,
		Description: description,
		PostDate:    postDate,
		EnterDate:   postDate,
	}
	for _, spec := range splits {
		tx.Splits = append(tx.Splits, &book.Split{
			GUID:            book.NewGUID(),
			TransactionGUID: tx.GUID,
			AccountGUID:     spec.Account,
			Value:           decimal.RequireFromString(spec.Value),
		})
	}
	b.state.transactions[tx.GUID] = tx
	return tx.GUID
}

// Transaction returns a copy of the committed transaction.
func (b *Book) Transaction(guid string) (*book.Transaction, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx, ok := b.state.transactions[guid]
	if !ok {
		return nil, false
	}
	return copyTransaction(tx), true
}

// Transactions returns copies of every committed transaction.
func (b *Book) Transactions() []*book.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	txs := make([]*book.Transaction, 0, len(b.state.transactions))
	for _, tx := range b.state.transactions {
		txs = append(txs, copyTransaction(tx))
	}
	return txs
}

// Account returns a copy of the committed account.
func (b *Book) Account(guid string) (book.Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.state.accounts[guid]
	return acc, ok
}

// Saves returns how many sessions were saved.
func (b *Book) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// OpenSessions returns the number of sessions opened but not closed.
func (b *Book) OpenSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened - b.closed
}

// LastOpenOptions returns the options of the most recent Open call.
func (b *Book) LastOpenOptions() book.OpenOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastOpts
}

// Open starts a session on a copy of the book.
func (b *Book) Open(_ context.Context, opts book.OpenOptions) (book.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastOpts = opts
	if b.Locked && !opts.OpenIfLock {
		return nil, book.ErrDatabaseLocked
	}
	b.opened++
	return &session{book: b, state: b.state.clone(), readOnly: opts.ReadOnly}, nil
}

type session struct {
	book     *Book
	state    *state
	readOnly bool
	closed   bool
}

func (s *session) Chart(_ context.Context) (*book.Chart, error) {
	var root *book.Account
	accounts := make([]*book.Account, 0, len(s.state.accounts))
	for _, v := range s.state.accounts {
		acc := v
		if acc.GUID == s.book.rootGUID {
			root = &acc
			continue
		}
		accounts = append(accounts, &acc)
	}
	return book.NewChart(root, accounts), nil
}

func (s *session) Transaction(_ context.Context, guid string) (*book.Transaction, error) {
	tx, ok := s.state.transactions[guid]
	if !ok {
		return nil, &book.TransactionNotFoundError{GUID: guid}
	}
	return copyTransaction(tx), nil
}

func (s *session) AccountSplits(_ context.Context, accountGUID string) ([]*book.LedgerEntry, error) {
	var entries []*book.LedgerEntry
	for _, stored := range s.state.transactions {
		tx := copyTransaction(stored)
		for _, split := range tx.Splits {
			if split.AccountGUID == accountGUID {
				entries = append(entries, &book.LedgerEntry{Split: split, Transaction: tx})
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool {
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

func (s *session) Commodities(_ context.Context, namespace string) ([]*book.Commodity, error) {
	var commodities []*book.Commodity
	for _, v := range s.state.commodities {
		if v.Namespace == namespace {
			c := v
			commodities = append(commodities, &c)
		}
	}
	sort.Slice(commodities, func(i, j int) bool {
		return commodities[i].Mnemonic < commodities[j].Mnemonic
	})
	return commodities, nil
}

func (s *session) Commodity(_ context.Context, namespace, mnemonic string) (*book.Commodity, error) {
	for _, v := range s.state.commodities {
		if v.Namespace == namespace && v.Mnemonic == mnemonic {
			c := v
			return &c, nil
		}
	}
	return nil, book.NewValidationError("commodity", "unknown commodity %s:%s", namespace, mnemonic)
}

func (s *session) InsertTransaction(_ context.Context, tx *book.Transaction) error {
	if s.readOnly {
		return book.ErrReadOnly
	}
	s.state.transactions[tx.GUID] = copyTransaction(tx)
	return nil
}

func (s *session) ReplaceTransaction(_ context.Context, tx *book.Transaction) error {
	if s.readOnly {
		return book.ErrReadOnly
	}
	if _, ok := s.state.transactions[tx.GUID]; !ok {
		return &book.TransactionNotFoundError{GUID: tx.GUID}
	}
	s.state.transactions[tx.GUID] = copyTransaction(tx)
	return nil
}

func (s *session) DeleteTransaction(_ context.Context, guid string) error {
	if s.readOnly {
		return book.ErrReadOnly
	}
	if _, ok := s.state.transactions[guid]; !ok {
		return &book.TransactionNotFoundError{GUID: guid}
	}
	delete(s.state.transactions, guid)
	return nil
}

func (s *session) UpdateAccount(_ context.Context, acc *book.Account) error {
	if s.readOnly {
		return book.ErrReadOnly
	}
	if _, ok := s.state.accounts[acc.GUID]; !ok {
		return &book.AccountNotFoundError{Name: acc.GUID}
	}
	stored := *acc
	stored.Parent = nil
	stored.Children = nil
	s.state.accounts[acc.GUID] = stored
	return nil
}

func (s *session) Save(_ context.Context) error {
	if s.readOnly {
		return book.ErrReadOnly
	}
	s.book.mu.Lock()
	defer s.book.mu.Unlock()
	s.book.state = s.state.clone()
	s.book.saves++
	return nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.book.mu.Lock()
	defer s.book.mu.Unlock()
	s.book.closed++
	return nil
}
