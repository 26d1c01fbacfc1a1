package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

const defaultPageLength = 25

// LedgerService assembles the account view.
type LedgerService struct {
	gateway           book.Gateway
	pageLength        int
	preselectedContra string
	now               func() time.Time
}

// NewLedgerService creates a new LedgerService. A non-positive pageLength
// falls back to 25.
func NewLedgerService(gateway book.Gateway, pageLength int, preselectedContra string) *LedgerService {
	if pageLength < 1 {
		pageLength = defaultPageLength
	}
	return &LedgerService{
		gateway:           gateway,
		pageLength:        pageLength,
		preselectedContra: preselectedContra,
		now:               time.Now,
	}
}

// NumPages returns how many pages a ledger of n splits has. An empty ledger
// still has one page.
func NumPages(n, pageLength int) int {
	pages := (n + pageLength - 1) / pageLength
	if pages < 1 {
		return 1
	}
	return pages
}

// ShowAccount loads one page of an account's ledger, newest first. The book is
// always opened read-only and regardless of its lock.
func (s *LedgerService) ShowAccount(ctx context.Context, target book.OpenOptions, req LedgerRequest) (*LedgerPage, error) {
	if req.Page < 1 {
		return nil, book.NewValidationError("page", "page number must be positive integer")
	}

	target.ReadOnly = true
	target.OpenIfLock = true

	var page *LedgerPage
	err := book.WithReadSession(ctx, s.gateway, target, func(reader book.Reader) error {
		chart, err := reader.Chart(ctx)
		if err != nil {
			return err
		}
		var acc *book.Account
		if req.AccountGUID != "" {
			acc, err = chart.FindByGUID(req.AccountGUID)
		} else {
			acc, err = chart.Resolve(req.AccountName)
		}
		if err != nil {
			return err
		}

		entries, err := reader.AccountSplits(ctx, acc.GUID)
		if err != nil {
			return err
		}
		numPages := NumPages(len(entries), s.pageLength)
		if req.Page > numPages {
			return book.NewValidationError("page", "not enough pages")
		}

		currencies, err := reader.Commodities(ctx, book.CurrencyNamespace)
		if err != nil {
			return err
		}

		page = &LedgerPage{
			Account:                  acc,
			Subaccounts:              acc.Children,
			Lines:                    s.pageLines(chart, entries, req.Page),
			Page:                     req.Page,
			NumPages:                 numPages,
			Today:                    s.now(),
			AccountTypes:             book.SelectableAccountTypes(),
			Accounts:                 chart.Accounts(),
			Currencies:               currencies,
			PreselectedContraAccount: s.preselectedContra,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// pageLines computes running balances over the oldest-first entries and
// returns the requested page of the newest-first ledger.
func (s *LedgerService) pageLines(chart *book.Chart, entries []*book.LedgerEntry, pageNum int) []*LedgerLine {
	lines := make([]*LedgerLine, len(entries))
	balance := decimal.Zero
	for i, entry := range entries {
		balance = balance.Add(entry.Split.Value)
		lines[len(entries)-1-i] = &LedgerLine{
			Split:         entry.Split,
			Transaction:   entry.Transaction,
			ContraAccount: contraAccount(chart, entry),
			Balance:       balance,
		}
	}

	start := (pageNum - 1) * s.pageLength
	end := start + s.pageLength
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}

func contraAccount(chart *book.Chart, entry *book.LedgerEntry) *book.Account {
	if len(entry.Transaction.Splits) != 2 {
		return nil
	}
	for _, split := range entry.Transaction.Splits {
		if split.GUID == entry.Split.GUID {
			continue
		}
		acc, err := chart.FindByGUID(split.AccountGUID)
		if err != nil {
			return nil
		}
		return acc
	}
	return nil
}
