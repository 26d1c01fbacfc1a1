package service

import (
	"context"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/operator/actions"
)

// ActionProcessor runs a write action in its own session on the target book.
type ActionProcessor interface {
	Process(ctx context.Context, target book.OpenOptions, action actions.IAction) error
}

// Service holds all business logic services.
type Service struct {
	Transaction *TransactionService
	Account     *AccountService
	Ledger      *LedgerService
}

// NewService creates a new Service. Reads go straight to the gateway, writes
// through the processor.
func NewService(gateway book.Gateway, processor ActionProcessor, cfg *config.Config) *Service {
	return &Service{
		Transaction: NewTransactionService(processor),
		Account:     NewAccountService(processor),
		Ledger:      NewLedgerService(gateway, cfg.TransactionPageLength, cfg.PreselectedContraAccount),
	}
}
