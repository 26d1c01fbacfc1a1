package service

import (
	"context"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/operator/actions"
)

// TransactionService handles transaction business logic.
type TransactionService struct {
	processor ActionProcessor
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(processor ActionProcessor) *TransactionService {
	return &TransactionService{processor: processor}
}

// CreateTransaction books a new transaction and returns the account to show
// next.
func (s *TransactionService) CreateTransaction(ctx context.Context, target book.OpenOptions, req TransactionRequest) (*book.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	action := &actions.CreateTransaction{
		AccountName:       req.AccountName,
		ContraAccountName: req.ContraAccountName,
		Date:              req.Date,
		Description:       req.Description,
		Value:             req.Value,
		Sign:              req.Sign,
	}
	if err := s.processor.Process(ctx, target, action); err != nil {
		return nil, err
	}
	return action.Account, nil
}

// EditTransaction rewrites an existing transaction and returns the account to
// show next.
func (s *TransactionService) EditTransaction(ctx context.Context, target book.OpenOptions, req EditTransactionRequest) (*book.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	action := &actions.EditTransaction{
		GUID:              req.GUID,
		AccountName:       req.AccountName,
		ContraAccountName: req.ContraAccountName,
		Date:              req.Date,
		Description:       req.Description,
		Value:             req.Value,
		Sign:              req.Sign,
	}
	if err := s.processor.Process(ctx, target, action); err != nil {
		return nil, err
	}
	return action.Account, nil
}

// DeleteTransaction removes a transaction and returns the account to show
// next.
func (s *TransactionService) DeleteTransaction(ctx context.Context, target book.OpenOptions, req DeleteTransactionRequest) (*book.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	action := &actions.DeleteTransaction{
		GUID:        req.GUID,
		AccountName: req.AccountName,
	}
	if err := s.processor.Process(ctx, target, action); err != nil {
		return nil, err
	}
	return action.Account, nil
}
