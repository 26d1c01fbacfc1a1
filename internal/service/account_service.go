package service

import (
	"context"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/operator/actions"
)

// EditAccountRequest carries every editable account field. CommoditySCU is
// actions.DefaultSCU to follow the commodity's own fraction.
type EditAccountRequest struct {
	GUID              string
	Name              string
	Code              string
	Description       string
	ParentGUID        string
	Type              string
	CommodityMnemonic string
	CommoditySCU      int64
	Placeholder       bool
	Hidden            bool
}

// AccountService handles account business logic.
type AccountService struct {
	processor ActionProcessor
}

// NewAccountService creates a new AccountService.
func NewAccountService(processor ActionProcessor) *AccountService {
	return &AccountService{processor: processor}
}

// EditAccount overwrites the account's metadata and returns the updated
// account.
func (s *AccountService) EditAccount(ctx context.Context, target book.OpenOptions, req EditAccountRequest) (*book.Account, error) {
	action := &actions.EditAccount{
		GUID:              req.GUID,
		Name:              req.Name,
		Code:              req.Code,
		Description:       req.Description,
		ParentGUID:        req.ParentGUID,
		Type:              req.Type,
		CommodityMnemonic: req.CommodityMnemonic,
		CommoditySCU:      req.CommoditySCU,
		Placeholder:       req.Placeholder,
		Hidden:            req.Hidden,
	}
	if err := s.processor.Process(ctx, target, action); err != nil {
		return nil, err
	}
	return action.Account, nil
}
