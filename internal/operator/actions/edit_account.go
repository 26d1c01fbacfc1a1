package actions

import (
	"context"
	"strings"

	"github.com/carson-networks/book-server/internal/book"
)

// DefaultSCU selects the commodity's own fraction as the smallest unit.
const DefaultSCU int64 = -1

// EditAccount overwrites every editable field of an account.
type EditAccount struct {
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

	Account *book.Account
}

func (a *EditAccount) Perform(ctx context.Context, writer book.Writer) error {
	chart, err := writer.Chart(ctx)
	if err != nil {
		return err
	}
	acc, err := chart.FindByGUID(a.GUID)
	if err != nil {
		return err
	}

	parent := chart.Root
	if a.ParentGUID != chart.Root.GUID {
		parent, err = chart.FindByGUID(a.ParentGUID)
		if err != nil {
			return err
		}
	}
	if parent.GUID == acc.GUID || parent.IsDescendantOf(acc) {
		return book.NewValidationError("parent", "%s cannot be moved below itself", acc.FullName())
	}

	if a.Name == "" {
		return book.NewValidationError("name", "must not be empty")
	}
	if strings.Contains(a.Name, book.AccountSeparator) {
		return book.NewValidationError("name", "must not contain %q", book.AccountSeparator)
	}

	accountType, ok := book.ParseAccountType(a.Type)
	if !ok {
		return book.NewValidationError("type", "unknown account type %q", a.Type)
	}

	commodity, err := writer.Commodity(ctx, book.CurrencyNamespace, a.CommodityMnemonic)
	if err != nil {
		return err
	}

	switch {
	case a.CommoditySCU == DefaultSCU:
		acc.CommoditySCU = commodity.Fraction
		acc.NonStdSCU = false
	case a.CommoditySCU > 0:
		acc.CommoditySCU = a.CommoditySCU
		acc.NonStdSCU = true
	default:
		return book.NewValidationError("commodity_scu", "must be positive or %d", DefaultSCU)
	}

	acc.Name = a.Name
	acc.Code = a.Code
	acc.Description = a.Description
	acc.Type = accountType
	acc.Commodity = commodity
	acc.Placeholder = a.Placeholder
	acc.Hidden = a.Hidden
	acc.ParentGUID = parent.GUID
	acc.Parent = parent

	if err := writer.UpdateAccount(ctx, acc); err != nil {
		return err
	}

	a.Account = acc
	return nil
}
