package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

// Account represents a row of the accounts table.
type Account struct {
	GUID          string  `db:"guid"`
	Name          string  `db:"name"`
	AccountType   string  `db:"account_type"`
	CommodityGUID *string `db:"commodity_guid"`
	CommoditySCU  int64   `db:"commodity_scu"`
	NonStdSCU     int64   `db:"non_std_scu"`
	ParentGUID    *string `db:"parent_guid"`
	Code          *string `db:"code"`
	Description   *string `db:"description"`
	Hidden        *int64  `db:"hidden"`
	Placeholder   *int64  `db:"placeholder"`
}

// AccountUpdate holds every writable account column.
type AccountUpdate struct {
	GUID          string
	Name          string
	AccountType   string
	CommodityGUID string
	CommoditySCU  int64
	NonStdSCU     bool
	ParentGUID    string
	Code          string
	Description   string
	Hidden        bool
	Placeholder   bool
}

var accountColumns = []any{
	"guid", "name", "account_type", "commodity_guid", "commodity_scu", "non_std_scu",
	"parent_guid", "code", "description", "hidden", "placeholder",
}

// AccountsTable provides access to the accounts table.
type AccountsTable struct {
	exec bob.Executor
}

// NewAccountsTable creates an AccountsTable on the given executor.
func NewAccountsTable(exec bob.Executor) AccountsTable {
	return AccountsTable{exec: exec}
}

// All returns every account row, including root and template accounts.
func (t *AccountsTable) All(ctx context.Context) ([]*Account, error) {
	q := psql.Select(
		sm.Columns(accountColumns...),
		sm.From("accounts"),
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Account]())
}

// Update overwrites every writable column of an account.
func (t *AccountsTable) Update(ctx context.Context, update *AccountUpdate) error {
	q := psql.Update(
		um.Table("accounts"),
		um.SetCol("name").ToArg(update.Name),
		um.SetCol("account_type").ToArg(update.AccountType),
		um.SetCol("commodity_guid").ToArg(update.CommodityGUID),
		um.SetCol("commodity_scu").ToArg(update.CommoditySCU),
		um.SetCol("non_std_scu").ToArg(boolToInt(update.NonStdSCU)),
		um.SetCol("parent_guid").ToArg(update.ParentGUID),
		um.SetCol("code").ToArg(update.Code),
		um.SetCol("description").ToArg(update.Description),
		um.SetCol("hidden").ToArg(boolToInt(update.Hidden)),
		um.SetCol("placeholder").ToArg(boolToInt(update.Placeholder)),
		um.Where(psql.Quote("guid").EQ(psql.Arg(update.GUID))),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}
