package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

// ReconcileNew is the reconcile state of a split that was never reconciled.
const ReconcileNew = "n"

// Split represents a row of the splits table.
type Split struct {
	GUID           string `db:"guid"`
	TxGUID         string `db:"tx_guid"`
	AccountGUID    string `db:"account_guid"`
	Memo           string `db:"memo"`
	Action         string `db:"action"`
	ReconcileState string `db:"reconcile_state"`
	ReconcileDate  Time   `db:"reconcile_date"`
	ValueNum       int64  `db:"value_num"`
	ValueDenom     int64  `db:"value_denom"`
	QuantityNum    int64  `db:"quantity_num"`
	QuantityDenom  int64  `db:"quantity_denom"`
}

var splitColumns = []any{
	"guid", "tx_guid", "account_guid", "memo", "action", "reconcile_state", "reconcile_date",
	"value_num", "value_denom", "quantity_num", "quantity_denom",
}

// SplitsTable provides access to the splits table.
type SplitsTable struct {
	exec bob.Executor
}

// NewSplitsTable creates a SplitsTable on the given executor.
func NewSplitsTable(exec bob.Executor) SplitsTable {
	return SplitsTable{exec: exec}
}

// ListByTransaction returns the splits of one transaction.
func (t *SplitsTable) ListByTransaction(ctx context.Context, txGUID string) ([]*Split, error) {
	q := psql.Select(
		sm.Columns(splitColumns...),
		sm.From("splits"),
		sm.Where(psql.Quote("tx_guid").EQ(psql.Arg(txGUID))),
		sm.OrderBy(psql.Quote("guid")).Asc(),
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Split]())
}

// ListForAccountTransactions returns every split of every transaction touching
// the account, including the legs booked to other accounts.
func (t *SplitsTable) ListForAccountTransactions(ctx context.Context, accountGUID string) ([]*Split, error) {
	q := psql.RawQuery(
		`SELECT guid, tx_guid, account_guid, memo, action, reconcile_state, reconcile_date,
		value_num, value_denom, quantity_num, quantity_denom FROM splits
		WHERE tx_guid IN (SELECT tx_guid FROM splits WHERE account_guid = ?)
		ORDER BY guid`,
		accountGUID,
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Split]())
}

// Insert creates a split row.
func (t *SplitsTable) Insert(ctx context.Context, row *Split) error {
	q := psql.Insert(
		im.Into("splits", "guid", "tx_guid", "account_guid", "memo", "action", "reconcile_state",
			"reconcile_date", "value_num", "value_denom", "quantity_num", "quantity_denom"),
		im.Values(
			psql.Arg(row.GUID),
			psql.Arg(row.TxGUID),
			psql.Arg(row.AccountGUID),
			psql.Arg(row.Memo),
			psql.Arg(row.Action),
			psql.Arg(row.ReconcileState),
			psql.Arg(row.ReconcileDate),
			psql.Arg(row.ValueNum),
			psql.Arg(row.ValueDenom),
			psql.Arg(row.QuantityNum),
			psql.Arg(row.QuantityDenom),
		),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}

// DeleteByTransaction removes every split of a transaction.
func (t *SplitsTable) DeleteByTransaction(ctx context.Context, txGUID string) error {
	q := psql.Delete(
		dm.From("splits"),
		dm.Where(psql.Quote("tx_guid").EQ(psql.Arg(txGUID))),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}
