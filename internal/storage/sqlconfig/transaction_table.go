package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

// Transaction represents a row of the transactions table.
type Transaction struct {
	GUID         string  `db:"guid"`
	CurrencyGUID string  `db:"currency_guid"`
	Num          string  `db:"num"`
	PostDate     Time    `db:"post_date"`
	EnterDate    Time    `db:"enter_date"`
	Description  *string `db:"description"`
}

var transactionColumns = []any{"guid", "currency_guid", "num", "post_date", "enter_date", "description"}

// TransactionsTable provides access to the transactions table.
type TransactionsTable struct {
	exec bob.Executor
}

// NewTransactionsTable creates a TransactionsTable on the given executor.
func NewTransactionsTable(exec bob.Executor) TransactionsTable {
	return TransactionsTable{exec: exec}
}

// FindByGUID retrieves a transaction by primary key. It returns sql.ErrNoRows
// when there is none.
func (t *TransactionsTable) FindByGUID(ctx context.Context, guid string) (*Transaction, error) {
	q := psql.Select(
		sm.Columns(transactionColumns...),
		sm.From("transactions"),
		sm.Where(psql.Quote("guid").EQ(psql.Arg(guid))),
	)
	return bob.One(ctx, t.exec, q, scan.StructMapper[*Transaction]())
}

// ListForAccount returns every transaction with at least one split in the
// account.
func (t *TransactionsTable) ListForAccount(ctx context.Context, accountGUID string) ([]*Transaction, error) {
	q := psql.RawQuery(
		`SELECT guid, currency_guid, num, post_date, enter_date, description FROM transactions
		WHERE guid IN (SELECT tx_guid FROM splits WHERE account_guid = ?)`,
		accountGUID,
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Transaction]())
}

// Insert creates a transaction row.
func (t *TransactionsTable) Insert(ctx context.Context, row *Transaction) error {
	q := psql.Insert(
		im.Into("transactions", "guid", "currency_guid", "num", "post_date", "enter_date", "description"),
		im.Values(
			psql.Arg(row.GUID),
			psql.Arg(row.CurrencyGUID),
			psql.Arg(row.Num),
			psql.Arg(row.PostDate),
			psql.Arg(row.EnterDate),
			psql.Arg(row.Description),
		),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}

// Update overwrites the descriptive fields of a transaction. The enter date is
// left untouched.
func (t *TransactionsTable) Update(ctx context.Context, row *Transaction) error {
	q := psql.Update(
		um.Table("transactions"),
		um.SetCol("currency_guid").ToArg(row.CurrencyGUID),
		um.SetCol("num").ToArg(row.Num),
		um.SetCol("post_date").ToArg(row.PostDate),
		um.SetCol("description").ToArg(row.Description),
		um.Where(psql.Quote("guid").EQ(psql.Arg(row.GUID))),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}

// Delete removes a transaction row. Its splits must be removed separately.
func (t *TransactionsTable) Delete(ctx context.Context, guid string) error {
	q := psql.Delete(
		dm.From("transactions"),
		dm.Where(psql.Quote("guid").EQ(psql.Arg(guid))),
	)
	_, err := q.Exec(ctx, t.exec)
	return err
}
