package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

// Commodity represents a row of the commodities table.
type Commodity struct {
	GUID      string  `db:"guid"`
	Namespace string  `db:"namespace"`
	Mnemonic  string  `db:"mnemonic"`
	Fullname  *string `db:"fullname"`
	Fraction  int64   `db:"fraction"`
}

var commodityColumns = []any{"guid", "namespace", "mnemonic", "fullname", "fraction"}

// CommoditiesTable provides access to the commodities table.
type CommoditiesTable struct {
	exec bob.Executor
}

// NewCommoditiesTable creates a CommoditiesTable on the given executor.
func NewCommoditiesTable(exec bob.Executor) CommoditiesTable {
	return CommoditiesTable{exec: exec}
}

// All returns every commodity of the book.
func (t *CommoditiesTable) All(ctx context.Context) ([]*Commodity, error) {
	q := psql.Select(
		sm.Columns(commodityColumns...),
		sm.From("commodities"),
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Commodity]())
}

// ByNamespace returns the commodities of a namespace ordered by mnemonic.
func (t *CommoditiesTable) ByNamespace(ctx context.Context, namespace string) ([]*Commodity, error) {
	q := psql.Select(
		sm.Columns(commodityColumns...),
		sm.From("commodities"),
		sm.Where(psql.Quote("namespace").EQ(psql.Arg(namespace))),
		sm.OrderBy(psql.Quote("mnemonic")).Asc(),
	)
	return bob.All(ctx, t.exec, q, scan.StructMapper[*Commodity]())
}

// Find looks up a commodity by namespace and mnemonic. It returns
// sql.ErrNoRows when there is none.
func (t *CommoditiesTable) Find(ctx context.Context, namespace, mnemonic string) (*Commodity, error) {
	q := psql.Select(
		sm.Columns(commodityColumns...),
		sm.From("commodities"),
		sm.Where(psql.Quote("namespace").EQ(psql.Arg(namespace))),
		sm.Where(psql.Quote("mnemonic").EQ(psql.Arg(mnemonic))),
	)
	return bob.One(ctx, t.exec, q, scan.StructMapper[*Commodity]())
}
