package sqlconfig

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

// Book represents the row of the books table.
type Book struct {
	GUID             string  `db:"guid"`
	RootAccountGUID  string  `db:"root_account_guid"`
	RootTemplateGUID *string `db:"root_template_guid"`
}

// BooksTable provides access to the books and gnclock tables.
type BooksTable struct {
	exec bob.Executor
}

// NewBooksTable creates a BooksTable on the given executor.
func NewBooksTable(exec bob.Executor) BooksTable {
	return BooksTable{exec: exec}
}

// Get returns the book row. A GnuCash file holds exactly one book.
func (t *BooksTable) Get(ctx context.Context) (*Book, error) {
	q := psql.Select(
		sm.Columns("guid", "root_account_guid", "root_template_guid"),
		sm.From("books"),
		sm.Limit(1),
	)
	return bob.One(ctx, t.exec, q, scan.StructMapper[*Book]())
}

// CountLocks returns the number of lock entries written by GnuCash instances
// holding the book open for writing.
func (t *BooksTable) CountLocks(ctx context.Context) (int64, error) {
	q := psql.Select(
		sm.Columns(psql.Raw("COUNT(*)")),
		sm.From("gnclock"),
	)
	return bob.One(ctx, t.exec, q, scan.SingleColumnMapper[int64])
}
