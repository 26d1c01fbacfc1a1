package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stephenafamo/bob"
	_ "modernc.org/sqlite"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/storage/sqlconfig"
)

const (
	sqliteScheme   = "sqlite:///"
	postgresScheme = "postgres://"
)

// Storage opens GnuCash books kept in sqlite files or postgres databases.
type Storage struct {
	Logger *logrus.Logger
}

var _ book.Gateway = (*Storage)(nil)

func NewStorage(logger *logrus.Logger) *Storage {
	return &Storage{Logger: logger}
}

// Open connects to the book named by opts.URI. Write sessions run inside a
// database transaction that only Save commits.
func (s *Storage) Open(ctx context.Context, opts book.OpenOptions) (book.Session, error) {
	driverName, dsn, err := DataSource(opts.URI)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s book: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s book: %w", driverName, err)
	}
	exec := bob.NewDB(db)

	if !opts.OpenIfLock {
		books := sqlconfig.NewBooksTable(exec)
		locks, err := books.CountLocks(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("check book lock: %w", err)
		}
		if locks > 0 {
			_ = db.Close()
			return nil, book.ErrDatabaseLocked
		}
	}

	if opts.ReadOnly {
		return &session{Reader: NewReader(exec), db: db, logger: s.Logger}, nil
	}

	tx, err := exec.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("begin book transaction: %w", err)
	}
	writer := NewWriter(tx)
	return &session{Reader: writer.Reader, writer: writer, db: db, logger: s.Logger}, nil
}

// DataSource converts a book URI into a database/sql driver name and data
// source name.
func DataSource(uri string) (driverName string, dsn string, err error) {
	switch {
	case strings.HasPrefix(uri, sqliteScheme):
		path := strings.TrimPrefix(uri, sqliteScheme)
		if path == "" {
			return "", "", fmt.Errorf("sqlite book uri %q has no path", uri)
		}
		// sqlite silently creates missing files
		if _, err := os.Stat(path); err != nil {
			return "", "", fmt.Errorf("sqlite book: %w", err)
		}
		return "sqlite", path, nil
	case strings.HasPrefix(uri, postgresScheme), strings.HasPrefix(uri, "postgresql://"):
		u, err := url.Parse(uri)
		if err != nil {
			return "", "", fmt.Errorf("postgres book uri: %w", err)
		}
		query := u.Query()
		if query.Get("sslmode") == "" {
			query.Set("sslmode", "disable")
			u.RawQuery = query.Encode()
		}
		return "postgres", u.String(), nil
	default:
		return "", "", fmt.Errorf("unsupported book uri %q", uri)
	}
}

type session struct {
	*Reader
	writer *Writer
	db     *sql.DB
	logger *logrus.Logger
	saved  bool
	closed bool
}

func (s *session) InsertTransaction(ctx context.Context, tx *book.Transaction) error {
	if s.writer == nil {
		return book.ErrReadOnly
	}
	return s.writer.InsertTransaction(ctx, tx)
}

func (s *session) ReplaceTransaction(ctx context.Context, tx *book.Transaction) error {
	if s.writer == nil {
		return book.ErrReadOnly
	}
	return s.writer.ReplaceTransaction(ctx, tx)
}

func (s *session) DeleteTransaction(ctx context.Context, guid string) error {
	if s.writer == nil {
		return book.ErrReadOnly
	}
	return s.writer.DeleteTransaction(ctx, guid)
}

func (s *session) UpdateAccount(ctx context.Context, acc *book.Account) error {
	if s.writer == nil {
		return book.ErrReadOnly
	}
	return s.writer.UpdateAccount(ctx, acc)
}

func (s *session) Save(ctx context.Context) error {
	if s.writer == nil {
		return book.ErrReadOnly
	}
	if s.saved {
		return nil
	}
	if err := s.writer.Commit(ctx); err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	s.saved = true
	return nil
}

// Close discards unsaved changes and releases the connection.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.writer != nil && !s.saved {
		if err := s.writer.Rollback(context.Background()); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Storage.Session.Close.rollback")
		}
	}
	return s.db.Close()
}
