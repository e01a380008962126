package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"calcula/internal/core"
	"calcula/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable Store backed by a local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	conn    DBTX
	inTx    bool
	version uint
}

var _ Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (or creates) the database at dbPath, migrates the
// schema and seeds the default categories.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; keeps transactions from tripping over SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		conn:    db,
		version: version,
	}

	if _, err := SeedDefaultCategories(ctx, repo); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed default categories: %w", err)
	}

	log.FromContext(ctx).InfoContext(ctx, "SQLite store ready", log.FieldPath, dbPath, "schema_version", version)
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.inTx {
		return nil
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SchemaVersion returns the migration version applied at open time.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.version
}

func (r *SQLiteRepository) Transactions() Records[core.Transaction] {
	return sqlRecords[core.Transaction]{db: r.conn, t: transactionsTable}
}

func (r *SQLiteRepository) Categories() Records[core.Category] {
	return sqlRecords[core.Category]{db: r.conn, t: categoriesTable}
}

func (r *SQLiteRepository) Budgets() Records[core.Budget] {
	return sqlRecords[core.Budget]{db: r.conn, t: budgetsTable}
}

func (r *SQLiteRepository) Meta() Records[core.Meta] {
	return sqlRecords[core.Meta]{db: r.conn, t: metaTable}
}

// WithinTx implements Store. Nested calls join the outer transaction.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &SQLiteRepository{db: r.db, conn: tx, inTx: true, version: r.version}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.FromContext(ctx).ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
