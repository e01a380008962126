package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"calcula/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// table describes how one record type maps onto its SQL table.
// The key column is always the first entry of columns.
type table[T any] struct {
	name    string
	columns []string
	keyOf   func(T) string
	args    func(T) []any
	scan    func(scanner) (T, error)

	selectAll  string
	selectOne  string
	insert     string
	upsert     string
	deleteOne  string
	deleteRows string
}

func newTable[T any](name string, columns []string, keyOf func(T) string, args func(T) []any, scan func(scanner) (T, error)) *table[T] {
	key := columns[0]
	cols := strings.Join(columns, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	sets := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, cols, marks)
	return &table[T]{
		name:       name,
		columns:    columns,
		keyOf:      keyOf,
		args:       args,
		scan:       scan,
		selectAll:  fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", cols, name, key),
		selectOne:  fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", cols, name, key),
		insert:     insert + fmt.Sprintf(" ON CONFLICT(%s) DO NOTHING", key),
		upsert:     insert + fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET %s", key, strings.Join(sets, ", ")),
		deleteOne:  fmt.Sprintf("DELETE FROM %s WHERE %s = ?", name, key),
		deleteRows: fmt.Sprintf("DELETE FROM %s", name),
	}
}

var (
	transactionsTable = newTable("transactions",
		[]string{"id", "kind", "date", "category", "description", "amount_cents"},
		func(t core.Transaction) string { return t.ID },
		func(t core.Transaction) []any {
			return []any{t.ID, string(t.Kind), string(t.Date), t.Category, t.Description, t.Amount.Cents}
		},
		func(s scanner) (core.Transaction, error) {
			var t core.Transaction
			var kind, date string
			err := s.Scan(&t.ID, &kind, &date, &t.Category, &t.Description, &t.Amount.Cents)
			t.Kind, t.Date = core.Kind(kind), core.Date(date)
			return t, err
		})

	categoriesTable = newTable("categories",
		[]string{"id", "name", "kind"},
		func(c core.Category) string { return c.ID },
		func(c core.Category) []any { return []any{c.ID, c.Name, string(c.Kind)} },
		func(s scanner) (core.Category, error) {
			var c core.Category
			var kind string
			err := s.Scan(&c.ID, &c.Name, &kind)
			c.Kind = core.Kind(kind)
			return c, err
		})

	budgetsTable = newTable("budgets",
		[]string{"id", "limit_cents"},
		func(b core.Budget) string { return b.ID },
		func(b core.Budget) []any { return []any{b.ID, b.Limit.Cents} },
		func(s scanner) (core.Budget, error) {
			var b core.Budget
			err := s.Scan(&b.ID, &b.Limit.Cents)
			return b, err
		})

	metaTable = newTable("meta",
		[]string{"key", "value"},
		func(m core.Meta) string { return m.Key },
		func(m core.Meta) []any { return []any{m.Key, m.Value} },
		func(s scanner) (core.Meta, error) {
			var m core.Meta
			err := s.Scan(&m.Key, &m.Value)
			return m, err
		})
)

// sqlRecords implements Records on top of a table definition.
type sqlRecords[T any] struct {
	db DBTX
	t  *table[T]
}

func (r sqlRecords[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.t.selectAll)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := r.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.t.name, err)
	}
	return out, nil
}

func (r sqlRecords[T]) Get(ctx context.Context, key string) (T, error) {
	rec, err := r.t.scan(r.db.QueryRowContext(ctx, r.t.selectOne, key))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.t.name, key, ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s %q: %w", r.t.name, key, err)
	}
	return rec, nil
}

func (r sqlRecords[T]) Add(ctx context.Context, rec T) error {
	res, err := r.db.ExecContext(ctx, r.t.insert, r.t.args(rec)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.t.name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", r.t.name, r.t.keyOf(rec), ErrDuplicateKey)
	}
	return nil
}

func (r sqlRecords[T]) Put(ctx context.Context, rec T) error {
	if _, err := r.db.ExecContext(ctx, r.t.upsert, r.t.args(rec)...); err != nil {
		return fmt.Errorf("upsert %s: %w", r.t.name, err)
	}
	return nil
}

func (r sqlRecords[T]) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, r.t.deleteOne, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.t.name, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", r.t.name, key, ErrNotFound)
	}
	return nil
}

func (r sqlRecords[T]) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.t.deleteRows); err != nil {
		return fmt.Errorf("clear %s: %w", r.t.name, err)
	}
	return nil
}
