// Package storage holds the durable record store: four keyed collections
// (transactions, categories, budgets, meta), schema creation, default
// category seeding and the startup cleanup of demo data.
package storage

import (
	"context"
	"errors"
	"fmt"

	"calcula/internal/core"
)

type Collection string

const (
	CollectionTransactions Collection = "transactions"
	CollectionCategories   Collection = "categories"
	CollectionBudgets      Collection = "budgets"
	CollectionMeta         Collection = "meta"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Records is one keyed collection.
type Records[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Get(ctx context.Context, key string) (T, error)
	// Add inserts a new record and fails with ErrDuplicateKey if the key exists.
	Add(ctx context.Context, rec T) error
	// Put inserts or replaces the record with the same key.
	Put(ctx context.Context, rec T) error
	// Delete fails with ErrNotFound if the key does not exist.
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Store is the persistent store shared by the sqlite and memory backends.
type Store interface {
	Transactions() Records[core.Transaction]
	Categories() Records[core.Category]
	Budgets() Records[core.Budget]
	Meta() Records[core.Meta]

	// WithinTx runs fn against a store whose writes are committed together,
	// or not at all when fn returns an error. fn must only use the store it
	// is given.
	WithinTx(ctx context.Context, fn func(Store) error) error

	Close() error
}

// ParseCollection maps a collection name to its Collection.
func ParseCollection(name string) (Collection, error) {
	switch c := Collection(name); c {
	case CollectionTransactions, CollectionCategories, CollectionBudgets, CollectionMeta:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
}

// Clear empties the named collection.
func Clear(ctx context.Context, s Store, c Collection) error {
	switch c {
	case CollectionTransactions:
		return s.Transactions().Clear(ctx)
	case CollectionCategories:
		return s.Categories().Clear(ctx)
	case CollectionBudgets:
		return s.Budgets().Clear(ctx)
	case CollectionMeta:
		return s.Meta().Clear(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
}

// Count returns the number of records in the named collection.
func Count(ctx context.Context, s Store, c Collection) (int, error) {
	switch c {
	case CollectionTransactions:
		return count(ctx, s.Transactions())
	case CollectionCategories:
		return count(ctx, s.Categories())
	case CollectionBudgets:
		return count(ctx, s.Budgets())
	case CollectionMeta:
		return count(ctx, s.Meta())
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
}

func count[T any](ctx context.Context, r Records[T]) (int, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
