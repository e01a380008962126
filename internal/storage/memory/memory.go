// Package memory is a volatile Store used for tests and throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"calcula/internal/core"
	"calcula/internal/storage"
)

type state struct {
	transactions map[string]core.Transaction
	categories   map[string]core.Category
	budgets      map[string]core.Budget
	meta         map[string]core.Meta
}

func newState() *state {
	return &state{
		transactions: make(map[string]core.Transaction),
		categories:   make(map[string]core.Category),
		budgets:      make(map[string]core.Budget),
		meta:         make(map[string]core.Meta),
	}
}

func (s *state) clone() *state {
	return &state{
		transactions: maps.Clone(s.transactions),
		categories:   maps.Clone(s.categories),
		budgets:      maps.Clone(s.budgets),
		meta:         maps.Clone(s.meta),
	}
}

type Store struct {
	mu    *sync.RWMutex
	state *state
	inTx  bool
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store seeded with the default categories.
func New(ctx context.Context) (*Store, error) {
	s := &Store{mu: &sync.RWMutex{}, state: newState()}
	if _, err := storage.SeedDefaultCategories(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Transactions() storage.Records[core.Transaction] {
	return &records[core.Transaction]{store: s, name: storage.CollectionTransactions,
		pick: func(st *state) map[string]core.Transaction { return st.transactions },
		key:  func(t core.Transaction) string { return t.ID }}
}

func (s *Store) Categories() storage.Records[core.Category] {
	return &records[core.Category]{store: s, name: storage.CollectionCategories,
		pick: func(st *state) map[string]core.Category { return st.categories },
		key:  func(c core.Category) string { return c.ID }}
}

func (s *Store) Budgets() storage.Records[core.Budget] {
	return &records[core.Budget]{store: s, name: storage.CollectionBudgets,
		pick: func(st *state) map[string]core.Budget { return st.budgets },
		key:  func(b core.Budget) string { return b.ID }}
}

func (s *Store) Meta() storage.Records[core.Meta] {
	return &records[core.Meta]{store: s, name: storage.CollectionMeta,
		pick: func(st *state) map[string]core.Meta { return st.meta },
		key:  func(m core.Meta) string { return m.Key }}
}

// WithinTx runs fn on a private copy of the data and swaps it in on success.
// Other writers are blocked until fn returns.
func (s *Store) WithinTx(_ context.Context, fn func(storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := &Store{mu: &sync.RWMutex{}, state: s.state.clone(), inTx: true}
	if err := fn(work); err != nil {
		return err
	}
	s.state = work.state
	return nil
}

func (s *Store) Close() error { return nil }

type records[T any] struct {
	store *Store
	name  storage.Collection
	pick  func(*state) map[string]T
	key   func(T) string
}

func (r *records[T]) GetAll(_ context.Context) ([]T, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m := r.pick(r.store.state)
	out := make([]T, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out, nil
}

func (r *records[T]) Get(_ context.Context, key string) (T, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.pick(r.store.state)[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.name, key, storage.ErrNotFound)
	}
	return rec, nil
}

func (r *records[T]) Add(_ context.Context, rec T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.pick(r.store.state)
	k := r.key(rec)
	if _, ok := m[k]; ok {
		return fmt.Errorf("%s %q: %w", r.name, k, storage.ErrDuplicateKey)
	}
	m[k] = rec
	return nil
}

func (r *records[T]) Put(_ context.Context, rec T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.pick(r.store.state)[r.key(rec)] = rec
	return nil
}

func (r *records[T]) Delete(_ context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m := r.pick(r.store.state)
	if _, ok := m[key]; !ok {
		return fmt.Errorf("%s %q: %w", r.name, key, storage.ErrNotFound)
	}
	delete(m, key)
	return nil
}

func (r *records[T]) Clear(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clear(r.pick(r.store.state))
	return nil
}
