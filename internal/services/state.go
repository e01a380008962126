// Package services holds the application state controller, the single
// writer between the user-facing layer and the persistent store.
package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"calcula/internal/cache"
	"calcula/internal/core"
	"calcula/internal/dashboard"
	"calcula/internal/log"
	"calcula/internal/storage"
)

// State is a read-only copy of what the controller holds.
type State struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Budgets      []core.Budget
	Filter       core.Filter
	Loading      bool
}

// Observer is called synchronously after every state change.
type Observer func(State)

// Options tune a StateController. Zero values pick defaults.
type Options struct {
	Logger  *log.Logger
	Session *cache.Session
	Now     func() time.Time
	NewID   func() string
}

// StateController holds the last loaded copy of every collection plus the
// active filter. Every mutation writes to the store and then reloads the
// affected collection; memory is never patched directly.
type StateController struct {
	store   storage.Store
	session *cache.Session
	logger  *log.Logger
	events  *log.StructuredLogger
	now     func() time.Time
	newID   func() string

	mu           sync.RWMutex
	transactions []core.Transaction
	categories   []core.Category
	budgets      []core.Budget
	filter       core.Filter
	loading      bool

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

func NewStateController(store storage.Store, opts Options) *StateController {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Session == nil {
		opts.Session = cache.NewSession(16, 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger := opts.Logger.WithComponent(log.ComponentState)

	c := &StateController{
		store:     store,
		session:   opts.Session,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		now:       opts.Now,
		newID:     opts.NewID,
		observers: make(map[int]Observer),
	}
	c.filter = c.restoreFilter()
	return c
}

// restoreFilter reads the cached filter, falling back to the default
// when the entry is missing or unusable.
func (c *StateController) restoreFilter() core.Filter {
	var f core.Filter
	if c.session.LoadJSON(cache.KeyFilters, &f) {
		f = f.Normalize()
		if err := f.Validate(); err == nil {
			return f
		}
		c.logger.Warn("Ignoring cached filter", log.FieldMonth, f.Month)
	}
	return core.DefaultFilter(c.now())
}

// Bootstrap runs the startup cleanup of demo data and loads everything.
func (c *StateController) Bootstrap(ctx context.Context) error {
	removed, err := storage.RemoveSeedData(ctx, c.store, c.now())
	if err != nil {
		return fmt.Errorf("remove seed data: %w", err)
	}
	if removed > 0 {
		c.logger.InfoContext(ctx, "Removed demo transactions", log.FieldCount, removed, log.FieldOperation, log.OpCleanup)
	}
	return c.Load(ctx)
}

// Load reloads all three collections and notifies observers.
func (c *StateController) Load(ctx context.Context) error {
	c.setLoading(true)
	err := c.reloadAll(ctx)
	c.setLoading(false)
	if err != nil {
		c.events.LogError(ctx, "Failed to load state", err, log.OpLoad, nil)
		return err
	}
	c.notify()
	return nil
}

func (c *StateController) LoadTransactions(ctx context.Context) error {
	c.setLoading(true)
	err := c.reloadTransactions(ctx)
	c.setLoading(false)
	if err != nil {
		return err
	}
	c.notify()
	return nil
}

func (c *StateController) LoadCategories(ctx context.Context) error {
	if err := c.reloadCategories(ctx); err != nil {
		return err
	}
	c.notify()
	return nil
}

func (c *StateController) LoadBudgets(ctx context.Context) error {
	if err := c.reloadBudgets(ctx); err != nil {
		return err
	}
	c.notify()
	return nil
}

func (c *StateController) reloadAll(ctx context.Context) error {
	var (
		txs     []core.Transaction
		cats    []core.Category
		budgets []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = c.store.Transactions().GetAll(gctx)
		return wrapLoad(storage.CollectionTransactions, err)
	})
	g.Go(func() (err error) {
		cats, err = c.store.Categories().GetAll(gctx)
		return wrapLoad(storage.CollectionCategories, err)
	})
	g.Go(func() (err error) {
		budgets, err = c.store.Budgets().GetAll(gctx)
		return wrapLoad(storage.CollectionBudgets, err)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.transactions, c.categories, c.budgets = txs, cats, budgets
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "State loaded",
		"transactions", len(txs), "categories", len(cats), "budgets", len(budgets))
	return nil
}

func (c *StateController) reloadTransactions(ctx context.Context) error {
	txs, err := c.store.Transactions().GetAll(ctx)
	if err != nil {
		return wrapLoad(storage.CollectionTransactions, err)
	}
	c.mu.Lock()
	c.transactions = txs
	c.mu.Unlock()
	return nil
}

func (c *StateController) reloadCategories(ctx context.Context) error {
	cats, err := c.store.Categories().GetAll(ctx)
	if err != nil {
		return wrapLoad(storage.CollectionCategories, err)
	}
	c.mu.Lock()
	c.categories = cats
	c.mu.Unlock()
	return nil
}

func (c *StateController) reloadBudgets(ctx context.Context) error {
	budgets, err := c.store.Budgets().GetAll(ctx)
	if err != nil {
		return wrapLoad(storage.CollectionBudgets, err)
	}
	c.mu.Lock()
	c.budgets = budgets
	c.mu.Unlock()
	return nil
}

func wrapLoad(c storage.Collection, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", c, err)
	}
	return nil
}

func (c *StateController) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *StateController) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Transactions: slices.Clone(c.transactions),
		Categories:   slices.Clone(c.categories),
		Budgets:      slices.Clone(c.budgets),
		Filter:       c.filter,
		Loading:      c.loading,
	}
}

// Dashboard derives the dashboard view for the active filter.
func (c *StateController) Dashboard() dashboard.View {
	s := c.Snapshot()
	return dashboard.Compute(s.Transactions, s.Categories, s.Budgets, s.Filter, c.now())
}

func (c *StateController) Filter() core.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// SetFilter merges p into the active filter and mirrors the result to the
// session cache. An invalid result leaves the filter unchanged.
func (c *StateController) SetFilter(p core.FilterPatch) (core.Filter, error) {
	c.mu.Lock()
	next := c.filter.Merge(p).Normalize()
	if err := next.Validate(); err != nil {
		c.mu.Unlock()
		return c.filter, err
	}
	c.filter = next
	c.mu.Unlock()

	if err := c.session.StoreJSON(cache.KeyFilters, next); err != nil {
		c.logger.Warn("Failed to cache filter", log.FieldError, err)
	}
	c.notify()
	return next, nil
}

// CategoriesByKind lists the categories offered for a transaction kind.
func (c *StateController) CategoriesByKind(kind core.Kind) []core.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []core.Category
	for _, cat := range c.categories {
		if cat.Kind == kind {
			out = append(out, cat)
		}
	}
	return out
}

// CategoryName resolves a category ID, returning the ID itself if unknown.
func (c *StateController) CategoryName(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return id
}

// Subscribe registers fn and returns a func that removes it.
func (c *StateController) Subscribe(fn Observer) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *StateController) notify() {
	c.obsMu.Lock()
	keys := make([]int, 0, len(c.observers))
	for k := range c.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fns := make([]Observer, 0, len(keys))
	for _, k := range keys {
		fns = append(fns, c.observers[k])
	}
	c.obsMu.Unlock()

	if len(fns) == 0 {
		return
	}
	s := c.Snapshot()
	for _, fn := range fns {
		fn(s)
	}
}
