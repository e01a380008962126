package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"calcula/internal/core"
	"calcula/internal/log"
	"calcula/internal/storage"
)

type reloadFunc func(context.Context) error

// writeThenRefresh performs one mutation: the durable write, an
// unconditional reload of the touched collections, then notification.
// A failed write still reloads so memory mirrors the store.
func (c *StateController) writeThenRefresh(ctx context.Context, op string, write func(context.Context) error, reloads ...reloadFunc) error {
	werr := write(ctx)

	var rerr *multierror.Error
	for _, reload := range reloads {
		rerr = multierror.Append(rerr, reload(ctx))
	}
	c.notify()

	if werr != nil {
		fields := log.NewFields().WithErrorType(errorType(werr))
		if rerr.ErrorOrNil() != nil {
			fields["reload_error"] = rerr.Error()
		}
		c.events.LogError(ctx, "Write failed", werr, op, fields)
		return werr
	}
	return rerr.ErrorOrNil()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return log.ErrorTypeConflict
	case core.IsValidation(err):
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeDatabase
	}
}

// AddTransaction validates t, assigns a fresh ID when it has none, and
// stores it.
func (c *StateController) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = c.newID()
	}
	err := c.writeThenRefresh(ctx, log.OpCreate, func(ctx context.Context) error {
		return c.store.Transactions().Add(ctx, t)
	}, c.reloadTransactions)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	c.events.LogTransactionCreated(ctx, t)
	return t, nil
}

// UpdateTransaction merges p onto the stored transaction with the given ID.
func (c *StateController) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction
	err := c.writeThenRefresh(ctx, log.OpUpdate, func(ctx context.Context) error {
		return c.store.WithinTx(ctx, func(tx storage.Store) error {
			existing, err := tx.Transactions().Get(ctx, id)
			if err != nil {
				return err
			}
			updated = p.Apply(existing)
			if err := updated.Validate(); err != nil {
				return err
			}
			return tx.Transactions().Put(ctx, updated)
		})
	}, c.reloadTransactions)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	c.events.LogTransactionUpdated(ctx, updated)
	return updated, nil
}

func (c *StateController) DeleteTransaction(ctx context.Context, id string) error {
	err := c.writeThenRefresh(ctx, log.OpDelete, func(ctx context.Context) error {
		return c.store.Transactions().Delete(ctx, id)
	}, c.reloadTransactions)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	c.events.LogTransactionDeleted(ctx, id)
	return nil
}

// AddCategory creates a category with a fresh ID.
func (c *StateController) AddCategory(ctx context.Context, name string, kind core.Kind) (core.Category, error) {
	cat := core.Category{Name: name, Kind: kind}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}
	cat.ID = c.newID()
	err := c.writeThenRefresh(ctx, log.OpCreate, func(ctx context.Context) error {
		return c.store.Categories().Add(ctx, cat)
	}, c.reloadCategories)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	c.logger.InfoContext(ctx, "Category created", log.FieldCategory, cat.ID, log.FieldKind, string(cat.Kind))
	return cat, nil
}

// DeleteCategory removes the category only. Transactions and budgets that
// reference it are kept and show the raw ID from then on.
func (c *StateController) DeleteCategory(ctx context.Context, id string) error {
	err := c.writeThenRefresh(ctx, log.OpDelete, func(ctx context.Context) error {
		return c.store.Categories().Delete(ctx, id)
	}, c.reloadCategories)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	c.logger.InfoContext(ctx, "Category deleted", log.FieldCategory, id)
	return nil
}

// SetBudget creates or replaces the limit of a category.
func (c *StateController) SetBudget(ctx context.Context, categoryID string, limit core.Money) (core.Budget, error) {
	b := core.Budget{ID: categoryID, Limit: limit}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	err := c.writeThenRefresh(ctx, log.OpUpdate, func(ctx context.Context) error {
		return c.store.Budgets().Put(ctx, b)
	}, c.reloadBudgets)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget %s: %w", categoryID, err)
	}
	c.logger.InfoContext(ctx, "Budget set", log.FieldBudget, categoryID, log.FieldAmountCents, limit.Cents)
	return b, nil
}

func (c *StateController) DeleteBudget(ctx context.Context, categoryID string) error {
	err := c.writeThenRefresh(ctx, log.OpDelete, func(ctx context.Context) error {
		return c.store.Budgets().Delete(ctx, categoryID)
	}, c.reloadBudgets)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", categoryID, err)
	}
	c.logger.InfoContext(ctx, "Budget deleted", log.FieldBudget, categoryID)
	return nil
}

// Clear empties one collection by name and reloads state.
func (c *StateController) Clear(ctx context.Context, name string) error {
	coll, err := storage.ParseCollection(name)
	if err != nil {
		return err
	}
	var removed int
	err = c.writeThenRefresh(ctx, log.OpDelete, func(ctx context.Context) error {
		return c.store.WithinTx(ctx, func(tx storage.Store) error {
			n, err := storage.Count(ctx, tx, coll)
			if err != nil {
				return err
			}
			removed = n
			return storage.Clear(ctx, tx, coll)
		})
	}, c.reloadAll)
	if err != nil {
		return fmt.Errorf("clear %s: %w", coll, err)
	}
	c.logger.InfoContext(ctx, "Collection cleared",
		log.NewFields().WithCollection(string(coll), removed).WithOperation(log.OpDelete).ToSlice()...)
	return nil
}
