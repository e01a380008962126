package storage

import (
	"context"
	"fmt"
	"time"

	"calcula/internal/core"
	"calcula/internal/log"
)

// MetaSeedCleanupAt records when demo data was last removed.
const MetaSeedCleanupAt = "bootstrap.seed_cleanup_at"

// DefaultCategories is the fixed category set created on first run.
// IDs are hardcoded so seeding stays idempotent.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "cat-income-salary", Name: "Salary", Kind: core.KindIncome},
		{ID: "cat-income-freelance", Name: "Freelance", Kind: core.KindIncome},
		{ID: "cat-income-investments", Name: "Investments", Kind: core.KindIncome},
		{ID: "cat-expense-housing", Name: "Housing", Kind: core.KindExpense},
		{ID: "cat-expense-groceries", Name: "Groceries", Kind: core.KindExpense},
		{ID: "cat-expense-leisure", Name: "Leisure", Kind: core.KindExpense},
		{ID: "cat-expense-health", Name: "Health", Kind: core.KindExpense},
		{ID: "cat-expense-transport", Name: "Transport", Kind: core.KindExpense},
		{ID: "cat-expense-education", Name: "Education", Kind: core.KindExpense},
	}
}

// SeedDefaultCategories inserts DefaultCategories when the category
// collection is empty. It returns the number of categories inserted.
func SeedDefaultCategories(ctx context.Context, s Store) (int, error) {
	inserted := 0
	err := s.WithinTx(ctx, func(tx Store) error {
		existing, err := tx.Categories().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, c := range DefaultCategories() {
			if err := tx.Categories().Add(ctx, c); err != nil {
				return fmt.Errorf("add default category %s: %w", c.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		log.FromContext(ctx).InfoContext(ctx, "Default categories seeded", log.FieldCount, inserted)
	}
	return inserted, nil
}

// RemoveSeedData deletes demo transactions (IDs with the "seed-" prefix) and,
// if any were found, clears the budgets collection as well. It is a no-op once
// no seed rows remain. It returns the number of transactions removed.
func RemoveSeedData(ctx context.Context, s Store, now time.Time) (int, error) {
	removed := 0
	err := s.WithinTx(ctx, func(tx Store) error {
		all, err := tx.Transactions().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		for _, t := range all {
			if !t.IsSeed() {
				continue
			}
			if err := tx.Transactions().Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("delete seed transaction %s: %w", t.ID, err)
			}
			removed++
		}
		if removed == 0 {
			return nil
		}
		if err := tx.Budgets().Clear(ctx); err != nil {
			return fmt.Errorf("clear budgets: %w", err)
		}
		return tx.Meta().Put(ctx, core.Meta{Key: MetaSeedCleanupAt, Value: now.UTC().Format(time.RFC3339)})
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.FromContext(ctx).InfoContext(ctx, "Seed data removed", log.FieldCount, removed, log.FieldOperation, log.OpCleanup)
	}
	return removed, nil
}
