package memory

import (
	"context"
	"errors"
	"testing"

	"calcula/internal/core"
	"calcula/internal/storage"
)

func TestWithinTxRollback(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(tx storage.Store) error {
		if err := tx.Budgets().Put(ctx, core.Budget{ID: "cat-expense-groceries", Limit: core.Money{Cents: 100}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v", err)
	}
	if n, _ := storage.Count(ctx, s, storage.CollectionBudgets); n != 0 {
		t.Errorf("budgets after rollback = %d", n)
	}
}

func TestWithinTxNested(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}

	err = s.WithinTx(ctx, func(tx storage.Store) error {
		return tx.WithinTx(ctx, func(inner storage.Store) error {
			return inner.Meta().Put(ctx, core.Meta{Key: "k", Value: "v"})
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	got, err := s.Meta().Get(ctx, "k")
	if err != nil || got.Value != "v" {
		t.Errorf("Meta k = %+v, %v", got, err)
	}
}

func TestGetAllSortedByKey(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cats, err := s.Categories().GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].ID >= cats[i].ID {
			t.Fatalf("categories not sorted: %q before %q", cats[i-1].ID, cats[i].ID)
		}
	}
}
