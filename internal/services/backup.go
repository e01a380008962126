package services

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"calcula/internal/backup"
	"calcula/internal/core"
	"calcula/internal/log"
	"calcula/internal/storage"
)

// ImportResult counts the records merged per collection.
type ImportResult struct {
	Transactions int
	Categories   int
	Budgets      int
}

// Export reads the full dataset straight from the store. The active
// filter plays no part and nothing is written.
func (c *StateController) Export(ctx context.Context) (backup.Snapshot, error) {
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
		return backup.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	return backup.New(txs, cats, budgets, c.now()), nil
}

// ExportTo writes the JSON snapshot to w.
func (c *StateController) ExportTo(ctx context.Context, w io.Writer) (backup.Snapshot, error) {
	snap, err := c.Export(ctx)
	if err != nil {
		return backup.Snapshot{}, err
	}
	if err := backup.Encode(w, snap); err != nil {
		return backup.Snapshot{}, err
	}
	txs, cats, budgets := snap.Counts()
	c.logCollections(ctx, "Collection exported", log.OpExport, txs, cats, budgets)
	return snap, nil
}

func (c *StateController) logCollections(ctx context.Context, msg, op string, txs, cats, budgets int) {
	logger := c.logger.WithComponent(log.ComponentBackup)
	for _, n := range []struct {
		coll  storage.Collection
		count int
	}{
		{storage.CollectionTransactions, txs},
		{storage.CollectionCategories, cats},
		{storage.CollectionBudgets, budgets},
	} {
		fields := log.NewFields().WithCollection(string(n.coll), n.count).WithOperation(op)
		logger.InfoContext(ctx, msg, fields.ToSlice()...)
	}
}

// Import decodes a snapshot from r and upserts every record it carries.
// All collections are merged in one storage transaction, so a failure
// leaves the store untouched. Records missing from the snapshot are kept.
func (c *StateController) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	snap, err := backup.Decode(r)
	if err != nil {
		c.events.LogError(ctx, "Backup rejected", err, log.OpImport,
			log.NewFields().WithErrorType(log.ErrorTypeMalformed))
		return ImportResult{}, err
	}
	return c.ImportSnapshot(ctx, snap)
}

// ImportSnapshot merges an already decoded snapshot. Nil collections are
// skipped.
func (c *StateController) ImportSnapshot(ctx context.Context, snap backup.Snapshot) (ImportResult, error) {
	var res ImportResult
	err := c.writeThenRefresh(ctx, log.OpImport, func(ctx context.Context) error {
		return c.store.WithinTx(ctx, func(tx storage.Store) error {
			n, err := putAll(ctx, tx.Transactions(), snap.Transactions)
			if err != nil {
				return err
			}
			res.Transactions = n
			if n, err = putAll(ctx, tx.Categories(), snap.Categories); err != nil {
				return err
			}
			res.Categories = n
			if n, err = putAll(ctx, tx.Budgets(), snap.Budgets); err != nil {
				return err
			}
			res.Budgets = n
			return nil
		})
	}, c.reloadAll)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	c.logCollections(ctx, "Collection imported", log.OpImport, res.Transactions, res.Categories, res.Budgets)
	c.events.LogImportCompleted(ctx, res.Transactions, res.Categories, res.Budgets)
	return res, nil
}

func putAll[T any](ctx context.Context, r storage.Records[T], recs []T) (int, error) {
	for _, rec := range recs {
		if err := r.Put(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}
