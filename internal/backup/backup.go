// Package backup encodes the full dataset as a portable JSON snapshot and
// decodes such snapshots for a merge-import.
//
// Wire shape:
//
//	{
//	  "transactions": [{"id", "type", "date", "category", "description", "amount"}],
//	  "categories":   [{"id", "name", "type"}],
//	  "budgets":      [{"id", "limit"}],
//	  "exportDate":   "2025-11-20T12:00:00.000Z"
//	}
//
// Amounts are JSON numbers in major units.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"calcula/internal/core"
)

const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrMalformedSnapshot = errors.New("malformed backup snapshot")

// Snapshot is a decoded backup. A nil collection was absent from the
// file and must be skipped on import; an empty one was present but empty.
type Snapshot struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Budgets      []core.Budget
	ExportDate   string
}

// New builds a snapshot of the given collections stamped with now.
func New(txs []core.Transaction, cats []core.Category, budgets []core.Budget, now time.Time) Snapshot {
	return Snapshot{
		Transactions: txs,
		Categories:   cats,
		Budgets:      budgets,
		ExportDate:   now.UTC().Format(exportDateLayout),
	}
}

// Filename returns the download name for a backup taken at now.
func Filename(app string, now time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", app, core.DateOf(now))
}

// Counts returns the number of records per collection.
func (s Snapshot) Counts() (txs, cats, budgets int) {
	return len(s.Transactions), len(s.Categories), len(s.Budgets)
}

type (
	transactionJSON struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      amount `json:"amount"`
	}

	categoryJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}

	budgetJSON struct {
		ID    string `json:"id"`
		Limit amount `json:"limit"`
	}

	snapshotJSON struct {
		Transactions []transactionJSON `json:"transactions"`
		Categories   []categoryJSON    `json:"categories"`
		Budgets      []budgetJSON      `json:"budgets"`
		ExportDate   string            `json:"exportDate"`
	}
)

// amount is a decimal that travels as a bare JSON number.
type amount struct {
	decimal.Decimal
	set bool
}

func amountOf(m core.Money) amount {
	return amount{Decimal: m.Decimal(), set: true}
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("amount %s is not a number", data)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("amount %s is not a number", data)
	}
	a.Decimal, a.set = d, true
	return nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	out := snapshotJSON{
		Transactions: make([]transactionJSON, 0, len(s.Transactions)),
		Categories:   make([]categoryJSON, 0, len(s.Categories)),
		Budgets:      make([]budgetJSON, 0, len(s.Budgets)),
		ExportDate:   s.ExportDate,
	}
	for _, t := range s.Transactions {
		out.Transactions = append(out.Transactions, transactionJSON{
			ID:          t.ID,
			Type:        string(t.Kind),
			Date:        string(t.Date),
			Category:    t.Category,
			Description: t.Description,
			Amount:      amountOf(t.Amount),
		})
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, categoryJSON{ID: c.ID, Name: c.Name, Type: string(c.Kind)})
	}
	for _, b := range s.Budgets {
		out.Budgets = append(out.Budgets, budgetJSON{ID: b.ID, Limit: amountOf(b.Limit)})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Decode reads and validates a snapshot. Every structural problem found is
// reported together, wrapped in ErrMalformedSnapshot.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return Snapshot{}, fmt.Errorf("%w: top level is not a JSON object", ErrMalformedSnapshot)
	}

	var (
		snap   Snapshot
		result *multierror.Error
	)

	if raw, ok := present(top, "transactions"); ok {
		snap.Transactions = make([]core.Transaction, 0)
		result = multierror.Append(result, eachRecord(raw, "transactions", func(rec transactionJSON) error {
			t, err := rec.toCore()
			if err != nil {
				return err
			}
			snap.Transactions = append(snap.Transactions, t)
			return nil
		}))
	}
	if raw, ok := present(top, "categories"); ok {
		snap.Categories = make([]core.Category, 0)
		result = multierror.Append(result, eachRecord(raw, "categories", func(rec categoryJSON) error {
			c, err := rec.toCore()
			if err != nil {
				return err
			}
			snap.Categories = append(snap.Categories, c)
			return nil
		}))
	}
	if raw, ok := present(top, "budgets"); ok {
		snap.Budgets = make([]core.Budget, 0)
		result = multierror.Append(result, eachRecord(raw, "budgets", func(rec budgetJSON) error {
			b, err := rec.toCore()
			if err != nil {
				return err
			}
			snap.Budgets = append(snap.Budgets, b)
			return nil
		}))
	}
	if raw, ok := present(top, "exportDate"); ok {
		if err := json.Unmarshal(raw, &snap.ExportDate); err != nil {
			result = multierror.Append(result, errors.New("exportDate: not a string"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return snap, nil
}

// present returns the raw field value unless it is missing or null.
func present(top map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := top[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// eachRecord decodes raw as an array and hands every element to fn,
// collecting one error per bad record.
func eachRecord[T any](raw json.RawMessage, field string, fn func(T) error) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%s: not an array", field)
	}
	var result *multierror.Error
	for i, item := range items {
		var rec T
		if err := json.Unmarshal(item, &rec); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s[%d]: %w", field, i, err))
			continue
		}
		if err := fn(rec); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s[%d]: %w", field, i, err))
		}
	}
	return result.ErrorOrNil()
}

func (r transactionJSON) toCore() (core.Transaction, error) {
	if r.ID == "" {
		return core.Transaction{}, core.ErrEmptyID
	}
	kind := core.Kind(r.Type)
	if !kind.Valid() {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, r.Type)
	}
	date := core.Date(r.Date)
	if err := date.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", err, r.Date)
	}
	if !r.Amount.set || r.Amount.IsNegative() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	amount, err := core.MoneyFromDecimalChecked(r.Amount.Decimal)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          r.ID,
		Kind:        kind,
		Date:        date,
		Category:    r.Category,
		Description: r.Description,
		Amount:      amount,
	}, nil
}

func (r categoryJSON) toCore() (core.Category, error) {
	if r.ID == "" {
		return core.Category{}, core.ErrEmptyID
	}
	kind := core.Kind(r.Type)
	if !kind.Valid() {
		return core.Category{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, r.Type)
	}
	return core.Category{ID: r.ID, Name: r.Name, Kind: kind}, nil
}

func (r budgetJSON) toCore() (core.Budget, error) {
	if r.ID == "" {
		return core.Budget{}, core.ErrEmptyID
	}
	if !r.Limit.set || !r.Limit.IsPositive() {
		return core.Budget{}, core.ErrInvalidLimit
	}
	limit, err := core.MoneyFromDecimalChecked(r.Limit.Decimal)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: %w", core.ErrInvalidLimit, err)
	}
	return core.Budget{ID: r.ID, Limit: limit}, nil
}
