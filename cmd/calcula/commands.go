package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"calcula/internal/backup"
	"calcula/internal/cli"
	"calcula/internal/core"
	"calcula/internal/dashboard"
)

var errUsage = errors.New("usage: calcula <command> [flags]\n\n" +
	"commands:\n" +
	"  summary          dashboard for a filter (-month, -type, -category, -search)\n" +
	"  months           months with transactions\n" +
	"  list             filtered transactions\n" +
	"  add              add a transaction (-type, -date, -category, -desc, -amount)\n" +
	"  update <id>      change fields of a transaction\n" +
	"  delete <id>      delete a transaction\n" +
	"  categories       list categories (-type)\n" +
	"  add-category     add a category (-name, -type)\n" +
	"  delete-category <id>\n" +
	"  budgets          budget status for a filter\n" +
	"  budget-set       set a budget (-category, -limit)\n" +
	"  budget-delete <category>\n" +
	"  export           write a backup file (-o)\n" +
	"  import <file>    merge a backup file\n" +
	"  chat <text>      add a transaction from free text\n" +
	"  clear <collection>")

type command func(ctx context.Context, app *cli.App, args []string, out io.Writer) error

var commands = map[string]command{
	"summary":         runSummary,
	"months":          runMonths,
	"list":            runList,
	"add":             runAdd,
	"update":          runUpdate,
	"delete":          runDelete,
	"categories":      runCategories,
	"add-category":    runAddCategory,
	"delete-category": runDeleteCategory,
	"budgets":         runBudgets,
	"budget-set":      runBudgetSet,
	"budget-delete":   runBudgetDelete,
	"export":          runExport,
	"import":          runImport,
	"chat":            runChat,
	"clear":           runClear,
}

func dispatch(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
	return cmd(ctx, app, args[1:], out)
}

// filterFlags registers the filter flags on fs. Only the flags actually
// given end up in the patch.
func filterFlags(fs *flag.FlagSet) func() core.FilterPatch {
	month := fs.String("month", "", "month as YYYY-MM, or \"all\"")
	kind := fs.String("type", "", "all, income or expense")
	category := fs.String("category", "", "category ID")
	search := fs.String("search", "", "text contained in the description")

	return func() core.FilterPatch {
		var p core.FilterPatch
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "month":
				m := *month
				if m == "all" {
					m = ""
				}
				p.Month = &m
			case "type":
				k := core.Kind(*kind)
				p.Kind = &k
			case "category":
				p.Category = category
			case "search":
				p.Search = search
			}
		})
		return p
	}
}

func applyFilter(app *cli.App, fs *flag.FlagSet, args []string) error {
	patch := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, err := app.State.SetFilter(patch())
	return err
}

func runSummary(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	if err := applyFilter(app, fs, args); err != nil {
		return err
	}
	v := app.State.Dashboard()

	period := "all months"
	if v.Filter.Month != "" {
		period = dashboard.FormatMonthYear(v.Filter.Month)
	}
	fmt.Fprintf(out, "%s\n\n", period)
	fmt.Fprintf(out, "Income:   %s\n", v.Totals.Income.Format())
	fmt.Fprintf(out, "Expenses: %s\n", v.Totals.Expense.Format())
	fmt.Fprintf(out, "Balance:  %s\n", v.Totals.Balance.Format())

	if len(v.Pie) > 0 {
		fmt.Fprintln(out, "\nExpenses by category")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range v.Pie {
			fmt.Fprintf(w, "  %s\t%s\n", p.Name, p.Value.Format())
		}
		w.Flush()
	}

	fmt.Fprintln(out, "\nBalance over time")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range v.Balance {
		fmt.Fprintf(w, "  %s\t%s\n", p.Label, p.Balance.Format())
	}
	return w.Flush()
}

func runMonths(_ context.Context, app *cli.App, _ []string, out io.Writer) error {
	for _, m := range app.State.Dashboard().Months {
		fmt.Fprintf(out, "%s\t%s\n", m, dashboard.FormatMonthYear(m))
	}
	return nil
}

func runList(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := applyFilter(app, fs, args); err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, t := range app.State.Dashboard().Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format(), t.Kind, app.State.CategoryName(t.Category), t.Description, t.Amount.Format())
	}
	return w.Flush()
}

type transactionFlags struct {
	kind, date, category, desc, amount *string
}

func newTransactionFlags(fs *flag.FlagSet, today core.Date) transactionFlags {
	return transactionFlags{
		kind:     fs.String("type", string(core.KindExpense), "income or expense"),
		date:     fs.String("date", string(today), "date as YYYY-MM-DD"),
		category: fs.String("category", "", "category ID"),
		desc:     fs.String("desc", "", "description"),
		amount:   fs.String("amount", "", "amount, e.g. 12.50 or 12,50"),
	}
}

func runAdd(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	tf := newTransactionFlags(fs, core.DateOf(time.Now()))
	if err := fs.Parse(args); err != nil {
		return err
	}
	amount, err := core.ParseMoney(*tf.amount)
	if err != nil {
		return err
	}
	t, err := app.State.AddTransaction(ctx, core.Transaction{
		Kind:        core.Kind(*tf.kind),
		Date:        core.Date(*tf.date),
		Category:    *tf.category,
		Description: strings.TrimSpace(*tf.desc),
		Amount:      amount,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s (%s)\n", t.ID, t.Amount.Format())
	return nil
}

func runUpdate(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("update: missing transaction ID")
	}
	id := args[0]
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	tf := newTransactionFlags(fs, "")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var (
		p         core.TransactionPatch
		amountErr error
	)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			k := core.Kind(*tf.kind)
			p.Kind = &k
		case "date":
			d := core.Date(*tf.date)
			p.Date = &d
		case "category":
			p.Category = tf.category
		case "desc":
			p.Description = tf.desc
		case "amount":
			m, err := core.ParseMoney(*tf.amount)
			amountErr = err
			p.Amount = &m
		}
	})
	if amountErr != nil {
		return amountErr
	}

	t, err := app.State.UpdateTransaction(ctx, id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s\n", t.ID)
	return nil
}

func runDelete(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete: expected one transaction ID")
	}
	if err := app.State.DeleteTransaction(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", args[0])
	return nil
}

func runCategories(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	kind := fs.String("type", "", "income or expense")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cats := app.State.Snapshot().Categories
	if *kind != "" {
		cats = app.State.CategoriesByKind(core.Kind(*kind))
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Kind)
	}
	return w.Flush()
}

func runAddCategory(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add-category", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	kind := fs.String("type", string(core.KindExpense), "income or expense")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := app.State.AddCategory(ctx, strings.TrimSpace(*name), core.Kind(*kind))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Added category %s (%s)\n", c.Name, c.ID)
	return nil
}

func runDeleteCategory(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete-category: expected one category ID")
	}
	if err := app.State.DeleteCategory(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted category %s\n", args[0])
	return nil
}

func runBudgets(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("budgets", flag.ContinueOnError)
	if err := applyFilter(app, fs, args); err != nil {
		return err
	}
	v := app.State.Dashboard()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tLIMIT\tSPENT\tREMAINING\tUSED\tSTATUS")
	for _, s := range v.Budgets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
			s.Name, s.Budget.Limit.Format(), s.Spent.Format(), s.Remaining.Format(), s.Rounded().StringFixed(1), s.Level)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(v.Unbudgeted) > 0 {
		names := make([]string, 0, len(v.Unbudgeted))
		for _, c := range v.Unbudgeted {
			names = append(names, c.Name)
		}
		fmt.Fprintf(out, "\nWithout budget: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func runBudgetSet(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("budget-set", flag.ContinueOnError)
	category := fs.String("category", "", "expense category ID")
	limit := fs.String("limit", "", "monthly limit, e.g. 800")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := core.ParseMoney(*limit)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidLimit, *limit)
	}
	b, err := app.State.SetBudget(ctx, *category, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Budget for %s set to %s\n", app.State.CategoryName(b.ID), b.Limit.Format())
	return nil
}

func runBudgetDelete(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("budget-delete: expected one category ID")
	}
	if err := app.State.DeleteBudget(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted budget %s\n", args[0])
	return nil
}

func runExport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.String("o", "", "output file (default: <backup dir>/<app>-backup-<date>.json, \"-\" for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "-" {
		_, err := app.State.ExportTo(ctx, out)
		return err
	}
	if *path == "" {
		*path = filepath.Join(app.Config.BackupDir, backup.Filename(app.Config.AppName, time.Now()))
	}

	f, err := os.Create(*path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	snap, err := app.State.ExportTo(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	txs, cats, budgets := snap.Counts()
	fmt.Fprintf(out, "Exported %d transactions, %d categories, %d budgets to %s\n", txs, cats, budgets, *path)
	return nil
}

func runImport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("import: expected one .json file")
	}
	if !strings.EqualFold(filepath.Ext(args[0]), ".json") {
		return fmt.Errorf("import: %s is not a .json file", args[0])
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	res, err := app.State.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d transactions, %d categories, %d budgets\n", res.Transactions, res.Categories, res.Budgets)
	return nil
}

func runChat(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("chat: empty message")
	}
	reply, _, err := app.Chat.Send(ctx, text)
	fmt.Fprintln(out, reply)
	return err
}

func runClear(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("clear: expected a collection name")
	}
	if err := app.State.Clear(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Cleared %s\n", args[0])
	return nil
}
