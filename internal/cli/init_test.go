package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"calcula/internal/config"
	"calcula/internal/core"
	"calcula/internal/log"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		DataBackend:      backend,
		SQLiteDBPath:     filepath.Join(t.TempDir(), "calcula.db"),
		LogLevel:         "info",
		AppName:          "calcula",
		BackupDir:        t.TempDir(),
		SessionCacheSize: 4,
	}
}

func TestInitWiresState(t *testing.T) {
	for _, b := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(b, func(t *testing.T) {
			ctx := context.Background()
			app, err := Init(ctx, testConfig(t, b), log.Discard())
			if err != nil {
				t.Fatalf("Init: %v", err)
			}
			defer app.Close()

			if n := len(app.State.Snapshot().Categories); n != 9 {
				t.Errorf("categories = %d, want 9", n)
			}
			if _, err := app.State.AddTransaction(ctx, core.Transaction{
				Kind: core.KindIncome, Date: "2025-11-01", Category: "cat-income-salary",
				Description: "Pay", Amount: core.Money{Cents: 100},
			}); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}
		})
	}
}

func TestInitRejectsUnknownBackend(t *testing.T) {
	if _, err := Init(context.Background(), testConfig(t, "sheets"), log.Discard()); err == nil {
		t.Fatal("expected error")
	}
}

func TestInitLogsStoreSetupThroughAppLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentApp, Writer: &buf})

	app, err := Init(context.Background(), testConfig(t, config.BackendSQLite), logger)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer app.Close()

	out := buf.String()
	for _, want := range []string{"Default categories seeded", "SQLite store ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
