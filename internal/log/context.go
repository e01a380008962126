package log

import (
	"context"
	"log/slog"

	"calcula/internal/core"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts the logger stored by WithContext, or wraps the
// slog default when there is none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger logs domain events with a consistent field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, t core.Transaction) {
	fields := NewFields().WithTransaction(t).WithOperation(OpCreate)
	sl.logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionUpdated(ctx context.Context, t core.Transaction) {
	fields := NewFields().WithTransaction(t).WithOperation(OpUpdate)
	sl.logger.InfoContext(ctx, "Transaction updated", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionDeleted(ctx context.Context, id string) {
	sl.logger.InfoContext(ctx, "Transaction deleted", FieldTransactionID, id, FieldOperation, OpDelete)
}

// LogImportCompleted reports how many records of each collection were merged.
func (sl *StructuredLogger) LogImportCompleted(ctx context.Context, txs, cats, budgets int) {
	sl.logger.InfoContext(ctx, "Backup imported",
		FieldOperation, OpImport,
		"transactions", txs,
		"categories", cats,
		"budgets", budgets,
	)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.WithError(err).WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
