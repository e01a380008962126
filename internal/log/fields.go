package log

import "calcula/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldDate          = "date"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldBudget        = "budget"
	FieldCollection    = "collection"
	FieldCount         = "count"
	FieldMonth         = "month"
	FieldPath          = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentState   = "state"
	ComponentBackup  = "backup"
	ComponentChat    = "chat"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpLoad     = "load"
	OpImport   = "import"
	OpExport   = "export"
	OpCleanup  = "cleanup"
	OpParse    = "parse"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeDatabase   = "database_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeConflict   = "conflict_error"
	ErrorTypeMalformed  = "malformed_input"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the identifying fields of a transaction.
// The free-text description is never logged.
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldKind] = string(t.Kind)
	f[FieldDate] = string(t.Date)
	f[FieldCategory] = t.Category
	f[FieldAmountCents] = t.Amount.Cents
	return f
}

func (f LogFields) WithCollection(name string, count int) LogFields {
	f[FieldCollection] = name
	f[FieldCount] = count
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
