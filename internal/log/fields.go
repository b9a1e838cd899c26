package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldYear       = "year"

	FieldClientID  = "client_id"
	FieldPaymentID = "payment_id"
	FieldItemID    = "item_id"
	FieldItemType  = "item_type"
	FieldPolicy    = "policy"
	FieldAmount    = "amount"
	FieldSettled   = "settled_count"
	FieldMessageID = "message_id"
	FieldSheetsRef = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentLedger     = "ledger"
	ComponentSettlement = "settlement"
	ComponentAllocation = "allocation"
	ComponentExport     = "export"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReorder  = "reorder"
	OpPropose  = "propose"
	OpCommit   = "commit"
	OpRegister = "register"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypePartial       = "partial_commit_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeInternal      = "internal_error"
	ErrorTypeRateLimited   = "rate_limited"
	ErrorTypeConfiguration = "configuration_error"
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

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithError adds the error message and its category.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithPayment adds the fields that identify a payment and its allocation policy.
func (f LogFields) WithPayment(clientID, paymentID int64, amount decimal.Decimal, policy string) LogFields {
	f[FieldClientID] = clientID
	f[FieldPaymentID] = paymentID
	f[FieldAmount] = amount.StringFixed(2)
	if policy != "" {
		f[FieldPolicy] = policy
	}
	return f
}

// WithItem adds a line item reference.
func (f LogFields) WithItem(id int64, itemType string) LogFields {
	f[FieldItemID] = id
	f[FieldItemType] = itemType
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
