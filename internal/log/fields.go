package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldExecutionID  = "execution_id"
	FieldAction       = "action"
	FieldRunningLocal = "running_local"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldStartDay     = "start_day"
	FieldEndDay       = "end_day"
	FieldPage         = "page"
	FieldTotalPages   = "total_pages"
	FieldMonth        = "month"
	FieldSum          = "sum"
	FieldBalance      = "balance"
	FieldCount        = "count"
	FieldDurationMs   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentWorker   = "worker"
	ComponentIngest   = "ingest"
	ComponentSummary  = "summary"
	ComponentMigrate  = "migrate"
	ComponentNotify   = "notify"
	ComponentProvider = "provider"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentSheets   = "sheets"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpAuthenticate = "authenticate"
	OpFetchPage    = "fetch_page"
	OpFetchBalance = "fetch_balance"
	OpInsert       = "insert"
	OpAggregate    = "aggregate"
	OpClear        = "clear"
	OpPublish      = "publish"
	OpExport       = "export"
	OpValidate     = "validate"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithExecution adds the invocation identity
func (f LogFields) WithExecution(executionID, action string) LogFields {
	f[FieldExecutionID] = executionID
	f[FieldAction] = action
	return f
}

// WithRunningLocal marks runs started from a developer machine
func (f LogFields) WithRunningLocal(local bool) LogFields {
	f[FieldRunningLocal] = local
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDayRange adds the inclusive day range of an ingestion or summary
func (f LogFields) WithDayRange(start, end string) LogFields {
	f[FieldStartDay] = start
	f[FieldEndDay] = end
	return f
}

// WithSummary adds month label and total
func (f LogFields) WithSummary(month string, sum float64) LogFields {
	f[FieldMonth] = month
	f[FieldSum] = sum
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
