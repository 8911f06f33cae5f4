package log

import (
	"time"

	"spendtrend/internal/ingest"
)

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
	FieldOperation  = "operation"
	FieldSessionID  = "session_id"
	FieldSource     = "source"
	FieldRowsRead   = "rows_read"
	FieldRowsKept   = "rows_kept"
	FieldRowsDrop   = "rows_dropped"
	FieldHorizon    = "horizon"
	FieldThreshold  = "threshold"
	FieldVerdict    = "verdict"
	FieldMonth      = "month"
	FieldCategory   = "category"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentReport    = "report"
	ComponentSession   = "session"
	ComponentSource    = "source"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpIngest   = "ingest"
	OpSummary  = "summary"
	OpBudget   = "budget"
	OpForecast = "forecast"
	OpReport   = "report"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithSession(id string) LogFields {
	if id != "" {
		f[FieldSessionID] = id
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithIngestStats adds the residual row counts of a cleanse.
func (f LogFields) WithIngestStats(source string, s ingest.Stats) LogFields {
	f[FieldSource] = source
	f[FieldRowsRead] = s.Read
	f[FieldRowsKept] = s.Kept
	f[FieldRowsDrop] = s.Dropped
	return f
}

// WithHTTP adds request/response fields.
func (f LogFields) WithHTTP(method, path string, status int, d time.Duration) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = status
	f[FieldDuration] = d.Milliseconds()
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
