package log

import (
	"context"
	"log/slog"
	"net/http"
)

// Middleware puts logger into every request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides domain-specific structured logging helpers
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogIngest logs the outcome of loading a ledger. Individual dropped
// rows are never logged; only the counts are.
func (sl *StructuredLogger) LogIngest(ctx context.Context, sessionID, source string, fields LogFields) {
	level := slog.LevelInfo
	if dropped, ok := fields[FieldRowsDrop].(int); ok && dropped > 0 {
		level = slog.LevelWarn
	}
	fields = fields.WithSession(sessionID).WithOperation(OpIngest)
	fields[FieldSource] = source
	sl.logger.Log(ctx, level, "Ledger ingested", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
