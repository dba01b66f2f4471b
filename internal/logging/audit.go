package logging

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// AuditEntry records one command execution.
type AuditEntry struct {
	Command    string
	TraceID    string
	Parameters map[string]string
	Success    bool
	Error      string
	Records    int
	TotalCO2e  float64
	Duration   time.Duration
}

// NewAuditEntry starts an entry for command.
func NewAuditEntry(command, traceID string) *AuditEntry {
	return &AuditEntry{Command: command, TraceID: traceID, Parameters: map[string]string{}}
}

// WithParameters copies params onto the entry.
func (e *AuditEntry) WithParameters(params map[string]string) *AuditEntry {
	for k, v := range params {
		e.Parameters[k] = v
	}
	return e
}

// WithSuccess marks the entry successful with the number of records touched
// and the emissions they carried.
func (e *AuditEntry) WithSuccess(records int, totalCO2e float64) *AuditEntry {
	e.Success = true
	e.Records = records
	e.TotalCO2e = totalCO2e
	return e
}

// WithError marks the entry failed.
func (e *AuditEntry) WithError(msg string) *AuditEntry {
	e.Success = false
	e.Error = msg
	return e
}

// WithDuration sets the elapsed time since start.
func (e *AuditEntry) WithDuration(start time.Time) *AuditEntry {
	e.Duration = time.Since(start)
	return e
}

// AuditLoggerConfig enables the audit trail and names its file.
type AuditLoggerConfig struct {
	Enabled bool
	File    string
}

// AuditLogger writes audit entries as JSON lines. The zero value discards.
type AuditLogger struct {
	logger zerolog.Logger
	closer io.Closer
}

// NewAuditLogger opens the audit file. Audit logging is disabled when cfg
// is disabled or the file cannot be opened.
func NewAuditLogger(cfg AuditLoggerConfig) *AuditLogger {
	if !cfg.Enabled || cfg.File == "" {
		return &AuditLogger{logger: zerolog.Nop()}
	}
	f, err := openLogFile(cfg.File)
	if err != nil {
		return &AuditLogger{logger: zerolog.Nop()}
	}
	return &AuditLogger{logger: zerolog.New(f).With().Timestamp().Logger(), closer: f}
}

// NewWriterAuditLogger writes audit lines to w.
func NewWriterAuditLogger(w io.Writer) *AuditLogger {
	return &AuditLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Log writes entry.
func (a *AuditLogger) Log(_ context.Context, entry AuditEntry) {
	if a == nil {
		return
	}
	ev := a.logger.Info().
		Str("command", entry.Command).
		Str(traceIDField, entry.TraceID).
		Bool("success", entry.Success).
		Dur("duration", entry.Duration)
	if len(entry.Parameters) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Parameters {
			dict = dict.Str(k, v)
		}
		ev = ev.Dict("parameters", dict)
	}
	if entry.Success {
		ev = ev.Int("records", entry.Records).Float64("total_co2e", entry.TotalCO2e)
	} else {
		ev = ev.Str("error", entry.Error)
	}
	ev.Msg("audit")
}

// Close releases the audit file.
func (a *AuditLogger) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

type auditLoggerKey struct{}

// ContextWithAuditLogger stores a in ctx.
func ContextWithAuditLogger(ctx context.Context, a *AuditLogger) context.Context {
	return context.WithValue(ctx, auditLoggerKey{}, a)
}

// AuditLoggerFromContext returns the audit logger in ctx, or a discarding one.
func AuditLoggerFromContext(ctx context.Context) *AuditLogger {
	if ctx != nil {
		if a, ok := ctx.Value(auditLoggerKey{}).(*AuditLogger); ok && a != nil {
			return a
		}
	}
	return &AuditLogger{logger: zerolog.Nop()}
}
