package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a zap core that forwards entries to a DBLogWriter before handing
// them to the wrapped core
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps the DB tee on child loggers
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var ip, userID string

	for _, f := range append(c.fields, fields...) {
		switch f.Key {
		case "ip":
			ip = f.String
		case "user_id":
			userID = f.String
		}
	}

	c.writer.AddLog(LogEntry{
		Level:     entry.Level,
		Message:   entry.Message,
		IpAddress: ip,
		UserID:    userID,
		Caller:    entry.Caller.Function,
		Time:      entry.Time,
	})

	// Only the wrapped core's own fields are needed here; With already applied ours
	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
