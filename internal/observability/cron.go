package observability

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes robfig/cron scheduler events through slog.
type cronLogger struct {
	logger *slog.Logger
}

// NewCronLogger adapts logger to the cron.Logger interface. Scheduler
// chatter goes to debug, ticks skipped by cron.SkipIfStillRunning to warn,
// and recovered job panics to error.
func NewCronLogger(logger *slog.Logger) cron.Logger {
	return cronLogger{logger: logger.With("component", "scheduler")}
}

// cronSkipMsg is what cron.SkipIfStillRunning reports through Info.
const cronSkipMsg = "skip"

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == cronSkipMsg {
		l.logger.Warn("scheduled run skipped, previous run still active", keysAndValues...)
		return
	}
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
