package logger

import (
	"log/slog"
	"os"
)

// serviceName tags every log record so aggregated streams stay attributable.
const serviceName = "printdesk"

// New creates the process-wide JSON logger.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", serviceName))
}
