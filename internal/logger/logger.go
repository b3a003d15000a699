package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// Errors are additionally forwarded to Sentry when a DSN is set
func Init(isDev bool, sentryDSN string) {
	level := slog.LevelInfo
	if isDev {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{newStdoutHandler(isDev, level)}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func newStdoutHandler(isDev bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if isDev {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

// Component returns a logger tagged with the given component name
func Component(name string) *slog.Logger {
	if Log == nil {
		return slog.Default().With("component", name)
	}
	return Log.With("component", name)
}

// Flush waits for buffered Sentry events before shutdown
func Flush() {
	sentry.Flush(2 * time.Second)
}
