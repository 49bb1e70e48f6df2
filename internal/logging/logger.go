package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the global JSON logger. The minimum level comes from
// LOG_LEVEL so operators can switch on debug without a rebuild.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(os.Getenv("LOG_LEVEL")),
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown or empty values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
