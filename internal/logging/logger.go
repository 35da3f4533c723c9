package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger installs a tint handler as the default slog logger.
// level: "debug", "info", "warn", "error" (defaults to "info")
func InitLogger(level string) {
	slog.SetDefault(New(os.Stdout, level))
}

func New(w io.Writer, level string) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
