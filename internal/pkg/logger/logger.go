package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"clickservice/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "clickservice"

// New builds the process logger: stdout plus an optional rotating file.
// Text output is only used in development unless format is forced to json.
func New(cfg *config.Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg *config.Config, stdout io.Writer) *slog.Logger {
	isDev := cfg.IsDevelopment()

	writers := []io.Writer{stdout}
	if cfg.Logging.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Logging.File.Path,
			MaxSize:    cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAge:     cfg.Logging.File.MaxAgeDays,
			Compress:   cfg.Logging.File.Compress,
		})
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Logging.Level),
		AddSource: isDev,
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") || !isDev {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("service", serviceName),
		slog.String("env", cfg.Server.Environment),
	)
}

// Nop discards everything; used by tests and tools.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
