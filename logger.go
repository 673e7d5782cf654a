package v2md

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger initializes the global slog logger with a text handler.
func InitLogger(debug bool) {
	initLoggerTo(os.Stderr, debug)
}

func initLoggerTo(w io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		}),
	))
}
