package internal

import (
	"context"
	"log/slog"
)

// LevelTrace extends slog's level set one notch below Debug, the standard
// way to add a finer level to slog (see slog.Level docs). Pool
// initialization logs at this level so it stays out of the way at Debug
// and above.
const LevelTrace = slog.LevelDebug - 4

func trace(log *slog.Logger, msg string, args ...any) {
	log.Log(context.Background(), LevelTrace, msg, args...)
}

// defaultLogger returns slog.Default() when the caller did not supply one.
func defaultLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
