// Package logging configures the process-wide structured logger. The log
// stream is the operator UI (spec §7): every dropped message, clamp, and
// latch transition is a single `[COMPONENT farm/zone]`-keyed line.
package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

// Init configures slog to log to both stdout and a log file under LOG_DIR
// (default ./logs), returning the logger and the opened file so the caller
// can Close it on shutdown.
func Init(component string) (*slog.Logger, *os.File) {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "./logs"
	}
	_ = os.MkdirAll(logDir, 0o755)

	filePath := filepath.Join(logDir, component+".log")
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		logger.Error("failed to open log file; falling back to stdout only", "error", err)
		return logger.With(slog.String("component", component)), nil
	}

	mw := NewMultiWriter(f, os.Stdout)
	h := slog.NewTextHandler(mw, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(h).With(slog.String("component", component))

	log.SetOutput(mw)
	return logger, f
}

// Zone returns a child logger tagged with the `[COMPONENT farm/zone]` key
// spec §7 requires for every user-visible log line.
func Zone(base *slog.Logger, farm, zone string) *slog.Logger {
	return base.With(slog.String("farm", farm), slog.String("zone", zone))
}
