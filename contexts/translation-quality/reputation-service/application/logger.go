package application

import "log/slog"

// resolveLogger keeps read paths nil-safe when no logger is injected.
func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
