package application

import "log/slog"

// ResolveLogger guarantees a non-nil logger on every review code path.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
