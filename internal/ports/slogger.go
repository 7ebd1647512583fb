package ports

import "log/slog"

// slogLogger adapts log/slog to the Logger port, matching the teacher's use
// of slog for structured logging (internal/coop/monitor.go and others).
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an *slog.Logger as a Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }

func (s *slogLogger) Error(msg string, err error, fields ...any) {
	s.l.Error(msg, append([]any{"error", err}, fields...)...)
}
