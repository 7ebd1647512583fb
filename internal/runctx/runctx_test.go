package runctx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/runctx"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type mutableClock struct{ now time.Time }

func (c *mutableClock) Now() time.Time { return c.now }

type recordingLogger struct {
	fields []any
}

func (l *recordingLogger) With(fields ...any) ports.Logger {
	return &recordingLogger{fields: append(append([]any{}, l.fields...), fields...)}
}
func (l *recordingLogger) Debug(msg string, fields ...any)        {}
func (l *recordingLogger) Info(msg string, fields ...any)         {}
func (l *recordingLogger) Warn(msg string, fields ...any)         {}
func (l *recordingLogger) Error(msg string, err error, fields ...any) {}

func TestNewStampsStartedAtFromClock(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rc := runctx.New(fixedClock{now: start}, &recordingLogger{})
	assert.Equal(t, start, rc.StartedAt)
}

func TestElapsedUsesClockNotWallTime(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &mutableClock{now: start}
	rc := runctx.New(clock, &recordingLogger{})

	clock.now = start.Add(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, rc.Elapsed())
}

func TestWithLoggerAttachesFieldsWithoutMutatingOriginal(t *testing.T) {
	base := &recordingLogger{}
	rc := runctx.New(fixedClock{now: time.Now()}, base)

	scoped := rc.WithLogger("contact", "c1")
	scopedLogger := scoped.Logger.(*recordingLogger)
	assert.Equal(t, []any{"contact", "c1"}, scopedLogger.fields)
	assert.Empty(t, base.fields)
}
