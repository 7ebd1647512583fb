package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/metrics"
)

func TestInitDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := metrics.Init(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitEnabledWiresStdoutProviderAndShutdownFlushes(t *testing.T) {
	shutdown, err := metrics.Init(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	metrics.RecordRun(context.Background(), 0, 1, 2, 0)
	assert.NoError(t, shutdown(context.Background()))
}

func TestRecordingFunctionsDoNotPanicWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.RecordRun(context.Background(), 0, 0, 0, 0)
		metrics.SetQueueDepth(context.Background(), "c1", 1)
		metrics.RecordOverdue(context.Background(), "c1", 2)
	})
}
