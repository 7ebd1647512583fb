package xmiterr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline/docxmit/internal/xmiterr"
)

func TestErrorFormatsOpKindCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := xmiterr.New("DialFTP", xmiterr.KindTransient, cause)
	assert.Equal(t, "DialFTP: transient: connection refused", err.Error())
}

func TestErrorFormatsWithoutCause(t *testing.T) {
	err := xmiterr.New("Validate", xmiterr.KindConfig, nil)
	assert.Equal(t, "Validate: config", err.Error())
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("boom")
	err := xmiterr.New("Op", xmiterr.KindData, cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestIsMatchesDirectError(t *testing.T) {
	err := xmiterr.New("Op", xmiterr.KindTransport, errors.New("x"))
	assert.True(t, xmiterr.Is(err, xmiterr.KindTransport))
	assert.False(t, xmiterr.Is(err, xmiterr.KindConfig))
}

func TestIsUnwrapsThroughFmtErrorf(t *testing.T) {
	xerr := xmiterr.New("Send", xmiterr.KindTransport, errors.New("eof"))
	wrapped := fmt.Errorf("stageAndTransmit: %w", xerr)
	wrapped = fmt.Errorf("worker: %w", wrapped)

	assert.True(t, xmiterr.Is(wrapped, xmiterr.KindTransport))
	assert.False(t, xmiterr.Is(wrapped, xmiterr.KindData))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, xmiterr.Is(errors.New("plain"), xmiterr.KindData))
	assert.False(t, xmiterr.Is(nil, xmiterr.KindData))
}

func TestKindOfReturnsKindAndOK(t *testing.T) {
	xerr := xmiterr.New("Op", xmiterr.KindUnsupported, nil)
	wrapped := fmt.Errorf("context: %w", xerr)

	kind, ok := xmiterr.KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, xmiterr.KindUnsupported, kind)
}

func TestKindOfFalseWhenNoXmiterr(t *testing.T) {
	_, ok := xmiterr.KindOf(errors.New("plain"))
	assert.False(t, ok)
}
