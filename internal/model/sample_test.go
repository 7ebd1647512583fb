package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline/docxmit/internal/model"
)

func TestSampleReleasable(t *testing.T) {
	assert.True(t, model.Sample{HoldFlag: ""}.Releasable())
	assert.True(t, model.Sample{HoldFlag: "x"}.Releasable())
	assert.False(t, model.Sample{HoldFlag: model.HoldFlagTilde}.Releasable())
	assert.False(t, model.Sample{HoldFlag: model.HoldFlagHash}.Releasable())
}
