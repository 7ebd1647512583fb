package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/model"
)

func TestNewIndexRejectsDuplicateFieldNames(t *testing.T) {
	_, err := model.NewIndex(model.IndexTypeCase, "\n", "=", []*model.IndexField{
		{Name: "SID"},
		{Name: "SID"},
	})
	assert.ErrorContains(t, err, "duplicate")
}

func TestIndexFieldTableSplitsLIMSReference(t *testing.T) {
	f := &model.IndexField{Name: "INSURED", Reference: "casemaster.insured_name"}
	table, col, ok := f.Table()
	require.True(t, ok)
	assert.Equal(t, "casemaster", table)
	assert.Equal(t, "insured_name", col)
}

func TestIndexFieldTableRejectsUndotted(t *testing.T) {
	f := &model.IndexField{Name: "X", Reference: "nocolumn"}
	_, _, ok := f.Table()
	assert.False(t, ok)
}

func TestIndexFieldSetValueTruncatesToMaxLength(t *testing.T) {
	f := &model.IndexField{Name: "X", MaxLength: 3}
	ok := f.SetValue("abcdef")
	assert.True(t, ok)
	assert.Equal(t, "abc", f.Value())
}

func TestIndexFieldSetValueRejectsFormatMismatch(t *testing.T) {
	f := &model.IndexField{Name: "X", Format: "regex:[0-9]+"}
	ok := f.SetValue("not-digits")
	assert.False(t, ok)
	assert.Equal(t, "", f.Value())
}

func TestIndexFieldReset(t *testing.T) {
	f := &model.IndexField{Name: "X"}
	f.SetValue("hello")
	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestIndexResetClearsAllFields(t *testing.T) {
	idx, err := model.NewIndex(model.IndexTypeCase, "\n", "=", []*model.IndexField{
		{Name: "A"}, {Name: "B"},
	})
	require.NoError(t, err)
	a, _ := idx.Field("A")
	a.SetValue("x")
	b, _ := idx.Field("B")
	b.SetValue("y")

	idx.Reset()
	assert.Equal(t, "", a.Value())
	assert.Equal(t, "", b.Value())
}

func TestIndexFieldsBySourcePreservesOrder(t *testing.T) {
	fa := &model.IndexField{Name: "A", Source: model.SourceLIMS}
	fb := &model.IndexField{Name: "B", Source: model.SourceLIMS}
	fc := &model.IndexField{Name: "C", Source: model.SourceAcord121}
	idx, err := model.NewIndex(model.IndexTypeCase, "\n", "=", []*model.IndexField{fa, fb, fc})
	require.NoError(t, err)

	groups := idx.FieldsBySource()
	require.Len(t, groups[model.SourceLIMS], 2)
	assert.Equal(t, "A", groups[model.SourceLIMS][0].Name)
	assert.Equal(t, "B", groups[model.SourceLIMS][1].Name)
	require.Len(t, groups[model.SourceAcord121], 1)
}
