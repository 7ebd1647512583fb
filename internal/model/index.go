package model

import "fmt"

// FieldSource names where an IndexField's value is resolved from.
type FieldSource string

const (
	SourceAcord103 FieldSource = "ACORD103"
	SourceAcord121 FieldSource = "ACORD121"
	SourceDeltaQC  FieldSource = "DELTA_QC"
	SourceLIMS     FieldSource = "LIMS"
	SourceDerived  FieldSource = "DERIVED"
)

// IndexField is one key=value slot in an Index, resolved from exactly one
// FieldSource per case/document build.
type IndexField struct {
	Name      string
	Source    FieldSource
	Reference string // dotted path (ACORD103/121) or "table.column" (LIMS) or "object.attr" (DELTA_QC)
	Required  bool
	MaxLength int
	Format    string // "date:<strftime>", "regex:<pattern>", a literal, or empty (no constraint)
	value     string
	wasSet    bool
}

// Value returns the field's currently resolved value, or "" if unset.
func (f *IndexField) Value() string { return f.value }

// SetValue sets the field's value, applying MaxLength truncation if
// configured. Returns false if the value does not satisfy a non-empty
// Format (date, regex or literal; see matchesFormat).
func (f *IndexField) SetValue(v string) bool {
	if f.MaxLength > 0 && len(v) > f.MaxLength {
		v = v[:f.MaxLength]
	}
	if !matchesFormat(v, f.Format) {
		return false
	}
	f.value = v
	f.wasSet = true
	return true
}

// Reset clears the field's value, called at the start of each case build.
func (f *IndexField) Reset() {
	f.value = ""
	f.wasSet = false
}

// Table splits a LIMS reference of the form "table.column" into its parts.
func (f *IndexField) Table() (table, column string, ok bool) {
	return splitDotted(f.Reference)
}

func splitDotted(ref string) (first, second string, ok bool) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}

// Index is an ordered, named set of IndexFields plus the delimiter
// configuration used to serialize them (spec.md §3, §6).
type Index struct {
	Type     IndexType
	Delim    string
	Subdelim string
	fields   []*IndexField
	byName   map[string]*IndexField
}

// NewIndex builds an Index from an ordered field list; field names must be
// unique (spec.md §3 Index invariants).
func NewIndex(typ IndexType, delim, subdelim string, fields []*IndexField) (*Index, error) {
	idx := &Index{Type: typ, Delim: delim, Subdelim: subdelim, byName: map[string]*IndexField{}}
	for _, f := range fields {
		if _, dup := idx.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate index field name %q", f.Name)
		}
		idx.byName[f.Name] = f
		idx.fields = append(idx.fields, f)
	}
	return idx, nil
}

// Reset clears every field's value, called at the start of each case build.
func (idx *Index) Reset() {
	for _, f := range idx.fields {
		f.Reset()
	}
}

// OrderedFields returns the fields in configured field_order.
func (idx *Index) OrderedFields() []*IndexField {
	return idx.fields
}

// Field looks up a field by name.
func (idx *Index) Field(name string) (*IndexField, bool) {
	f, ok := idx.byName[name]
	return f, ok
}

// FieldsBySource groups the index's fields by their configured source,
// preserving field order within each group (mirrors the index builder's
// source-grouping pass, spec.md §4.3 step 2).
func (idx *Index) FieldsBySource() map[FieldSource][]*IndexField {
	groups := map[FieldSource][]*IndexField{}
	for _, f := range idx.fields {
		groups[f.Source] = append(groups[f.Source], f)
	}
	return groups
}
