// Package idxfmt implements the index file line codec: an ordered set of
// field=value pairs joined by a configurable delimiter, with delimiter
// values given as escape tokens rather than literal characters. Grounded
// on original_source/ASAP_2.7/Index.py's readFile/writeFile.
package idxfmt

import (
	"fmt"
	"strings"

	atomicfile "github.com/natefinch/atomic"

	"github.com/ridgeline/docxmit/internal/model"
)

// escapeMap maps the escape tokens a configured delim/subdelim may be
// written as into the literal character they represent.
var escapeMap = map[string]string{
	"<LF>": "\n",
	"<CR>": "\r",
	"<T>":  "\t",
	"<SP>": " ",
}

// ResolveEscape expands any escape tokens present in s into their literal
// characters, leaving already-literal input untouched. Delim/subdelim
// configuration values go through this before use.
func ResolveEscape(s string) string {
	for token, literal := range escapeMap {
		s = strings.ReplaceAll(s, token, literal)
	}
	return s
}

// Encode renders an Index's current field values as index-file bytes, in
// configured field order, joined by delim/subdelim. A required field with
// no value set is an error, matching the original's behavior of refusing
// to write an incomplete index rather than shipping a carrier a partial
// file.
func Encode(idx *model.Index) ([]byte, error) {
	var pairs []string
	for _, field := range idx.OrderedFields() {
		value := field.Value()
		if value == "" && field.Required {
			return nil, fmt.Errorf("idxfmt: required field %q has no value", field.Name)
		}
		pairs = append(pairs, field.Name+idx.Subdelim+value)
	}
	raw := strings.Join(pairs, idx.Delim) + "\n"
	return []byte(raw), nil
}

// Decode parses index-file bytes into idx's fields, via SetValue so
// MaxLength/Format constraints are enforced on read as well as write.
func Decode(idx *model.Index, raw []byte) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}
	for _, pair := range strings.Split(trimmed, idx.Delim) {
		name, value, ok := strings.Cut(pair, idx.Subdelim)
		if !ok {
			return fmt.Errorf("idxfmt: malformed pair %q (missing subdelim %q)", pair, idx.Subdelim)
		}
		field, ok := idx.Field(name)
		if !ok {
			return fmt.Errorf("idxfmt: unknown field %q", name)
		}
		if !field.SetValue(value) {
			return fmt.Errorf("idxfmt: failed to set field %q to value %q", name, value)
		}
	}
	return nil
}

// WriteFile encodes idx and writes it to path atomically.
func WriteFile(idx *model.Index, path string) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, strings.NewReader(string(data)))
}
