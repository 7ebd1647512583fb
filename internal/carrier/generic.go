package carrier

import (
	"context"

	"github.com/ridgeline/docxmit/internal/model"
)

// GenericHooks is the base index.Hooks every registered carrier starts
// from: a case is always ready, no pre/post processing runs, and
// ProcessDerivedFields leaves the index untouched. Grounded on
// IndexHandler.py's ASAPIndexHandler base-class defaults, which every
// *Custom.py module overrides selectively rather than wholesale.
type GenericHooks struct{}

func (GenericHooks) IsReadyToIndex(context.Context, *model.Case) (bool, error) { return true, nil }
func (GenericHooks) PreProcess(context.Context, *model.Case) error            { return nil }
func (GenericHooks) ProcessDerivedFields(context.Context, *model.Case, *model.Document) error {
	return nil
}
func (GenericHooks) PostProcess(context.Context, *model.Case, []string) error { return nil }
