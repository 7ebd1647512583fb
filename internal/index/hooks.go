package index

import (
	"context"

	"github.com/ridgeline/docxmit/internal/model"
)

// Hooks lets a carrier customize index building without touching the
// common field-resolution pipeline (spec.md §4.3; grounded on
// IndexHandler.py's _isReadyToIndex/_preProcessIndex/_processDerivedFields/
// _postProcessIndex overridable hooks).
type Hooks interface {
	// IsReadyToIndex returns false to skip indexing this case without it
	// being an error (e.g. carrier wants a lab report bundled in but it
	// isn't ready yet).
	IsReadyToIndex(ctx context.Context, c *model.Case) (bool, error)
	PreProcess(ctx context.Context, c *model.Case) error
	ProcessDerivedFields(ctx context.Context, c *model.Case, doc *model.Document) error
	PostProcess(ctx context.Context, c *model.Case, idxPaths []string) error
}
