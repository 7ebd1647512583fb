// Package carrier registers the per-carrier customization hooks a
// contact's configured HookName selects at run time, in place of the
// original's one-Python-module-per-carrier (AGLiteCustom.py, BANCustom.py,
// and so on) each hard-wired to its own contact id. Grounded on
// steveyegge-beads' internal/gate.Registry.
package carrier

import (
	"fmt"
	"sync"

	"github.com/ridgeline/docxmit/internal/index"
	"github.com/ridgeline/docxmit/internal/transmit"
)

// Hooks bundles the index-building, transmit, and (optional)
// reconciliation hooks one carrier implementation provides. A carrier
// registers once under a HookName that contacts reference from
// configuration. Recon is nil for carriers with no reconciliation feed;
// callers must check before using it.
type Hooks struct {
	Index    index.Hooks
	Transmit transmit.Hooks
	Recon    transmit.ReconSource
}

// Registry maps a carrier's HookName to its Hooks implementation.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hooks
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hooks)}
}

// Register adds a carrier's hooks under name. Returns an error if name is
// already registered, so two carriers never silently shadow each other.
func (r *Registry) Register(name string, h Hooks) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[name]; exists {
		return fmt.Errorf("carrier: hook %q already registered", name)
	}
	if h.Index == nil {
		h.Index = GenericHooks{}
	}
	if h.Transmit == nil {
		h.Transmit = transmit.NopHooks{}
	}
	r.hooks[name] = h
	return nil
}

// Get returns the hooks registered under name, or an error if none were
// registered — a contact referencing an unknown HookName is a
// configuration error, not a silent no-op.
func (r *Registry) Get(name string) (Hooks, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[name]
	if !ok {
		return Hooks{}, fmt.Errorf("carrier: no hooks registered for %q", name)
	}
	return h, nil
}

// Names returns every registered hook name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	return names
}
