// Package bootstrap wires the concrete ports, stores, and carrier
// registry shared by cmd/docxmitd and cmd/docxmit-carrier, so the two
// binaries' entry points stay thin and never drift from each other on how
// a store or transport gets constructed.
package bootstrap

import (
	"log/slog"
	"os"

	"github.com/ridgeline/docxmit/internal/acord103store"
	"github.com/ridgeline/docxmit/internal/carrier"
	"github.com/ridgeline/docxmit/internal/carrier/examples/aglite"
	"github.com/ridgeline/docxmit/internal/casesource"
	"github.com/ridgeline/docxmit/internal/config"
	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/index"
	"github.com/ridgeline/docxmit/internal/ports"
)

// Environment bundles everything a scheduler run or a single-carrier CLI
// invocation needs.
type Environment struct {
	Config   *config.Config
	DB       ports.DB
	FS       ports.Filesystem
	Clock    ports.Clock
	Log      ports.Logger
	Carriers *carrier.Registry
	Work     *casesource.Source
	Builder  *index.Builder
	History  *history.Store
	Acord103 *acord103store.Store
}

// Load reads configuration and constructs every shared dependency. Callers
// own closing env.DB when they are done (both binaries run to completion
// and exit, so neither bothers with an explicit Close today).
func Load(settingsPath, bindingsPath string) (*Environment, error) {
	log := ports.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load(settingsPath, bindingsPath)
	if err != nil {
		return nil, err
	}

	db, err := ports.OpenSQLDB(cfg.Settings.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	fs := ports.OSFilesystem{}
	clock := ports.SystemClock()
	blobs := acord103store.NewBlobSource(db, fs)

	env := &Environment{
		Config:   cfg,
		DB:       db,
		FS:       fs,
		Clock:    clock,
		Log:      log,
		Carriers: carrier.NewRegistry(),
		Work:     casesource.New(db),
		Builder:  index.NewBuilder(db, fs, ports.ACORDXMLLookup{}, blobs),
		History:  history.NewStore(db),
		Acord103: acord103store.NewStore(db),
	}
	if err := registerCarriers(env.Carriers, db, fs, env.History, clock); err != nil {
		return nil, err
	}
	return env, nil
}

// registerCarriers wires every carrier-specific hook implementation this
// module ships into the registry by name; a contact's config binds to one
// of these names via its hook_name setting.
func registerCarriers(registry *carrier.Registry, db ports.DB, fs ports.Filesystem, hist *history.Store, clock ports.Clock) error {
	return registry.Register(aglite.HookName, carrier.Hooks{
		Index:    aglite.IndexHooks{},
		Transmit: aglite.TransmitHooks{DB: db, FS: fs, Hist: hist, Clock: clock},
	})
}

// ContactsForCarrier returns every configured contact bound to the hook
// name, resolving name through each contact's CarrierAliases first so an
// operator can name either a contact's canonical hook or one of its
// configured aliases. A contact whose id equals name also matches.
func (e *Environment) ContactsForCarrier(name string) []string {
	var ids []string
	for id, c := range e.Config.Contacts {
		target := name
		if canonical, ok := c.CarrierAliases[name]; ok {
			target = canonical
		}
		if c.HookName == target || id == name {
			ids = append(ids, id)
		}
	}
	return ids
}
