// Package scheduler runs one pass of the pipeline across every configured
// contact: build indexes for newly exported cases, then stage and
// transmit whatever is ready. Grounded on
// original_source/ASAP_2.7/MainThread.py's run() (purge null files, pull
// contacts, process each with a bounded thread pool, log elapsed time)
// and ContactThread.py's run() (per-contact index-then-transmit sequence,
// errors isolated to the offending contact).
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ridgeline/docxmit/internal/acord103store"
	"github.com/ridgeline/docxmit/internal/carrier"
	"github.com/ridgeline/docxmit/internal/config"
	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/index"
	"github.com/ridgeline/docxmit/internal/metrics"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/runctx"
)

// ContactWorkSource supplies the cases a contact has waiting at each stage
// of the pipeline. A concrete implementation queries LIMS/Delta QC/case QC
// the way ASAPMainHandler's getExportedCasesForContact/
// getIndexedCasesForContact do; it is injected here so the scheduler
// itself stays free of SQL.
type ContactWorkSource interface {
	// ExportedCases returns released cases not yet indexed for contact.
	ExportedCases(ctx context.Context, contact *model.Contact) ([]*model.Case, error)
	// IndexedCases returns cases indexed and ready to stage for contact.
	IndexedCases(ctx context.Context, contact *model.Contact) ([]*model.Case, error)
}

// Restager re-queues a case that failed mid-staging for another attempt
// on a future run, the Go analogue of ASAP_UTILITY.reStageToTransmit.
// Optional: a ContactWorkSource that does not implement it simply leaves
// a failed case where IndexedCases will find it again next run.
type Restager interface {
	Restage(ctx context.Context, c *model.Case) error
}

// Scheduler runs one pipeline pass across every configured contact.
type Scheduler struct {
	cfg      *config.Config
	carriers *carrier.Registry
	work     ContactWorkSource
	builder  *index.Builder
	hist     *history.Store
	acord103 *acord103store.Store
	db       ports.DB
	fs       ports.Filesystem
	clock    ports.Clock
	log      ports.Logger

	concurrency int
}

// New builds a Scheduler. concurrency bounds how many contacts are
// processed at once (spec.md §6's WorkerConcurrency setting); the
// original ran a fixed pool of 5 (MainThread.py's maxThreads), here it is
// operator-configured.
func New(
	cfg *config.Config,
	carriers *carrier.Registry,
	work ContactWorkSource,
	builder *index.Builder,
	hist *history.Store,
	acord103 *acord103store.Store,
	db ports.DB,
	fs ports.Filesystem,
	clock ports.Clock,
	log ports.Logger,
	concurrency int,
) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		cfg: cfg, carriers: carriers, work: work, builder: builder,
		hist: hist, acord103: acord103, db: db, fs: fs, clock: clock, log: log,
		concurrency: concurrency,
	}
}

// Run processes every configured contact, bounded to s.concurrency at a
// time. A contact's error is logged and not returned, so a single
// contact's failure never blocks the others, mirroring the original's
// per-thread exception isolation. Run returns an error only when it cannot
// acquire a worker slot because ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	rc := runctx.New(s.clock, s.log)
	rc.Logger.Info("ASAP processing starting")

	sem := semaphore.NewWeighted(int64(s.concurrency))
	g, gctx := errgroup.WithContext(ctx)

	var indexed, staged, failed atomic.Int64
	for _, contact := range s.cfg.Contacts {
		contact := contact
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("scheduler: acquiring worker slot: %w", err)
		}
		g.Go(func() error {
			defer sem.Release(1)
			w := &worker{s: s, contact: contact, log: rc.Logger.With("contact", contact.ContactID)}
			counts, err := w.run(gctx)
			indexed.Add(int64(counts.indexed))
			staged.Add(int64(counts.staged))
			failed.Add(int64(counts.failed))
			if err != nil {
				w.log.Error("contact processing failed", err)
			}
			return nil
		})
	}

	err := g.Wait()
	metrics.RecordRun(ctx, rc.Elapsed(), int(indexed.Load()), int(staged.Load()), int(failed.Load()))
	rc.Logger.Info("ASAP processing complete", "elapsed", rc.Elapsed())
	return err
}
