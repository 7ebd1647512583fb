package scheduler

import (
	"context"
	"fmt"

	"github.com/ridgeline/docxmit/internal/carrier"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/trackedfile"
	"github.com/ridgeline/docxmit/internal/transmit"
	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// worker processes one contact's index-then-transmit pass. It owns no
// state beyond what it needs for this one run and is never shared across
// goroutines (spec.md §3 Ownership rules).
type worker struct {
	s       *Scheduler
	contact *model.Contact
	log     ports.Logger
}

// workerCounts tallies one worker's contribution to the run-wide metrics.
type workerCounts struct {
	indexed, staged, failed int
}

func (w *worker) run(ctx context.Context) (workerCounts, error) {
	var counts workerCounts

	hooks, err := w.s.carriers.Get(w.contact.HookName)
	if err != nil {
		return counts, fmt.Errorf("resolving carrier hooks: %w", err)
	}

	if err := w.buildIndexes(ctx, hooks, &counts); err != nil {
		return counts, fmt.Errorf("building indexes: %w", err)
	}

	return counts, w.stageAndTransmit(ctx, hooks, &counts)
}

func (w *worker) buildIndexes(ctx context.Context, hooks carrier.Hooks, counts *workerCounts) error {
	exported, err := w.s.work.ExportedCases(ctx, w.contact)
	if err != nil {
		return fmt.Errorf("loading exported cases: %w", err)
	}
	if len(exported) == 0 {
		return nil
	}
	w.log.Info("building indexes", "caseCount", len(exported))

	var firstErr error
	for _, c := range exported {
		if _, err := w.s.builder.BuildForCase(ctx, c, hooks.Index); err != nil {
			fields := []any{"sid", c.Sid, "trackingId", c.TrackingID}
			if kind, ok := xmiterr.KindOf(err); ok {
				fields = append(fields, "kind", string(kind))
			}
			w.log.Error("exception building indexes, please correct so transmission can continue", err, fields...)
			counts.failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if marker, ok := w.s.work.(interface {
			MarkIndexed(context.Context, *model.Case) error
		}); ok {
			if err := marker.MarkIndexed(ctx, c); err != nil {
				w.log.Error("marking case indexed failed", err, "sid", c.Sid)
			}
		}
		counts.indexed++
	}
	return firstErr
}

func (w *worker) stageAndTransmit(ctx context.Context, hooks carrier.Hooks, counts *workerCounts) error {
	indexed, err := w.s.work.IndexedCases(ctx, w.contact)
	if err != nil {
		return fmt.Errorf("loading indexed cases: %w", err)
	}
	if len(indexed) > 0 {
		w.log.Info("staging cases for transmission", "caseCount", len(indexed))
	}

	files := trackedfile.NewManager(w.s.db, w.s.fs, w.contact.ContactID, w.contact.Paths.XmitDir)
	orch := transmit.NewOrchestrator(files, w.s.hist, w.s.clock, w.log)

	res, err := orch.StageAndTransmit(ctx, w.contact, indexed, hooks.Transmit, w.restage(ctx))
	if err != nil {
		return fmt.Errorf("staging and transmitting: %w", err)
	}
	counts.staged += len(res.Staged)
	counts.failed += len(res.Failures)
	if !res.Success {
		w.log.Warn("at least one error processing cases for contact")
	}
	if marker, ok := w.s.work.(interface {
		MarkStaged(context.Context, *model.Case) error
	}); ok {
		for _, c := range res.Staged {
			if err := marker.MarkStaged(ctx, c); err != nil {
				w.log.Error("marking case staged failed", err, "sid", c.Sid)
			}
		}
	}
	for _, alert := range res.Alerts {
		w.log.Info("pushed ACORD approved-by-client status", "sid", alert.Sid, "trackingId", alert.TrackingID, "transRefGuid", alert.TransRefGuid)
	}
	w.log.Info("contact processing complete")
	return nil
}

func (w *worker) restage(ctx context.Context) func(*model.Case) error {
	restager, ok := w.s.work.(Restager)
	if !ok {
		return nil
	}
	return func(c *model.Case) error {
		return restager.Restage(ctx, c)
	}
}
