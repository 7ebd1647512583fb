// Package transmit implements the final staging and transmission pass: it
// deletes files the tracked-file manager has marked for deletion, runs a
// carrier's staging hook over every ready indexed case, tracks each staged
// document in the history log, and hands the staged batch to the carrier's
// transmit hook for delivery. Grounded on
// original_source/ASAP_2.7/TransmitHandler.py's stageAndTransmitCases.
package transmit

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/trackedfile"
)

// Hooks lets a carrier customize staging and transmission without
// touching the common batch-processing pipeline. A nil *Orchestrator
// method is never called; callers needing no-op behavior should embed
// NopHooks.
type Hooks interface {
	// PreStage runs once before any case in the batch is staged. Return
	// false to abort the whole batch without it being an error.
	PreStage(ctx context.Context, contact *model.Contact) (bool, error)
	// IsIndexedCaseReady reports whether c should be staged this run
	// (e.g. the LIMS transmit date gate). False holds the case without
	// it being an error.
	IsIndexedCaseReady(ctx context.Context, c *model.Case) (bool, error)
	// StageIndexedCase prepares an indexed case for transmission (copying
	// files into the transmit directory, encrypting, etc). Returning
	// false marks the case as failed staging; returning an error is
	// handled per the contact's OnStageExceptionPolicy.
	StageIndexedCase(ctx context.Context, c *model.Case) (bool, error)
	// TransmitStagedCases delivers every successfully staged case.
	// Returning false reports that delivery failed or did not complete
	// this run, which the orchestrator logs as a failed transmit;
	// returning an error aborts the run before PostTransmit.
	TransmitStagedCases(ctx context.Context, contact *model.Contact, staged []*model.Case) (bool, error)
	// PostTransmit runs once after TransmitStagedCases, regardless of its
	// result, for any cleanup or notification the carrier needs.
	PostTransmit(ctx context.Context, contact *model.Contact) (bool, error)
}

// NopHooks is a Hooks whose every method succeeds and does nothing,
// embeddable by a carrier that only needs to override one or two methods.
type NopHooks struct{}

func (NopHooks) PreStage(context.Context, *model.Contact) (bool, error)          { return true, nil }
func (NopHooks) IsIndexedCaseReady(context.Context, *model.Case) (bool, error)   { return true, nil }
func (NopHooks) StageIndexedCase(context.Context, *model.Case) (bool, error)     { return true, nil }
func (NopHooks) PostTransmit(context.Context, *model.Contact) (bool, error)      { return true, nil }
func (NopHooks) TransmitStagedCases(context.Context, *model.Contact, []*model.Case) (bool, error) {
	return true, nil
}

// CaseFailure records why a single case failed to stage, without halting
// the rest of the batch.
type CaseFailure struct {
	Case *model.Case
	Err  error
}

// Result summarizes one stageAndTransmitCases run.
type Result struct {
	// Staged holds every case that staged successfully this run,
	// regardless of whether TransmitStagedCases actually delivered them.
	Staged []*model.Case
	// Failures holds one entry per case that failed to stage.
	Failures []CaseFailure
	// Transmitted reports what TransmitStagedCases returned: false means
	// delivery failed or did not complete this run.
	Transmitted bool
	// Alerts holds the ACORD approved-by-client notifications generated
	// for this batch, if the contact is configured for them.
	Alerts []AcordAlert
	// Success is false if PreStage aborted, any case failed to stage, or
	// PostTransmit reported failure. It does not depend on Transmitted.
	Success bool
}

// Orchestrator runs the stage-then-transmit pass for one contact's batch
// of indexed cases.
type Orchestrator struct {
	files *trackedfile.Manager
	hist  *history.Store
	clock ports.Clock
	log   ports.Logger
}

// NewOrchestrator builds an Orchestrator over the given tracked-file
// manager and history store, both already scoped to the contact being run.
func NewOrchestrator(files *trackedfile.Manager, hist *history.Store, clock ports.Clock, log ports.Logger) *Orchestrator {
	return &Orchestrator{files: files, hist: hist, clock: clock, log: log}
}

// StageAndTransmit stages every ready case in cases, tracks a transmit
// history entry for each of their documents, and delivers the batch via
// hooks.TransmitStagedCases. A staging panic or error is handled according
// to contact.OnStageException: OnStageExceptionLeave logs and moves on,
// OnStageExceptionRestage (the default) also asks restage to re-queue the
// case for another attempt.
func (o *Orchestrator) StageAndTransmit(ctx context.Context, contact *model.Contact, cases []*model.Case, hooks Hooks, restage func(*model.Case) error) (Result, error) {
	if err := o.purgeMarkedForDeletion(ctx); err != nil {
		return Result{}, fmt.Errorf("transmit: purging marked-for-deletion files: %w", err)
	}

	ready, err := hooks.PreStage(ctx, contact)
	if err != nil {
		return Result{}, fmt.Errorf("transmit: pre-stage for %s: %w", contact.ContactID, err)
	}
	if !ready {
		o.log.Warn("pre-stage process failed", "contact", contact.ContactID)
		return Result{Success: false}, nil
	}

	res := Result{Success: true}
	for _, c := range cases {
		indexedReady, err := hooks.IsIndexedCaseReady(ctx, c)
		if err != nil {
			return res, fmt.Errorf("transmit: readiness check for %s/%s: %w", c.Sid, c.TrackingID, err)
		}
		if !indexedReady {
			continue
		}
		o.stageOne(ctx, contact, c, hooks, restage, &res)
	}

	for _, c := range res.Staged {
		for _, doc := range c.Documents() {
			if err := o.hist.Track(ctx, c.Sid, doc.DocumentID, contact.ContactID, model.ActionTransmit); err != nil {
				return res, fmt.Errorf("transmit: tracking document %d for %s: %w", doc.DocumentID, c.Sid, err)
			}
		}
	}

	transmitted, err := hooks.TransmitStagedCases(ctx, contact, res.Staged)
	if err != nil {
		return res, fmt.Errorf("transmit: delivering staged batch for %s: %w", contact.ContactID, err)
	}
	if !transmitted {
		o.log.Warn("transmitting staged cases failed", "contact", contact.ContactID)
	}
	res.Transmitted = transmitted
	if transmitted {
		res.Alerts = BuildAcordAlerts(contact, res.Staged, o.clock.Now())
	}

	postOK, err := hooks.PostTransmit(ctx, contact)
	if err != nil {
		return res, fmt.Errorf("transmit: post-transmit for %s: %w", contact.ContactID, err)
	}
	if !postOK {
		o.log.Warn("post-transmit process failed", "contact", contact.ContactID)
		res.Success = false
	}
	return res, nil
}

func (o *Orchestrator) stageOne(ctx context.Context, contact *model.Contact, c *model.Case, hooks Hooks, restage func(*model.Case) error, res *Result) {
	staged, err := o.safeStage(ctx, hooks, c)
	if err != nil {
		switch contact.OnStageException {
		case model.OnStageExceptionLeave:
			o.log.Warn("staging caused an exception, not restaging", "contact", contact.ContactID, "sid", c.Sid, "trackingId", c.TrackingID, "error", err)
		default:
			o.log.Warn("staging caused an exception, restaging", "contact", contact.ContactID, "sid", c.Sid, "trackingId", c.TrackingID, "error", err)
			if restage != nil {
				if rerr := restage(c); rerr != nil {
					o.log.Error("restage after staging exception failed", rerr, "sid", c.Sid)
				}
			}
		}
		res.Success = false
		return
	}
	if staged {
		res.Staged = append(res.Staged, c)
		return
	}
	o.log.Warn("staging of indexed case failed", "sid", c.Sid, "trackingId", c.TrackingID)
	res.Failures = append(res.Failures, CaseFailure{Case: c, Err: errors.New("stage hook returned false")})
	res.Success = false
}

// safeStage recovers a panicking hook, treating it the same as an error
// return so one misbehaving carrier hook cannot crash the batch.
func (o *Orchestrator) safeStage(ctx context.Context, hooks Hooks, c *model.Case) (staged bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hooks.StageIndexedCase(ctx, c)
}

func (o *Orchestrator) purgeMarkedForDeletion(ctx context.Context) error {
	files, err := o.files.FilesByState(ctx, trackedfile.StateMarkedForDeletion)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := o.files.DeleteFile(ctx, f); err != nil {
			return fmt.Errorf("deleting %s: %w", f.FileName, err)
		}
	}
	return nil
}
