// Command docxmit-carrier runs one carrier's reconciliation or transmit
// step in isolation, for operators who need to re-run a single carrier
// out of band from the scheduler's normal per-contact sweep (spec.md §6:
// "Each carrier specialization is runnable as a program accepting
// arguments of the set {recon, recon <date>, transmit[=<date>]}").
//
// Grounded on steveyegge-beads' cmd/bd/main.go for the cobra
// root-plus-subcommand shape and signal-aware context setup; the
// recon/transmit split itself mirrors ContactThread.py's two-phase run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridgeline/docxmit/internal/bootstrap"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/trackedfile"
	"github.com/ridgeline/docxmit/internal/transmit"
	"github.com/ridgeline/docxmit/internal/xmiterr"
)

var (
	settingsPath string
	bindingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "docxmit-carrier <name> {recon|transmit} [date]",
	Short: "docxmit-carrier - runs reconciliation or transmission for one carrier",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		name, verb := args[0], args[1]
		dateArg := ""
		if len(args) == 3 {
			dateArg = args[2]
		}
		if v, d, ok := strings.Cut(verb, "="); ok && v == "transmit" && len(args) == 2 {
			verb, dateArg = v, d
		}
		var asOf time.Time
		if dateArg != "" {
			parsed, err := time.Parse("2006-01-02", dateArg)
			if err != nil {
				return fmt.Errorf("docxmit-carrier: invalid date %q: %w", dateArg, err)
			}
			asOf = parsed
		}

		env, err := bootstrap.Load(settingsPath, bindingsPath)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: %w", err)
		}

		switch verb {
		case "recon":
			return runRecon(ctx, env, name, asOf)
		case "transmit":
			return runTransmit(ctx, env, name, asOf)
		default:
			return fmt.Errorf("docxmit-carrier: unknown verb %q, want recon or transmit", verb)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "config/settings.yaml", "path to the YAML settings file")
	rootCmd.PersistentFlags().StringVar(&bindingsPath, "carriers", "config/carriers.toml", "path to the TOML carrier hook bindings file")
}

func runRecon(ctx context.Context, env *bootstrap.Environment, name string, since time.Time) error {
	hooks, err := env.Carriers.Get(name)
	if err != nil {
		return err
	}
	if hooks.Recon == nil {
		return fmt.Errorf("docxmit-carrier: carrier %q has no reconciliation feed configured", name)
	}
	reconciler := transmit.NewReconciler(env.History, env.Log)

	contactIDs := env.ContactsForCarrier(name)
	if len(contactIDs) == 0 {
		return fmt.Errorf("docxmit-carrier: no contacts configured for carrier %q", name)
	}

	now := env.Clock.Now()
	if !since.IsZero() {
		now = since
	}

	for _, id := range contactIDs {
		contact := env.Config.Contacts[id]
		count, err := reconciler.Reconcile(ctx, contact, hooks.Recon)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: reconciling %s: %w", id, err)
		}
		env.Log.Info("reconciliation complete", "contact", id, "documentsReconciled", count)

		indexed, err := env.Work.IndexedCases(ctx, contact)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: loading cases for overdue check on %s: %w", id, err)
		}
		overdue, err := reconciler.Overdue(ctx, contact, indexed, now)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: computing overdue documents for %s: %w", id, err)
		}
		for _, doc := range overdue {
			env.Log.Warn("document overdue for reconciliation", "contact", id, "sid", doc.Sid, "documentId", doc.DocumentID, "transmitDate", doc.TransmitDate)
		}
	}
	return nil
}

func runTransmit(ctx context.Context, env *bootstrap.Environment, name string, asOf time.Time) error {
	hooks, err := env.Carriers.Get(name)
	if err != nil {
		return err
	}
	contactIDs := env.ContactsForCarrier(name)
	if len(contactIDs) == 0 {
		return fmt.Errorf("docxmit-carrier: no contacts configured for carrier %q", name)
	}
	if !asOf.IsZero() {
		env.Log.Info("re-running transmit for a historical date; the queue model has no per-day partition so this re-processes whatever is currently staged", "date", asOf.Format("2006-01-02"))
	}

	for _, id := range contactIDs {
		contact := env.Config.Contacts[id]

		exported, err := env.Work.ExportedCases(ctx, contact)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: loading exported cases for %s: %w", id, err)
		}
		for _, c := range exported {
			if _, err := env.Builder.BuildForCase(ctx, c, hooks.Index); err != nil {
				fields := []any{"sid", c.Sid, "trackingId", c.TrackingID}
				if kind, ok := xmiterr.KindOf(err); ok {
					fields = append(fields, "kind", string(kind))
				}
				env.Log.Error("exception building indexes, please correct so transmission can continue", err, fields...)
				continue
			}
			if err := env.Work.MarkIndexed(ctx, c); err != nil {
				env.Log.Error("marking case indexed failed", err, "sid", c.Sid)
			}
		}

		indexed, err := env.Work.IndexedCases(ctx, contact)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: loading indexed cases for %s: %w", id, err)
		}
		files := trackedfile.NewManager(env.DB, env.FS, contact.ContactID, contact.Paths.XmitDir)
		orch := transmit.NewOrchestrator(files, env.History, env.Clock, env.Log)
		restage := func(c *model.Case) error { return env.Work.Restage(ctx, c) }

		res, err := orch.StageAndTransmit(ctx, contact, indexed, hooks.Transmit, restage)
		if err != nil {
			return fmt.Errorf("docxmit-carrier: staging and transmitting for %s: %w", id, err)
		}
		for _, c := range res.Staged {
			if err := env.Work.MarkStaged(ctx, c); err != nil {
				env.Log.Error("marking case staged failed", err, "sid", c.Sid)
			}
		}
		env.Log.Info("carrier transmit complete", "contact", id, "staged", len(res.Staged), "failed", len(res.Failures), "transmitted", res.Transmitted)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
