// Command docxmitd runs one pass of the document transmission pipeline
// across every configured contact, then exits. It is meant to be invoked
// on a schedule (cron, a Kubernetes CronJob) rather than run as a
// long-lived daemon, the same boundary the original MainThread.py drew
// around one "indexing run."
//
// Grounded on steveyegge-beads' cmd/bd/main.go: a cobra root command whose
// RunE sets up a signal-aware context via
// signal.NotifyContext, so a SIGTERM mid-run lets in-flight contacts
// finish their current case instead of being killed outright.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ridgeline/docxmit/internal/bootstrap"
	"github.com/ridgeline/docxmit/internal/metrics"
	"github.com/ridgeline/docxmit/internal/scheduler"
)

var (
	settingsPath string
	bindingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "docxmitd",
	Short: "docxmitd - runs one document transmission pass for every configured contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return run(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&settingsPath, "config", "config/settings.yaml", "path to the YAML settings file")
	rootCmd.Flags().StringVar(&bindingsPath, "carriers", "config/carriers.toml", "path to the TOML carrier hook bindings file")
}

func run(ctx context.Context) error {
	env, err := bootstrap.Load(settingsPath, bindingsPath)
	if err != nil {
		return fmt.Errorf("docxmitd: %w", err)
	}

	shutdownMetrics, err := metrics.Init(ctx, env.Config.Settings.MetricsEnabled)
	if err != nil {
		return fmt.Errorf("docxmitd: initializing metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			env.Log.Warn("metrics shutdown failed", "error", err)
		}
	}()

	sched := scheduler.New(
		env.Config, env.Carriers, env.Work, env.Builder, env.History, env.Acord103,
		env.DB, env.FS, env.Clock, env.Log, env.Config.Settings.WorkerConcurrency,
	)
	return sched.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
