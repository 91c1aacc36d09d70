// Package daemon runs the evaluation gate continuously: it polls the
// benchmark directory for changes and re-runs the gate when the suite
// fingerprint moves, recording each run in SQLite.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"agiharness/internal/audit"
	"agiharness/internal/evaluation"
	"agiharness/internal/notify"
	"agiharness/internal/planner"
	"agiharness/internal/telemetry"
	"agiharness/internal/workspace"
)

const defaultPollInterval = 30 * time.Second

// Config configures a Daemon.
type Config struct {
	Workspace     *workspace.Workspace
	PollInterval  time.Duration
	Notifications bool
	Thresholds    evaluation.Thresholds
	TrunkRef      string
}

// Daemon polls a workspace's benchmark directory and gates every change.
type Daemon struct {
	workspace *workspace.Workspace
	store     *Store
	watcher   *Watcher
	gate      *evaluation.Gate
	auditLog  *audit.Logger
	notifier  *notify.Notifier
	interval  time.Duration
}

// New builds a Daemon for the workspace, opening its state database.
func New(cfg Config) (*Daemon, error) {
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("daemon requires a workspace")
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	store, err := Open(cfg.Workspace.StateDBPath)
	if err != nil {
		return nil, err
	}

	gate := &evaluation.Gate{
		Runner: &evaluation.Runner{
			Planner:     planner.NewStaticPlanner(),
			MetricsPath: filepath.Join(cfg.Workspace.MetricsDir, "results.jsonl"),
			Telemetry:   telemetry.NewRecorder(filepath.Join(cfg.Workspace.MetricsDir, "agi_metrics.jsonl")),
		},
		BaselinePath: cfg.Workspace.BaselinePath,
		TrunkRef:     cfg.TrunkRef,
		Thresholds:   cfg.Thresholds,
	}

	return &Daemon{
		workspace: cfg.Workspace,
		store:     store,
		watcher:   &Watcher{Store: store, Dir: cfg.Workspace.BenchmarksDir},
		gate:      gate,
		auditLog:  audit.NewLogger(cfg.Workspace.AuditDBPath),
		notifier:  &notify.Notifier{Enabled: cfg.Notifications},
		interval:  interval,
	}, nil
}

// Close releases the daemon's state database.
func (d *Daemon) Close() error {
	return d.store.Close()
}

// Run polls until the context is cancelled or SIGINT/SIGTERM arrives.
// The first poll happens immediately.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.auditLog.LogEvent("daemon", "daemon_started", map[string]any{
		"workspace": d.workspace.Root,
		"interval":  d.interval.String(),
	}); err != nil {
		log.Printf("audit: %v", err)
	}

	d.poll(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := d.auditLog.LogEvent("daemon", "daemon_stopped", nil); err != nil {
				log.Printf("audit: %v", err)
			}
			return nil
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

func (d *Daemon) poll(ctx context.Context) {
	changed, err := d.watcher.Changed()
	if err != nil {
		log.Printf("watch benchmarks: %v", err)
		return
	}
	if !changed {
		return
	}

	log.Printf("benchmark suite changed, running gate")
	if err := d.runGate(ctx); err != nil {
		log.Printf("gate run: %v", err)
	}
}

func (d *Daemon) runGate(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := time.Now()
	if err := d.store.StartRun(runID, startedAt); err != nil {
		return err
	}
	if err := d.auditLog.LogEvent("daemon", "gate_started", map[string]any{"run_id": runID}); err != nil {
		log.Printf("audit: %v", err)
	}

	report, pass, err := d.gate.Run(ctx, d.workspace.BenchmarksDir)
	if err != nil {
		_ = d.store.FinishRun(runID, time.Now(), "error", map[string]any{"error": err.Error()})
		_ = d.auditLog.LogEvent("daemon", "gate_errored", map[string]any{"run_id": runID, "error": err.Error()})
		return err
	}

	status := "failed"
	if pass {
		status = "passed"
	}
	if err := d.store.FinishRun(runID, time.Now(), status, report); err != nil {
		log.Printf("record run: %v", err)
	}
	if err := d.auditLog.LogEvent("daemon", "gate_finished", map[string]any{
		"run_id":       runID,
		"pass":         pass,
		"success_rate": report.KPIs.TaskSuccessRate,
		"failures":     report.Failures,
	}); err != nil {
		log.Printf("audit: %v", err)
	}

	title, message := notify.FormatGateOutcome(pass, report.KPIs.TaskSuccessRate, report.Failures)
	if err := d.notifier.Send(title, message); err != nil {
		log.Printf("notify: %v", err)
	}

	log.Printf("gate %s: success rate %.2f (%d tasks)", status, report.KPIs.TaskSuccessRate, report.KPIs.Count)
	return nil
}
