package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agiharness/internal/audit"
	"agiharness/internal/daemon"
	"agiharness/internal/diffrisk"
	"agiharness/internal/evaluation"
	"agiharness/internal/planner"
	"agiharness/internal/telemetry"
	"agiharness/internal/workspace"
)

const appName = "agiharness"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: agent planning and evaluation harness\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init    Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  plan    Manage plans")
		fmt.Fprintln(os.Stderr, "  gate    Run the evaluation gate")
		fmt.Fprintln(os.Stderr, "  diff    Score change risk")
		fmt.Fprintln(os.Stderr, "  daemon  Manage the gate daemon")
		fmt.Fprintln(os.Stderr, "  help    Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	switch args[0] {
	case "init":
		if err := runInit(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "plan":
		if err := runPlan(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "gate":
		if err := runGate(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "diff":
		if err := runDiff(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "daemon":
		if err := runDaemon(args[1:], workspacePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

func resolveWorkspace(workspacePath string) (*workspace.Workspace, error) {
	if strings.TrimSpace(workspacePath) == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	return workspace.Resolve(workspacePath)
}

func runInit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(workspacePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	if err := logger.LogEvent("cli", "workspace_initialized", map[string]any{"workspace": ws.Root}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if err := writeFileIfMissing(filepath.Join(ws.BenchmarksDir, "example.yml"), exampleTaskTemplate); err != nil {
		return err
	}

	fmt.Printf("Initialized workspace at %s\n", ws.Root)
	return nil
}

func runPlan(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s plan: missing subcommand", appName)
	}

	switch args[0] {
	case "generate":
		return runPlanGenerate(args[1:], workspacePath)
	case "show":
		return runPlanShow(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s plan: unknown subcommand %q", appName, args[0])
	}
}

func runPlanGenerate(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	goal := fs.String("goal", "", "Goal text to plan for")
	maxSteps := fs.Int("max-steps", 0, "Maximum plan steps (default: planner default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*goal) == "" {
		return fmt.Errorf("goal is required")
	}

	ws, err := resolveWorkspace(workspacePath)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	p := planner.NewStaticPlanner()
	if *maxSteps > 0 {
		p.MaxSteps = *maxSteps
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	if err := logger.LogEvent("cli", "plan_generate_started", map[string]any{"goal": *goal}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	plan, err := planner.BuildPlan(p, *goal, time.Now())
	if err != nil {
		_ = logger.LogEvent("cli", "plan_generate_failed", map[string]any{"goal": *goal, "error": err.Error()})
		return err
	}
	planPath, err := planner.WritePlan(filepath.Join(ws.ArtifactsDir, "plans"), plan)
	if err != nil {
		_ = logger.LogEvent("cli", "plan_generate_failed", map[string]any{"goal": *goal, "error": err.Error()})
		return err
	}

	if err := logger.LogEvent("cli", "plan_generate_finished", map[string]any{
		"goal":  *goal,
		"plan":  plan.ID,
		"path":  planPath,
		"steps": len(plan.Steps),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("Wrote plan %s (%d steps) to %s\n", plan.ID, len(plan.Steps), planPath)
	return nil
}

func runPlanShow(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Path to a plan.json artifact")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return fmt.Errorf("path is required")
	}

	ws, err := resolveWorkspace(workspacePath)
	if err != nil {
		return err
	}
	absPath, err := ws.ResolvePath(*path)
	if err != nil {
		return err
	}

	plan, err := planner.LoadPlan(absPath)
	if err != nil {
		return err
	}
	return printJSON(plan)
}

func runGate(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s gate: missing subcommand", appName)
	}

	switch args[0] {
	case "run":
		return runGateRun(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s gate: unknown subcommand %q", appName, args[0])
	}
}

func runGateRun(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("gate run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	benchmarksDir := fs.String("benchmarks", "", "Benchmark directory (default: <workspace>/benchmarks)")
	baselinePath := fs.String("baseline", "", "Baseline KPI file (default: <workspace>/baseline_kpis.json)")
	trunkRef := fs.String("trunk-ref", evaluation.DefaultTrunkRef, "Git ref treated as trunk")
	minSuccessRate := fs.Float64("min-success-rate", evaluation.DefaultThresholds().MinSuccessRate, "Minimum task success rate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := resolveWorkspace(workspacePath)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	dir := ws.BenchmarksDir
	if *benchmarksDir != "" {
		dir, err = ws.ResolvePath(*benchmarksDir)
		if err != nil {
			return fmt.Errorf("resolve --benchmarks: %w", err)
		}
	}
	baseline := ws.BaselinePath
	if *baselinePath != "" {
		baseline, err = ws.ResolvePath(*baselinePath)
		if err != nil {
			return fmt.Errorf("resolve --baseline: %w", err)
		}
	}

	thresholds := evaluation.DefaultThresholds()
	thresholds.MinSuccessRate = *minSuccessRate

	gate := &evaluation.Gate{
		Runner: &evaluation.Runner{
			Planner:     planner.NewStaticPlanner(),
			MetricsPath: filepath.Join(ws.MetricsDir, "results.jsonl"),
			Telemetry:   telemetry.NewRecorder(filepath.Join(ws.MetricsDir, "agi_metrics.jsonl")),
		},
		BaselinePath: baseline,
		TrunkRef:     *trunkRef,
		Thresholds:   thresholds,
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	if err := logger.LogEvent("cli", "gate_started", map[string]any{"benchmarks": dir}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	report, pass, err := gate.Run(context.Background(), dir)
	if err != nil {
		_ = logger.LogEvent("cli", "gate_errored", map[string]any{"benchmarks": dir, "error": err.Error()})
		return err
	}

	if err := logger.LogEvent("cli", "gate_finished", map[string]any{
		"benchmarks":   dir,
		"pass":         pass,
		"success_rate": report.KPIs.TaskSuccessRate,
		"failures":     report.Failures,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if err := printJSON(report); err != nil {
		return err
	}
	if !pass {
		return fmt.Errorf("gate failed: %s", strings.Join(report.Failures, "; "))
	}
	return nil
}

func runDiff(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s diff: missing subcommand", appName)
	}

	switch args[0] {
	case "score":
		return runDiffScore(args[1:])
	default:
		return fmt.Errorf("%s diff: unknown subcommand %q", appName, args[0])
	}
}

func runDiffScore(args []string) error {
	fs := flag.NewFlagSet("diff score", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	files := fs.String("files", "", "Comma-separated changed file paths")
	added := fs.Int("added", 0, "Lines added")
	deleted := fs.Int("deleted", 0, "Lines deleted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*files) == "" {
		return fmt.Errorf("files is required")
	}

	var paths []string
	for _, path := range strings.Split(*files, ",") {
		path = strings.TrimSpace(path)
		if path != "" {
			paths = append(paths, path)
		}
	}

	score, assessment := diffrisk.ScoreDiff(paths, *added, *deleted)
	return printJSON(map[string]any{
		"risk_score": score,
		"assessment": assessment,
		"files":      len(paths),
		"lines":      *added + *deleted,
	})
}

func runDaemon(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s daemon: missing subcommand", appName)
	}

	switch args[0] {
	case "run":
		return runDaemonRun(args[1:], workspacePath)
	case "status":
		return runDaemonStatus(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s daemon: unknown subcommand %q", appName, args[0])
	}
}

func runDaemonRun(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("daemon run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	interval := fs.Duration("interval", 30*time.Second, "Poll interval")
	notifications := fs.Bool("notify", false, "Send system notifications on gate outcomes")
	trunkRef := fs.String("trunk-ref", evaluation.DefaultTrunkRef, "Git ref treated as trunk")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := resolveWorkspace(workspacePath)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	d, err := daemon.New(daemon.Config{
		Workspace:     ws,
		PollInterval:  *interval,
		Notifications: *notifications,
		Thresholds:    evaluation.DefaultThresholds(),
		TrunkRef:      *trunkRef,
	})
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Run(context.Background())
}

func runDaemonStatus(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("daemon status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 10, "Number of recent runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, err := resolveWorkspace(workspacePath)
	if err != nil {
		return err
	}

	store, err := daemon.Open(ws.StateDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(*limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No gate runs recorded.")
		return nil
	}
	return printJSON(runs)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func writeFileIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

const exampleTaskTemplate = `id: example-report
goal: generate a quarterly report from the latest metrics
expect_contains: report
tags:
  - example
`
