package diffrisk

import (
	"math"
	"strings"
	"testing"
)

func TestScoreDiffAllTriggers(t *testing.T) {
	risk, rationale := ScoreDiff([]string{"agi/planner/x.py"}, 600, 0)

	if risk != 1.0 {
		t.Fatalf("risk = %f, want 1.0", risk)
	}
	for _, want := range []string{"Large footprint", "Touches protected path", "Code files modified"} {
		if !strings.Contains(rationale, want) {
			t.Fatalf("rationale %q missing %q", rationale, want)
		}
	}
}

func TestScoreDiffLowRisk(t *testing.T) {
	risk, rationale := ScoreDiff(nil, 0, 0)
	if risk != 0.0 {
		t.Fatalf("risk = %f, want 0.0", risk)
	}
	if rationale != "Low risk" {
		t.Fatalf("rationale = %q, want \"Low risk\"", rationale)
	}
}

func TestScoreDiffIndividualWeights(t *testing.T) {
	cases := []struct {
		name     string
		files    []string
		added    int
		deleted  int
		wantRisk float64
		wantHint string
	}{
		{"footprint only", []string{"docs/readme.md"}, 300, 201, 0.3, "Large footprint"},
		{"footprint boundary not triggered", []string{"docs/readme.md"}, 250, 250, 0.0, "Low risk"},
		{"protected path", []string{"semantic_kernel/core.txt"}, 1, 0, 0.6, "Touches protected path"},
		{"code file py", []string{"tools/script.py"}, 1, 0, 0.1, "Code files modified"},
		{"code file cs", []string{"svc/Program.cs"}, 1, 0, 0.1, "Code files modified"},
		{"many files", manyPaths(11), 1, 0, 0.2, "Many files changed"},
		{"ten files not many", manyPaths(10), 1, 0, 0.0, "Low risk"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			risk, rationale := ScoreDiff(tc.files, tc.added, tc.deleted)
			if math.Abs(risk-tc.wantRisk) > 1e-9 {
				t.Fatalf("risk = %f, want %f", risk, tc.wantRisk)
			}
			if !strings.Contains(rationale, tc.wantHint) {
				t.Fatalf("rationale = %q, want it to mention %q", rationale, tc.wantHint)
			}
		})
	}
}

func manyPaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = "docs/file" + string(rune('a'+i)) + ".md"
	}
	return paths
}

func TestScoreDiffClamped(t *testing.T) {
	files := append(manyPaths(11), "agi/core.py")
	risk, _ := ScoreDiff(files, 600, 600)
	if risk != 1.0 {
		t.Fatalf("risk = %f, want clamp at 1.0", risk)
	}
}

func TestCollectStats(t *testing.T) {
	stats, err := CollectStats([]FileChange{
		{Path: "agi/core.py", Before: "a\nb\nc\n", After: "a\nB\nc\nd\n"},
		{Path: "unchanged.txt", Before: "same\n", After: "same\n"},
	})
	if err != nil {
		t.Fatalf("collect stats: %v", err)
	}

	if len(stats.ChangedFiles) != 1 || stats.ChangedFiles[0] != "agi/core.py" {
		t.Fatalf("changed files = %v", stats.ChangedFiles)
	}
	if stats.LinesAdded != 2 {
		t.Fatalf("lines added = %d, want 2", stats.LinesAdded)
	}
	if stats.LinesDeleted != 1 {
		t.Fatalf("lines deleted = %d, want 1", stats.LinesDeleted)
	}

	risk, rationale := stats.Score()
	if risk != 0.7 {
		t.Fatalf("risk = %f, want 0.7 (protected path + code file)", risk)
	}
	if !strings.Contains(rationale, "Touches protected path") {
		t.Fatalf("rationale = %q", rationale)
	}
}
