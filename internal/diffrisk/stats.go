package diffrisk

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FileChange is one file's before/after content.
type FileChange struct {
	Path   string
	Before string
	After  string
}

// ChangeStats aggregates line counts across file changes so callers holding
// raw content can feed ScoreDiff without shelling out to git.
type ChangeStats struct {
	ChangedFiles []string
	LinesAdded   int
	LinesDeleted int
}

// CollectStats diffs each file and tallies added/deleted lines. Unchanged
// files are left out of ChangedFiles.
func CollectStats(changes []FileChange) (ChangeStats, error) {
	var stats ChangeStats
	for _, change := range changes {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(change.Before),
			B:        difflib.SplitLines(change.After),
			FromFile: change.Path,
			ToFile:   change.Path,
			Context:  0,
		}
		diffText, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			return ChangeStats{}, fmt.Errorf("diff %s: %w", change.Path, err)
		}
		if strings.TrimSpace(diffText) == "" {
			continue
		}

		stats.ChangedFiles = append(stats.ChangedFiles, change.Path)
		for _, line := range strings.Split(diffText, "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			case strings.HasPrefix(line, "+"):
				stats.LinesAdded++
			case strings.HasPrefix(line, "-"):
				stats.LinesDeleted++
			}
		}
	}
	return stats, nil
}

// Score runs ScoreDiff over collected stats.
func (s ChangeStats) Score() (float64, string) {
	return ScoreDiff(s.ChangedFiles, s.LinesAdded, s.LinesDeleted)
}
