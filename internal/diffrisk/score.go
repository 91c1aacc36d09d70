// Package diffrisk scores the risk of a proposed code change with a pure
// additive heuristic. It holds no state and performs no I/O.
package diffrisk

import "strings"

// protectedPrefixes mark paths whose modification always raises risk.
var protectedPrefixes = []string{"agi/", "semantic_kernel/"}

// codeSuffixes mark source files in the upstream codebase.
var codeSuffixes = []string{".py", ".cs"}

const (
	largeFootprintLines = 500
	manyFilesThreshold  = 10
)

// Weights in tenths; integer accumulation keeps the additive sums exact.
// Protected paths carry the heaviest weight: a large change to a protected
// code file saturates the scale on its own.
const (
	weightLargeFootprint = 3
	weightProtectedPath  = 6
	weightCodeFiles      = 1
	weightManyFiles      = 2
)

// ScoreDiff rates a change in [0,1] from its changed paths and line counts.
// Weights are additive and clamped; the rationale joins every triggered
// reason, or reads "Low risk" when none fire.
func ScoreDiff(changedFiles []string, linesAdded, linesDeleted int) (float64, string) {
	var tenths int
	var reasons []string

	if linesAdded+linesDeleted > largeFootprintLines {
		tenths += weightLargeFootprint
		reasons = append(reasons, "Large footprint")
	}
	if anyHasPrefix(changedFiles, protectedPrefixes) {
		tenths += weightProtectedPath
		reasons = append(reasons, "Touches protected path")
	}
	if anyHasSuffix(changedFiles, codeSuffixes) {
		tenths += weightCodeFiles
		reasons = append(reasons, "Code files modified")
	}
	if len(changedFiles) > manyFilesThreshold {
		tenths += weightManyFiles
		reasons = append(reasons, "Many files changed")
	}

	if tenths > 10 {
		tenths = 10
	}
	risk := float64(tenths) / 10
	if len(reasons) == 0 {
		return risk, "Low risk"
	}
	return risk, strings.Join(reasons, "; ")
}

func anyHasPrefix(paths, prefixes []string) bool {
	for _, path := range paths {
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}

func anyHasSuffix(paths, suffixes []string) bool {
	for _, path := range paths {
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				return true
			}
		}
	}
	return false
}
