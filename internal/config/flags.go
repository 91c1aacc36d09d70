package config

import (
	"os"
	"strings"
	"sync"
)

// Environment variables consumed by the harness.
const (
	EnvFeatureFlags   = "AGI_FEATURE_FLAGS"
	EnvEmbeddingModel = "AGI_EMBEDDING_MODEL"
	EnvTelemetryLog   = "AGI_TELEMETRY_LOG"
	EnvAuditDB        = "AGI_AUDIT_DB"
	EnvForceBaseline  = "AGI_FORCE_BASELINE"
	EnvBranchRef      = "GITHUB_REF"
)

// FlagSemanticMemory gates the real embedding backend in the memory store.
const FlagSemanticMemory = "semantic_memory"

// DefaultTelemetryLog is the telemetry JSONL path when AGI_TELEMETRY_LOG is unset.
const DefaultTelemetryLog = "agi_metrics.jsonl"

var (
	flagsMu     sync.Mutex
	flagsParsed bool
	flagSet     map[string]struct{}
)

// Enabled reports whether the named feature flag appears in AGI_FEATURE_FLAGS.
// The variable is parsed once and memoized; names are case-insensitive.
func Enabled(name string) bool {
	flagsMu.Lock()
	defer flagsMu.Unlock()

	if !flagsParsed {
		flagSet = parseFlags(os.Getenv(EnvFeatureFlags))
		flagsParsed = true
	}
	_, ok := flagSet[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ResetFlags clears the memoized flag set so the environment is re-read.
// Intended for tests that mutate AGI_FEATURE_FLAGS.
func ResetFlags() {
	flagsMu.Lock()
	defer flagsMu.Unlock()
	flagsParsed = false
	flagSet = nil
}

func parseFlags(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		set[part] = struct{}{}
	}
	return set
}

// TelemetryLogPath returns the telemetry JSONL path from the environment.
func TelemetryLogPath() string {
	if path := TelemetryLogOverride(); path != "" {
		return path
	}
	return DefaultTelemetryLog
}

// TelemetryLogOverride returns the AGI_TELEMETRY_LOG value, empty when unset.
func TelemetryLogOverride() string {
	return os.Getenv(EnvTelemetryLog)
}

// EmbeddingModel returns the configured embedding backend model id, if any.
func EmbeddingModel() string {
	return strings.TrimSpace(os.Getenv(EnvEmbeddingModel))
}

// ForceBaseline reports whether baseline overwrite is forced regardless of branch.
func ForceBaseline() bool {
	return os.Getenv(EnvForceBaseline) == "1"
}

// BranchRef returns the CI branch indicator (GitHub Actions sets GITHUB_REF).
func BranchRef() string {
	return os.Getenv(EnvBranchRef)
}
