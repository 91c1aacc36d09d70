package telemetry

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agiharness/internal/config"
)

// Recorder writes one JSON line per instrumented call to a JSONL log.
// Each record performs a single open+append+close so concurrent processes
// sharing a log path interleave whole lines, never partial ones.
type Recorder struct {
	path   string
	logger *zap.Logger
}

// NewRecorder returns a Recorder writing to the AGI_TELEMETRY_LOG path when
// the variable is set, otherwise to fallback (default agi_metrics.jsonl when
// fallback is empty). The env var always wins so operators can redirect the
// log without touching call sites.
func NewRecorder(fallback string) *Recorder {
	path := config.TelemetryLogOverride()
	if path == "" {
		path = fallback
	}
	if path == "" {
		path = config.DefaultTelemetryLog
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:     "event",
		TimeKey:        "ts",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(&appendSyncer{path: path}),
		zapcore.InfoLevel,
	)

	return &Recorder{path: path, logger: zap.New(core)}
}

// Path returns the log path this recorder appends to.
func (r *Recorder) Path() string {
	return r.path
}

// Record appends one telemetry record. Extra context fields are emitted in
// sorted key order so records stay byte-comparable across runs.
func (r *Recorder) Record(event, function string, duration time.Duration, success bool, extra map[string]any) {
	fields := []zap.Field{
		zap.String("function", function),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Bool("success", success),
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, extra[k]))
	}
	r.logger.Info(event, fields...)
}

// WithTelemetry invokes fn and writes exactly one record on every exit path.
// contextFn, when non-nil, supplies extra fields; if it fails, the fields are
// replaced with context_error=true. fn's own error (or panic) propagates to
// the caller after the record is written with success=false.
func WithTelemetry[T any](rec *Recorder, event string, contextFn func() map[string]any, fn func() (T, error)) (T, error) {
	start := time.Now()
	name := functionName(fn)

	var out T
	var err error
	done := false

	defer func() {
		r := recover()
		rec.Record(event, name, time.Since(start), done && err == nil, extractContext(contextFn))
		if r != nil {
			panic(r)
		}
	}()

	out, err = fn()
	done = true
	return out, err
}

func extractContext(contextFn func() map[string]any) (extra map[string]any) {
	if contextFn == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			extra = map[string]any{"context_error": true}
		}
	}()
	return contextFn()
}

func functionName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "unknown"
	}
	name := f.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return name
}

// appendSyncer opens, appends, and closes the log on every write.
type appendSyncer struct {
	path string
}

func (s *appendSyncer) Write(p []byte) (int, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

func (s *appendSyncer) Sync() error {
	return nil
}
