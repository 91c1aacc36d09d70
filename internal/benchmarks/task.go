// Package benchmarks loads benchmark task specs from a directory of YAML
// files. Specs are duck-typed upstream, so tasks keep every key they were
// given, in file order, with typed accessors for the recognized ones.
package benchmarks

// Task is an ordered string-keyed map of spec fields. Recognized keys are
// id, goal, and expect_contains; unknown keys are preserved verbatim as
// scalars or string lists.
type Task struct {
	keys   []string
	values map[string]any
}

// NewTask returns an empty task.
func NewTask() *Task {
	return &Task{values: make(map[string]any)}
}

// Set stores a value under key, keeping first-set order.
func (t *Task) Set(key string, value any) {
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Keys returns the task's keys in first-set order.
func (t *Task) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// GetString returns the scalar value under key.
func (t *Task) GetString(key string) (string, bool) {
	v, ok := t.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetStringList returns the list value under key.
func (t *Task) GetStringList(key string) ([]string, bool) {
	v, ok := t.values[key]
	if !ok {
		return nil, false
	}
	list, ok := v.([]string)
	return list, ok
}

// ID returns the task id, empty when unset.
func (t *Task) ID() string {
	id, _ := t.GetString("id")
	return id
}

// Goal returns the task goal, empty when unset. A task without a goal still
// loads; it just cannot be evaluated meaningfully.
func (t *Task) Goal() string {
	goal, _ := t.GetString("goal")
	return goal
}

// ExpectContains returns the success substring, empty when unset.
func (t *Task) ExpectContains() string {
	expect, _ := t.GetString("expect_contains")
	return expect
}
