package benchmarks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads every *.yml file in dir, sorted by name. Each file is parsed
// as YAML first; on parse failure the minimal line parser takes over, so a
// malformed file yields a sparse task rather than aborting the whole load.
func LoadDir(dir string) ([]*Task, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("scan benchmark dir: %w", err)
	}
	sort.Strings(files)

	var tasks []*Task
	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		task, parseErr := parseYAML(data)
		if parseErr != nil {
			task = parseFallback(data)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// parseYAML decodes a task from a YAML mapping, preserving key order.
// Scalars keep their literal text; sequences become string lists; nested
// mappings are not part of the task schema and are skipped.
func parseYAML(data []byte) (*Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	task := NewTask()
	if len(doc.Content) == 0 {
		return task, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("task file must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			continue
		}
		switch valNode.Kind {
		case yaml.ScalarNode:
			task.Set(keyNode.Value, valNode.Value)
		case yaml.SequenceNode:
			items := make([]string, 0, len(valNode.Content))
			for _, item := range valNode.Content {
				if item.Kind == yaml.ScalarNode {
					items = append(items, item.Value)
				}
			}
			task.Set(keyNode.Value, items)
		}
	}
	return task, nil
}

// parseFallback is the minimal line parser used when YAML parsing fails:
// blank and comment lines are skipped, "key: value" sets a scalar with
// surrounding quotes stripped, a bare "key:" starts a list collector, and
// two-space "- item" lines append to it until the next top-level key.
func parseFallback(data []byte) *Task {
	task := NewTask()

	var listKey string
	var list []string
	flush := func() {
		if listKey != "" {
			task.Set(listKey, list)
			listKey = ""
			list = nil
		}
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if listKey != "" && strings.HasPrefix(line, "  - ") {
			list = append(list, strings.TrimSpace(strings.TrimPrefix(line, "  - ")))
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 || strings.HasPrefix(line, " ") {
			continue
		}
		flush()

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if value == "" {
			listKey = key
			list = []string{}
			continue
		}
		task.Set(key, stripQuotes(value))
	}
	flush()
	return task
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
