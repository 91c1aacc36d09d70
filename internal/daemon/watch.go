package daemon

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fingerprintKey = "benchmarks_fingerprint"

// Watcher detects benchmark suite changes by fingerprinting the directory
// and comparing against the last fingerprint stored in the daemon kv table.
type Watcher struct {
	Store *Store
	Dir   string
}

// Changed fingerprints the watched directory and compares it to the stored
// one. The first observation arms the watcher without reporting a change.
func (w *Watcher) Changed() (bool, error) {
	current, err := Fingerprint(w.Dir)
	if err != nil {
		return false, err
	}

	previous, err := w.Store.GetKV(fingerprintKey)
	if err != nil {
		return false, err
	}

	if current == previous {
		return false, nil
	}
	if err := w.Store.SetKV(fingerprintKey, current); err != nil {
		return false, err
	}
	return previous != "", nil
}

// Fingerprint returns a stable sha256 digest over every regular file under
// dir: sorted relative paths plus per-file content digests. A missing
// directory fingerprints as the empty string.
func Fingerprint(dir string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", nil
	}

	var entries []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		h := sha256.New()
		_, copyErr := io.Copy(h, f)
		f.Close()
		if copyErr != nil {
			return copyErr
		}

		entries = append(entries, fmt.Sprintf("%s:%x", filepath.ToSlash(rel), h.Sum(nil)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", dir, err)
	}

	sort.Strings(entries)
	sum := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return fmt.Sprintf("%x", sum), nil
}
