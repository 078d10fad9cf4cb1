// Package wildcards expands prompt templates: __name__ references drawn
// from wildcard files, {a|b|c} inline variants, and the punctuation
// normalization that makes the results usable as one-line prompts.
package wildcards

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Manager loads wildcard collections from a directory tree. Each *.txt
// file is one collection named by its path without the extension, one
// value per line; blank lines and '#' comments are skipped.
type Manager struct {
	dir    string
	values map[string][]string
}

// NewManager loads every wildcard file under dir.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{dir: dir, values: make(map[string][]string)}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".txt") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".txt")
		values, err := readValues(path)
		if err != nil {
			return err
		}
		m.values[name] = values
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("wildcards: loading %s: %w", dir, err)
	}
	return m, nil
}

func readValues(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	return values, nil
}

// Names returns the collection names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the raw values of one collection without recursion, or
// nil for an unknown name.
func (m *Manager) Values(name string) []string {
	return m.values[name]
}

// Has reports whether a collection exists.
func (m *Manager) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// NamesWithRefs returns collections whose values contain further
// __wildcard__ references, each with the referring values. Useful for
// auditing a wildcard library for unresolved names.
func (m *Manager) NamesWithRefs() map[string][]string {
	out := make(map[string][]string)
	for name, values := range m.values {
		for _, v := range values {
			if wildcardRe.MatchString(v) {
				out[name] = append(out[name], v)
			}
		}
		sort.Strings(out[name])
	}
	return out
}
