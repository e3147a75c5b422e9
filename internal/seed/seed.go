// Package seed loads YAML row files and inserts them through the entity
// layer at startup.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"skylark/internal/entity"
)

// File is one seed file: the entity type name and its rows, each row a
// named-value map as accepted by Type.New.
type File struct {
	Entity string           `yaml:"entity"`
	Rows   []map[string]any `yaml:"rows"`
}

// LoadDir reads every .yaml/.yml file in dir, sorted by file name so
// referenced types can be seeded before their referrers.
func LoadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && (strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]File, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
		if f.Entity == "" {
			return nil, fmt.Errorf("seed %s: no entity name", name)
		}
		out = append(out, f)
	}
	return out, nil
}

// Apply constructs and inserts every row of every file.
func Apply(ctx context.Context, st entity.Store, m *entity.Model, files []File) error {
	for _, f := range files {
		t, ok := m.TypeByName(f.Entity)
		if !ok {
			return fmt.Errorf("seed: unknown entity %q", f.Entity)
		}
		for i, row := range f.Rows {
			in, err := t.New(row)
			if err != nil {
				return fmt.Errorf("seed %s row %d: %w", f.Entity, i, err)
			}
			if err := in.Insert(ctx, st); err != nil {
				return fmt.Errorf("seed %s row %d: %w", f.Entity, i, err)
			}
		}
	}
	return nil
}
