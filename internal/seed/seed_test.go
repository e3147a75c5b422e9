package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylark/internal/entity"
	"skylark/internal/sqlgen"
)

type nullStore struct{ execs int }

func (s *nullStore) Exec(context.Context, sqlgen.Statement, map[string]any) (int64, error) {
	s.execs++
	return 1, nil
}

func (s *nullStore) Query(context.Context, sqlgen.Statement, map[string]any) (entity.Rows, error) {
	return nil, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20-rooms.yaml", "entity: room\nrows:\n  - name: lobby\n")
	writeFile(t, dir, "10-tags.yml", "entity: tag\nrows:\n  - name: go\n  - name: sql\n")
	writeFile(t, dir, "notes.txt", "not a seed")

	files, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "tag", files[0].Entity)
	assert.Equal(t, "room", files[1].Entity)
	assert.Len(t, files[0].Rows, 2)
}

func TestLoadDirRejectsAnonymousFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "rows:\n  - name: x\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entity name")
}

func TestApplyInsertsEveryRow(t *testing.T) {
	b := entity.NewBuilder("tag")
	name := b.String("name")
	b.Key(name)
	tag, err := b.Build()
	require.NoError(t, err)
	m := entity.NewModel(tag)

	st := &nullStore{}
	files := []File{{Entity: "tag", Rows: []map[string]any{
		{"name": "go"},
		{"name": "sql"},
	}}}
	require.NoError(t, Apply(context.Background(), st, m, files))
	assert.Equal(t, 2, st.execs)
}

func TestApplyUnknownEntity(t *testing.T) {
	m := entity.NewModel()
	err := Apply(context.Background(), &nullStore{}, m, []File{{Entity: "ghost"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestApplyReportsRowErrors(t *testing.T) {
	b := entity.NewBuilder("tag")
	name := b.String("name")
	b.Key(name)
	tag, err := b.Build()
	require.NoError(t, err)
	m := entity.NewModel(tag)

	err = Apply(context.Background(), &nullStore{}, m, []File{
		{Entity: "tag", Rows: []map[string]any{{}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}
