package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/injector"
)

func TestParseQuery(t *testing.T) {
	center, radius, err := parseQuery("10, -20.5,300")
	require.NoError(t, err)
	require.Equal(t, spatial.Position{X: 10, Z: -20.5}, center)
	require.Equal(t, 300.0, radius)

	_, _, err = parseQuery("1,2")
	require.Error(t, err)
	_, _, err = parseQuery("1,two,3")
	require.Error(t, err)
}

func TestRun_ImportSaveRestore(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "gridspace.yaml")
	snapshot := filepath.Join(dir, "north.json")

	require.NoError(t, os.WriteFile(config, []byte(`
log_level: silent
store: `+filepath.Join(dir, "snapshots.db")+`
spaces:
  north:
    cell_size: 100
    types: [unit, static]
`), 0o644))
	require.NoError(t, os.WriteFile(snapshot, []byte(`{
  "cellSize": 100,
  "entities": [
    {"id": "u1", "type": "unitIds", "position": {"x": 10, "z": 10}},
    {"id": "s1", "type": "static", "position": {"x": 500, "z": 10}}
  ]
}`), 0o644))

	ctx := context.Background()
	require.NoError(t, run(ctx, options{config: config, imports: snapshot, save: true}))

	f, err := os.Open(config)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := injector.LoadAppConfig(f)
	require.NoError(t, err)

	m, cleanup, err := injector.InitializeManager(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NoError(t, m.RestoreAll(ctx))

	north, ok := m.Get("north")
	require.True(t, ok)
	require.Equal(t, 2, north.Size())
	require.True(t, north.Has("u1"))
}

func TestRun_UnknownSpace(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "gridspace.yaml")
	require.NoError(t, os.WriteFile(config, []byte("log_level: silent\n"), 0o644))

	err := run(context.Background(), options{config: config, query: "0,0,10"})
	require.Error(t, err)
}
