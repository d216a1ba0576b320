package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/gridspace/internal/core/storage"
)

func TestStore_DetectsCorruption(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, "main", []byte(`{"cellSize":100}`)))
	_, err = s.conn.ExecContext(ctx, "UPDATE snapshots SET payload = ? WHERE name = ?", []byte(`{"cellSize":101}`), "main")
	require.NoError(t, err)

	_, err = s.Load(ctx, "main")
	require.ErrorIs(t, err, storage.ErrChecksumMismatch)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "layer-1", []byte("payload")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "layer-1")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}
