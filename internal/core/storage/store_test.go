package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/gridspace/internal/core/storage"
	"github.com/zeusync/gridspace/internal/core/storage/memory"
	"github.com/zeusync/gridspace/internal/core/storage/sqlite"
)

func stores(t *testing.T) map[string]storage.SnapshotStore {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.SnapshotStore{
		"memory": memory.New(),
		"sqlite": db,
	}
}

func TestSnapshotStore_Contract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "missing")
			require.ErrorIs(t, err, storage.ErrNotFound)
			require.ErrorIs(t, s.Delete(ctx, "missing"), storage.ErrNotFound)
			require.ErrorIs(t, s.Save(ctx, "", []byte("x")), storage.ErrEmptyName)

			require.NoError(t, s.Save(ctx, "b", []byte("first")))
			require.NoError(t, s.Save(ctx, "a", []byte("alpha")))
			require.NoError(t, s.Save(ctx, "b", []byte("second")))

			got, err := s.Load(ctx, "b")
			require.NoError(t, err)
			require.Equal(t, []byte("second"), got)

			infos, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			require.Equal(t, "a", infos[0].Name)
			require.Equal(t, "b", infos[1].Name)
			require.Equal(t, len("second"), infos[1].Size)
			require.Equal(t, storage.Checksum([]byte("second")), infos[1].Checksum)
			require.False(t, infos[1].UpdatedAt.IsZero())

			require.NoError(t, s.Delete(ctx, "a"))
			_, err = s.Load(ctx, "a")
			require.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestMemoryStore_CopiesPayload(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	data := []byte("abc")
	require.NoError(t, s.Save(ctx, "k", data))
	data[0] = 'z'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestVerify(t *testing.T) {
	data := []byte("snapshot")
	require.NoError(t, storage.Verify(data, storage.Checksum(data)))
	require.ErrorIs(t, storage.Verify(data, 1), storage.ErrChecksumMismatch)
}
