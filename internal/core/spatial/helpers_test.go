package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestIndex[ID comparable](t testing.TB, cellSize float64, types ...string) *Index[ID] {
	t.Helper()
	x, err := New[ID](Config{CellSize: cellSize, Types: types})
	require.NoError(t, err)
	return x
}

// requireConsistent checks that the locator and the grid agree, that every
// recorded type is registered and that the envelope covers every cell.
func requireConsistent[ID comparable](t testing.TB, x *Index[ID]) {
	t.Helper()
	x.mu.Lock()
	defer x.mu.Unlock()

	for id, loc := range x.locs {
		b, ok := x.registry.Bucket(loc.Type)
		require.True(t, ok, "type %q not registered", loc.Type)
		require.Equal(t, b, loc.Bucket)
		require.Equal(t, x.grid.coordFor(loc.Position), loc.Cell)

		c, ok := x.grid.cellAt(loc.Cell)
		require.True(t, ok, "cell %v missing for %v", loc.Cell, id)
		require.True(t, c.contains(loc.Bucket, id), "%v missing from its bucket", id)
	}

	members := 0
	cells := 0
	bounds := x.bounds.snapshot()
	x.grid.forEachCell(func(cc CellCoord, c *cell[ID]) {
		cells++
		require.False(t, c.empty(), "empty cell %v retained", cc)
		for b, bucket := range c.buckets {
			require.NotEmpty(t, bucket, "empty bucket %d in %v", b, cc)
			for id := range bucket {
				loc, ok := x.locs[id]
				require.True(t, ok, "untracked %v in grid", id)
				require.Equal(t, cc, loc.Cell)
				require.Equal(t, b, loc.Bucket)
				members++
			}
		}
		x0 := float64(cc.X) * x.grid.size
		z0 := float64(cc.Z) * x.grid.size
		require.True(t, bounds.Has)
		require.LessOrEqual(t, bounds.MinX, x0)
		require.GreaterOrEqual(t, bounds.MaxX, x0+x.grid.size)
		require.LessOrEqual(t, bounds.MinZ, z0)
		require.GreaterOrEqual(t, bounds.MaxZ, z0+x.grid.size)
	})
	require.Equal(t, len(x.locs), members)
	require.Equal(t, cells, x.grid.cellCount())
}
