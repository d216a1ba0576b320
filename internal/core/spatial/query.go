package spatial

import (
	"math"

	"github.com/zeusync/gridspace/internal/core/systems/physics"
)

// QueryRadius returns, for every requested label that names a registered
// type, the ids of that type whose planar distance to center is at most
// radius. Unknown labels are skipped. A negative or non-finite radius, or a
// malformed center, yields an empty result. The call never fails.
func (x *Index[ID]) QueryRadius(center Position, radius float64, labels ...string) QueryResult[ID] {
	result := make(QueryResult[ID], len(labels))
	buckets := make([]BucketKey, 0, len(labels))
	types := make([]EntityType, 0, len(labels))
	for _, label := range labels {
		t, ok := x.registry.Normalize(label)
		if !ok {
			continue
		}
		if _, dup := result[t]; dup {
			continue
		}
		b, _ := x.registry.Bucket(t)
		result[t] = []ID{}
		buckets = append(buckets, b)
		types = append(types, t)
	}
	if len(buckets) == 0 || !center.Valid() || !finite(radius) || radius < 0 {
		return result
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.stats.queries++
	bounds := x.bounds.snapshot()
	if !bounds.Has || len(x.locs) == 0 {
		return result
	}

	size := x.grid.size

	// The square of cells around the circle, widened by one cell on every side
	// so rounding in floor(v/size) never leaves a boundary hit outside it, then
	// clamped to the envelope. Every occupied cell lies inside the envelope.
	minX := max(cellIndex(center.X-radius, size)-1, cellIndex(bounds.MinX, size))
	maxX := min(cellIndex(center.X+radius, size)+1, cellIndex(bounds.MaxX, size))
	minZ := max(cellIndex(center.Z-radius, size)-1, cellIndex(bounds.MinZ, size))
	maxZ := min(cellIndex(center.Z+radius, size)+1, cellIndex(bounds.MaxZ, size))
	if minX > maxX || minZ > maxZ {
		return result
	}

	r2 := radius * radius
	visit := func(c *cell[ID]) {
		for i, b := range buckets {
			bucket, ok := c.buckets[b]
			if !ok {
				continue
			}
			for id := range bucket {
				x.stats.candidates++
				if within(x.locs[id].Position, center, radius, r2) {
					result[types[i]] = append(result[types[i]], id)
					x.stats.admitted++
				}
			}
		}
	}

	// Walk whichever is smaller: the scan square or the occupied cells.
	span := float64(maxX-minX+1) * float64(maxZ-minZ+1)
	if span > float64(x.grid.cellCount()) {
		x.grid.forEachCell(func(c CellCoord, found *cell[ID]) {
			if c.X >= minX && c.X <= maxX && c.Z >= minZ && c.Z <= maxZ {
				visit(found)
			}
		})
		return result
	}

	for cx := minX; cx <= maxX; cx++ {
		column, ok := x.grid.cells[cx]
		if !ok {
			continue
		}
		for cz := minZ; cz <= maxZ; cz++ {
			if found, ok := column[cz]; ok {
				visit(found)
			}
		}
	}
	return result
}

// within is the exact planar test. Radii whose square overflows fall back to
// the hypotenuse so far away entities are not admitted by an infinite bound.
func within(p, center Position, radius, r2 float64) bool {
	if math.IsInf(r2, 1) {
		return physics.DistanceXZ(center.X, center.Z, p.X, p.Z) <= radius
	}
	return p.DistanceSquaredXZ(center) <= r2
}
