package spatial

import "math"

// EntityType is a label accepted by a TypeRegistry. Values are only produced
// by TypeRegistry.Normalize.
type EntityType string

// BucketKey identifies a per-type bucket inside a cell.
type BucketKey uint16

// Position is an entity location. Only X and Z take part in bucketing and
// distance; Y is carried for callers.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Valid reports whether X and Z are finite numbers.
func (p Position) Valid() bool {
	return finite(p.X) && finite(p.Z)
}

// DistanceSquaredXZ is the squared planar distance between p and q.
func (p Position) DistanceSquaredXZ(q Position) float64 {
	dx := p.X - q.X
	dz := p.Z - q.Z
	return dx*dx + dz*dz
}

// CellCoord addresses one square cell of the grid.
type CellCoord struct {
	X int64 `json:"x"`
	Z int64 `json:"z"`
}

// Location is the locator record kept for every tracked entity.
type Location struct {
	Cell     CellCoord
	Type     EntityType
	Bucket   BucketKey
	Position Position
}

// Bounds is the envelope of every cell occupied since the last reset.
type Bounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
	Has        bool
}

// Contains reports whether the planar point (x, z) lies inside the envelope.
func (b Bounds) Contains(x, z float64) bool {
	return b.Has && x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// Transition describes where a Move took an entity.
type Transition struct {
	From    CellCoord
	HadFrom bool // false when the entity was not tracked before the move
	To      CellCoord
}

// Crossed reports a move between two different cells.
func (t Transition) Crossed() bool {
	return t.HadFrom && t.From != t.To
}

// Entered reports that the move started tracking the entity.
func (t Transition) Entered() bool {
	return !t.HadFrom
}

// QueryResult maps every requested, registered type to the ids found.
type QueryResult[ID comparable] map[EntityType][]ID

// Total is the number of ids across all types.
func (r QueryResult[ID]) Total() int {
	n := 0
	for _, ids := range r {
		n += len(ids)
	}
	return n
}

// Contains reports whether id was found under type t.
func (r QueryResult[ID]) Contains(t EntityType, id ID) bool {
	for _, v := range r[t] {
		if v == id {
			return true
		}
	}
	return false
}

// maxCell keeps cell indices well inside int64 and float64 integer precision.
const maxCell = 1 << 52

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func cellIndex(v, cellSize float64) int64 {
	f := math.Floor(v / cellSize)
	switch {
	case f > maxCell:
		return maxCell
	case f < -maxCell:
		return -maxCell
	}
	return int64(f)
}
