package spatial

// cell holds the per-type buckets of one grid square. Empty buckets are
// deleted as soon as they drain so a cell never reports phantom members.
type cell[ID comparable] struct {
	buckets map[BucketKey]map[ID]struct{}
}

func (c *cell[ID]) insert(b BucketKey, id ID) {
	bucket, ok := c.buckets[b]
	if !ok {
		bucket = make(map[ID]struct{}, 1)
		c.buckets[b] = bucket
	}
	bucket[id] = struct{}{}
}

func (c *cell[ID]) remove(b BucketKey, id ID) {
	bucket, ok := c.buckets[b]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(c.buckets, b)
	}
}

func (c *cell[ID]) contains(b BucketKey, id ID) bool {
	_, ok := c.buckets[b][id]
	return ok
}

func (c *cell[ID]) empty() bool {
	return len(c.buckets) == 0
}

// cellGrid is a sparse two-level mapping cx -> cz -> cell.
type cellGrid[ID comparable] struct {
	cells    map[int64]map[int64]*cell[ID]
	size     float64
	occupied int
	bounds   *boundsTracker
}

func newCellGrid[ID comparable](size float64, bounds *boundsTracker) *cellGrid[ID] {
	return &cellGrid[ID]{
		cells:  make(map[int64]map[int64]*cell[ID]),
		size:   size,
		bounds: bounds,
	}
}

func (g *cellGrid[ID]) coordFor(p Position) CellCoord {
	return CellCoord{X: cellIndex(p.X, g.size), Z: cellIndex(p.Z, g.size)}
}

// ensureCell returns the cell at c, creating it and growing the bounds
// envelope by its world rectangle when absent.
func (g *cellGrid[ID]) ensureCell(c CellCoord) *cell[ID] {
	column, ok := g.cells[c.X]
	if !ok {
		column = make(map[int64]*cell[ID])
		g.cells[c.X] = column
	}
	if existing, ok := column[c.Z]; ok {
		return existing
	}

	created := &cell[ID]{buckets: make(map[BucketKey]map[ID]struct{}, 1)}
	column[c.Z] = created
	g.occupied++

	x0 := float64(c.X) * g.size
	z0 := float64(c.Z) * g.size
	g.bounds.touch(x0, x0+g.size, z0, z0+g.size)
	return created
}

func (g *cellGrid[ID]) cellAt(c CellCoord) (*cell[ID], bool) {
	column, ok := g.cells[c.X]
	if !ok {
		return nil, false
	}
	found, ok := column[c.Z]
	return found, ok
}

// remove drops id from the bucket and prunes the cell once it is empty.
func (g *cellGrid[ID]) remove(c CellCoord, b BucketKey, id ID) {
	found, ok := g.cellAt(c)
	if !ok {
		return
	}
	found.remove(b, id)
	if !found.empty() {
		return
	}
	column := g.cells[c.X]
	delete(column, c.Z)
	g.occupied--
	if len(column) == 0 {
		delete(g.cells, c.X)
	}
}

// forEachCell visits occupied cells in no particular order.
func (g *cellGrid[ID]) forEachCell(fn func(CellCoord, *cell[ID])) {
	for cx, column := range g.cells {
		for cz, c := range column {
			fn(CellCoord{X: cx, Z: cz}, c)
		}
	}
}

func (g *cellGrid[ID]) cellCount() int {
	return g.occupied
}

func (g *cellGrid[ID]) reset(size float64) {
	g.cells = make(map[int64]map[int64]*cell[ID])
	g.size = size
	g.occupied = 0
}
