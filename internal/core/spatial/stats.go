package spatial

// counters are cumulative over the lifetime of an index; Clear does not
// reset them.
type counters struct {
	inserts     uint64
	repositions uint64
	crossings   uint64
	retypes     uint64
	queries     uint64
	candidates  uint64
	admitted    uint64
}

// Statistics is a point-in-time view of an index.
type Statistics struct {
	EntityCount int
	CellCount   int
	TypeCount   int
	CellSize    float64
	Bounds      Bounds

	Inserts       uint64
	Repositions   uint64
	CellCrossings uint64
	Retypes       uint64

	Queries    uint64
	Candidates uint64 // ids that reached the exact distance test
	Admitted   uint64
}

func (x *Index[ID]) Statistics() Statistics {
	x.mu.Lock()
	defer x.mu.Unlock()
	return Statistics{
		EntityCount:   len(x.locs),
		CellCount:     x.grid.cellCount(),
		TypeCount:     x.registry.Len(),
		CellSize:      x.grid.size,
		Bounds:        x.bounds.snapshot(),
		Inserts:       x.stats.inserts,
		Repositions:   x.stats.repositions,
		CellCrossings: x.stats.crossings,
		Retypes:       x.stats.retypes,
		Queries:       x.stats.queries,
		Candidates:    x.stats.candidates,
		Admitted:      x.stats.admitted,
	}
}
