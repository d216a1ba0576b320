package spatial

// boundsTracker keeps the envelope of every cell occupied since the last
// reset. It only grows; vacating a cell leaves the envelope as it was.
type boundsTracker struct {
	b Bounds
}

func (t *boundsTracker) touch(x0, x1, z0, z1 float64) {
	if !t.b.Has {
		t.b = Bounds{MinX: x0, MaxX: x1, MinZ: z0, MaxZ: z1, Has: true}
		return
	}
	t.b.MinX = min(t.b.MinX, x0)
	t.b.MaxX = max(t.b.MaxX, x1)
	t.b.MinZ = min(t.b.MinZ, z0)
	t.b.MaxZ = max(t.b.MaxZ, z1)
}

func (t *boundsTracker) snapshot() Bounds {
	return t.b
}

func (t *boundsTracker) restore(b Bounds) {
	t.b = b
}

func (t *boundsTracker) reset() {
	t.b = Bounds{}
}
