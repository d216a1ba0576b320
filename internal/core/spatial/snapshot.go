package spatial

import "github.com/zeusync/gridspace/internal/core/observability/log"

// Snapshot is the persisted form of an index. The cell grid is not stored;
// it is rebuilt from the entity records.
type Snapshot[ID comparable] struct {
	CellSize float64            `json:"cellSize" msgpack:"cellSize" yaml:"cellSize"`
	Bounds   *SnapshotBounds    `json:"bounds,omitempty" msgpack:"bounds,omitempty" yaml:"bounds,omitempty"`
	Entities []EntityRecord[ID] `json:"entities" msgpack:"entities" yaml:"entities"`
}

type SnapshotBounds struct {
	MinX float64 `json:"minX" msgpack:"minX" yaml:"minX"`
	MinZ float64 `json:"minZ" msgpack:"minZ" yaml:"minZ"`
	MaxX float64 `json:"maxX" msgpack:"maxX" yaml:"maxX"`
	MaxZ float64 `json:"maxZ" msgpack:"maxZ" yaml:"maxZ"`
}

type EntityRecord[ID comparable] struct {
	ID       ID             `json:"id" msgpack:"id" yaml:"id"`
	Type     string         `json:"type" msgpack:"type" yaml:"type"`
	Position PositionRecord `json:"position" msgpack:"position" yaml:"position"`
}

// PositionRecord keeps X and Z as pointers so a record that lacks them can be
// told apart from one at the origin. Y is dropped when it is not finite, since
// JSON has no encoding for NaN or Inf, and restores as 0.
type PositionRecord struct {
	X *float64 `json:"x" msgpack:"x" yaml:"x"`
	Y *float64 `json:"y,omitempty" msgpack:"y,omitempty" yaml:"y,omitempty"`
	Z *float64 `json:"z" msgpack:"z" yaml:"z"`
}

// NewPositionRecord copies p into a record.
func NewPositionRecord(p Position) PositionRecord {
	x, z := p.X, p.Z
	r := PositionRecord{X: &x, Z: &z}
	if finite(p.Y) {
		y := p.Y
		r.Y = &y
	}
	return r
}

// Position converts the record, reporting false when X or Z is missing or
// not finite.
func (r PositionRecord) Position() (Position, bool) {
	if r.X == nil || r.Z == nil {
		return Position{}, false
	}
	p := Position{X: *r.X, Z: *r.Z}
	if r.Y != nil && finite(*r.Y) {
		p.Y = *r.Y
	}
	return p, p.Valid()
}

// Serialize captures cell size, bounds and every tracked entity.
func (x *Index[ID]) Serialize() Snapshot[ID] {
	x.mu.Lock()
	defer x.mu.Unlock()

	s := Snapshot[ID]{
		CellSize: x.grid.size,
		Entities: make([]EntityRecord[ID], 0, len(x.locs)),
	}
	if b := x.bounds.snapshot(); b.Has {
		s.Bounds = &SnapshotBounds{MinX: b.MinX, MinZ: b.MinZ, MaxX: b.MaxX, MaxZ: b.MaxZ}
	}
	for id, loc := range x.locs {
		s.Entities = append(s.Entities, EntityRecord[ID]{
			ID:       id,
			Type:     string(loc.Type),
			Position: NewPositionRecord(loc.Position),
		})
	}
	return s
}

// Deserialize replaces the index content with s. Cell size and bounds are
// restored as stored, then every record is replayed as an add. Records with an
// unknown type, a malformed position or a conflicting duplicate id are
// skipped; the number skipped is returned.
func (x *Index[ID]) Deserialize(s Snapshot[ID]) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.resetLocked(normalizeCellSize(s.CellSize))
	if sb := s.Bounds; sb != nil && finite(sb.MinX) && finite(sb.MaxX) && finite(sb.MinZ) && finite(sb.MaxZ) {
		x.bounds.restore(Bounds{MinX: sb.MinX, MaxX: sb.MaxX, MinZ: sb.MinZ, MaxZ: sb.MaxZ, Has: true})
	}

	skipped := 0
	for _, rec := range s.Entities {
		t, ok := x.registry.Normalize(rec.Type)
		if !ok {
			skipped++
			continue
		}
		pos, ok := rec.Position.Position()
		if !ok {
			skipped++
			continue
		}
		if loc, tracked := x.locs[rec.ID]; tracked {
			if loc.Type != t {
				skipped++
				continue
			}
			x.relocate(rec.ID, loc, pos)
			continue
		}
		b, _ := x.registry.Bucket(t)
		x.insert(t, b, rec.ID, pos)
	}
	if skipped > 0 {
		x.logger.Debug("spatial: snapshot records skipped",
			log.Int("skipped", skipped), log.Int("records", len(s.Entities)))
	}
	return skipped
}
