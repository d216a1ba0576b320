package spatial

import (
	"fmt"
	"sync"

	"github.com/zeusync/gridspace/internal/core/observability/log"
)

// Index is a uniform-grid spatial index over typed entities. The locator map
// is the source of truth; the cell grid mirrors it so that every tracked id
// sits in exactly one bucket of exactly one cell.
//
// All methods serialize on a single mutex: a reposition touches two cells and
// the locator together and must never be observed half done.
type Index[ID comparable] struct {
	mu       sync.Mutex
	registry *TypeRegistry
	bounds   boundsTracker
	grid     *cellGrid[ID]
	locs     map[ID]*Location
	stats    counters
	logger   log.Log
}

type options struct {
	logger log.Log
}

// Option customizes an Index.
type Option func(*options)

// WithLogger routes rejection diagnostics to l at debug level.
func WithLogger(l log.Log) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an index from config.
func New[ID comparable](cfg Config, opts ...Option) (*Index[ID], error) {
	registry, err := NewTypeRegistry(cfg.Types...)
	if err != nil {
		return nil, err
	}
	return NewWithRegistry[ID](registry, cfg.CellSize, opts...), nil
}

// NewWithRegistry builds an index over an existing registry. Registries are
// immutable and may be shared between indexes.
func NewWithRegistry[ID comparable](registry *TypeRegistry, cellSize float64, opts ...Option) *Index[ID] {
	o := options{logger: log.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	x := &Index[ID]{
		registry: registry,
		locs:     make(map[ID]*Location),
		logger:   o.logger,
	}
	x.grid = newCellGrid[ID](normalizeCellSize(cellSize), &x.bounds)
	return x
}

func (x *Index[ID]) Registry() *TypeRegistry {
	return x.registry
}

// CellSize returns the current cell edge length.
func (x *Index[ID]) CellSize() float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.grid.size
}

// Add starts tracking id. Adding an id that is already tracked under the same
// type only updates its position.
func (x *Index[ID]) Add(label string, id ID, pos Position) error {
	_, err := x.Place(label, id, pos)
	return err
}

// Place is Add that also reports the previous and the new cell.
func (x *Index[ID]) Place(label string, id ID, pos Position) (Transition, error) {
	t, b, err := x.resolve(label)
	if err != nil {
		return Transition{}, err
	}
	if !pos.Valid() {
		return Transition{}, x.reject(ErrMalformedPosition, "add", log.Any("position", pos))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if loc, ok := x.locs[id]; ok {
		if loc.Type != t {
			return Transition{}, x.reject(ErrTypeMismatch, "add",
				log.String("tracked", string(loc.Type)), log.String("requested", string(t)))
		}
		return x.relocate(id, loc, pos), nil
	}
	return x.insert(t, b, id, pos), nil
}

// Remove stops tracking id and reports whether it was tracked.
func (x *Index[ID]) Remove(id ID) bool {
	_, ok := x.Take(id)
	return ok
}

// Take is Remove that also returns the dropped locator record.
func (x *Index[ID]) Take(id ID) (Location, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	loc, ok := x.locs[id]
	if !ok {
		return Location{}, false
	}
	x.grid.remove(loc.Cell, loc.Bucket, id)
	delete(x.locs, id)
	return *loc, true
}

// Reposition updates the position of a tracked id. An untracked id is added
// under defaultType when one is given, and rejected with ErrNotTracked when not.
func (x *Index[ID]) Reposition(id ID, pos Position, defaultType ...string) error {
	_, err := x.Move(id, pos, defaultType...)
	return err
}

// Move is Reposition that also reports the previous and the new cell.
func (x *Index[ID]) Move(id ID, pos Position, defaultType ...string) (Transition, error) {
	if !pos.Valid() {
		return Transition{}, x.reject(ErrMalformedPosition, "move", log.Any("position", pos))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if loc, ok := x.locs[id]; ok {
		return x.relocate(id, loc, pos), nil
	}
	if len(defaultType) == 0 || defaultType[0] == "" {
		return Transition{}, x.reject(ErrNotTracked, "move")
	}
	t, b, err := x.resolve(defaultType[0])
	if err != nil {
		return Transition{}, err
	}
	return x.insert(t, b, id, pos), nil
}

// ChangeType moves id into the bucket of another type inside the same cell.
func (x *Index[ID]) ChangeType(id ID, label string) error {
	_, err := x.Retype(id, label)
	return err
}

// Retype is ChangeType that also returns the type id had before the call.
func (x *Index[ID]) Retype(id ID, label string) (EntityType, error) {
	t, b, err := x.resolve(label)
	if err != nil {
		return "", err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	loc, ok := x.locs[id]
	if !ok {
		return "", x.reject(ErrNotTracked, "change type")
	}
	previous := loc.Type
	if previous == t {
		return previous, nil
	}

	// Insert before removing so the cell is never pruned in between.
	x.grid.ensureCell(loc.Cell).insert(b, id)
	x.grid.remove(loc.Cell, loc.Bucket, id)
	loc.Type = t
	loc.Bucket = b
	x.stats.retypes++
	return previous, nil
}

// Clear drops every entity and resets the bounds envelope.
func (x *Index[ID]) Clear() {
	x.Reset()
}

// Reset is Clear that returns how many entities were dropped.
func (x *Index[ID]) Reset() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := len(x.locs)
	x.resetLocked(x.grid.size)
	return n
}

func (x *Index[ID]) Size() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.locs)
}

func (x *Index[ID]) Has(id ID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.locs[id]
	return ok
}

// Lookup returns a copy of the locator record of id.
func (x *Index[ID]) Lookup(id ID) (Location, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	loc, ok := x.locs[id]
	if !ok {
		return Location{}, false
	}
	return *loc, true
}

// Bounds returns the envelope of every cell occupied since the last reset.
func (x *Index[ID]) Bounds() Bounds {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.bounds.snapshot()
}

// ForEach visits tracked entities until fn returns false. fn must not call
// back into the index.
func (x *Index[ID]) ForEach(fn func(id ID, loc Location) bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, loc := range x.locs {
		if !fn(id, *loc) {
			return
		}
	}
}

func (x *Index[ID]) resolve(label string) (EntityType, BucketKey, error) {
	t, ok := x.registry.Normalize(label)
	if !ok {
		x.logger.Debug("spatial: unknown entity type", log.String("label", label))
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidType, label)
	}
	b, _ := x.registry.Bucket(t)
	return t, b, nil
}

func (x *Index[ID]) reject(err error, op string, fields ...log.Field) error {
	if x.logger.Enabled(log.LevelDebug) {
		x.logger.Debug("spatial: "+op+" rejected", append(fields, log.Error(err))...)
	}
	return err
}

// insert places an untracked id. Callers hold mu.
func (x *Index[ID]) insert(t EntityType, b BucketKey, id ID, pos Position) Transition {
	c := x.grid.coordFor(pos)
	x.grid.ensureCell(c).insert(b, id)
	x.locs[id] = &Location{Cell: c, Type: t, Bucket: b, Position: pos}
	x.stats.inserts++
	return Transition{To: c}
}

// relocate updates a tracked id. Sub-cell moves never touch the grid.
// Callers hold mu.
func (x *Index[ID]) relocate(id ID, loc *Location, pos Position) Transition {
	to := x.grid.coordFor(pos)
	tr := Transition{From: loc.Cell, HadFrom: true, To: to}
	x.stats.repositions++
	if to != loc.Cell {
		x.grid.ensureCell(to).insert(loc.Bucket, id)
		x.grid.remove(loc.Cell, loc.Bucket, id)
		loc.Cell = to
		x.stats.crossings++
	}
	loc.Position = pos
	return tr
}

func (x *Index[ID]) resetLocked(cellSize float64) {
	x.grid.reset(cellSize)
	x.bounds.reset()
	x.locs = make(map[ID]*Location)
}
