package system

import (
	"github.com/zeusync/gridspace/internal/core/spatial"
)

// SpatialPartition is what collaborators (unit, group and static harvesters,
// area membership checks) need from a tracked space. Both a bare index and a
// Space satisfy it.
type SpatialPartition[ID comparable] interface {
	Add(label string, id ID, pos spatial.Position) error
	Remove(id ID) bool
	Reposition(id ID, pos spatial.Position, defaultType ...string) error
	Move(id ID, pos spatial.Position, defaultType ...string) (spatial.Transition, error)
	ChangeType(id ID, label string) error

	QueryRadius(center spatial.Position, radius float64, labels ...string) spatial.QueryResult[ID]

	Clear()
	Size() int
	Has(id ID) bool
	Statistics() spatial.Statistics
}

var (
	_ SpatialPartition[string] = (*spatial.Index[string])(nil)
	_ SpatialPartition[string] = (*Space[string])(nil)
)

// Event types published by a Space into the bus topic named after it.
const (
	EventEntityAdded   = "entity.added"
	EventEntityRemoved = "entity.removed"
	EventCellChanged   = "entity.cell_changed"
	EventEntityRetyped = "entity.retyped"
	EventSpaceCleared  = "space.cleared"
	EventSpaceRestored = "space.restored"
)

// EntityEvent is the payload of entity.* events.
type EntityEvent[ID comparable] struct {
	ID           ID
	Type         spatial.EntityType
	PreviousType spatial.EntityType // entity.retyped only
	Transition   spatial.Transition
}

// SpaceEvent is the payload of space.* events.
type SpaceEvent struct {
	Entities int
	Skipped  int // space.restored only
}
