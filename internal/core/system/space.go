package system

import (
	"fmt"

	"github.com/zeusync/gridspace/internal/core/events/bus"
	"github.com/zeusync/gridspace/internal/core/observability/log"
	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/core/systems/physics"
	"github.com/zeusync/gridspace/pkg/encoding"
)

var _ encoding.Serializable[spatial.Snapshot[string]] = (*Space[string])(nil)

// Space owns one spatial index for a logical area (a mission, a map layer)
// and announces membership changes on the event bus. Spaces share nothing;
// the host creates one per area it tracks.
type Space[ID comparable] struct {
	name   string
	index  *spatial.Index[ID]
	bus    bus.EventBus
	codec  encoding.Codec
	logger log.Log
}

type spaceOptions struct {
	bus    bus.EventBus
	codec  encoding.Codec
	logger log.Log
}

type SpaceOption func(*spaceOptions)

// WithBus publishes lifecycle events into the topic named after the space.
func WithBus(b bus.EventBus) SpaceOption {
	return func(o *spaceOptions) { o.bus = b }
}

// WithCodec selects the snapshot encoding. JSON by default.
func WithCodec(c encoding.Codec) SpaceOption {
	return func(o *spaceOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

func WithLogger(l log.Log) SpaceOption {
	return func(o *spaceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewSpace[ID comparable](name string, cfg spatial.Config, opts ...SpaceOption) (*Space[ID], error) {
	o := spaceOptions{codec: encoding.JSON, logger: log.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(log.String("space", name))

	index, err := spatial.New[ID](cfg, spatial.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("space %q: %w", name, err)
	}
	return &Space[ID]{
		name:   name,
		index:  index,
		bus:    o.bus,
		codec:  o.codec,
		logger: logger,
	}, nil
}

func (s *Space[ID]) Name() string { return s.name }

// Index exposes the underlying index. Mutations made through it are not
// announced on the bus.
func (s *Space[ID]) Index() *spatial.Index[ID] { return s.index }

func (s *Space[ID]) Add(label string, id ID, pos spatial.Position) error {
	tr, err := s.index.Place(label, id, pos)
	if err != nil {
		return err
	}
	s.announceMove(id, tr)
	return nil
}

// Track harvests the current position of an engine object and adds or
// repositions it. The transform is not retained.
func (s *Space[ID]) Track(label string, id ID, t physics.Transform) error {
	x, y, z := t.Position3()
	return s.Add(label, id, spatial.Position{X: x, Y: y, Z: z})
}

// Refresh repositions an already tracked engine object from its transform.
func (s *Space[ID]) Refresh(id ID, t physics.Transform) error {
	x, y, z := t.Position3()
	return s.Reposition(id, spatial.Position{X: x, Y: y, Z: z})
}

func (s *Space[ID]) Remove(id ID) bool {
	loc, ok := s.index.Take(id)
	if !ok {
		return false
	}
	s.publish(EventEntityRemoved, EntityEvent[ID]{
		ID:         id,
		Type:       loc.Type,
		Transition: spatial.Transition{From: loc.Cell, HadFrom: true, To: loc.Cell},
	})
	return true
}

func (s *Space[ID]) Reposition(id ID, pos spatial.Position, defaultType ...string) error {
	_, err := s.Move(id, pos, defaultType...)
	return err
}

func (s *Space[ID]) Move(id ID, pos spatial.Position, defaultType ...string) (spatial.Transition, error) {
	tr, err := s.index.Move(id, pos, defaultType...)
	if err != nil {
		return tr, err
	}
	s.announceMove(id, tr)
	return tr, nil
}

func (s *Space[ID]) ChangeType(id ID, label string) error {
	previous, err := s.index.Retype(id, label)
	if err != nil {
		return err
	}
	current, _ := s.index.Registry().Normalize(label)
	if current == previous {
		return nil
	}
	ev := EntityEvent[ID]{ID: id, Type: current, PreviousType: previous}
	if loc, ok := s.index.Lookup(id); ok {
		ev.Transition = spatial.Transition{From: loc.Cell, HadFrom: true, To: loc.Cell}
	}
	s.publish(EventEntityRetyped, ev)
	return nil
}

func (s *Space[ID]) QueryRadius(center spatial.Position, radius float64, labels ...string) spatial.QueryResult[ID] {
	return s.index.QueryRadius(center, radius, labels...)
}

// QueryAround runs a radius query centred on an engine object.
func (s *Space[ID]) QueryAround(t physics.Transform, radius float64, labels ...string) spatial.QueryResult[ID] {
	x, y, z := t.Position3()
	return s.index.QueryRadius(spatial.Position{X: x, Y: y, Z: z}, radius, labels...)
}

func (s *Space[ID]) Clear() {
	n := s.index.Reset()
	s.logger.Info("space cleared", log.Int("entities", n))
	s.publish(EventSpaceCleared, SpaceEvent{Entities: n})
}

func (s *Space[ID]) Size() int { return s.index.Size() }

func (s *Space[ID]) Has(id ID) bool { return s.index.Has(id) }

func (s *Space[ID]) Statistics() spatial.Statistics { return s.index.Statistics() }

// Serialize encodes a snapshot of the index with the space codec.
func (s *Space[ID]) Serialize() ([]byte, error) {
	data, err := s.codec.Marshal(s.index.Serialize())
	if err != nil {
		return nil, fmt.Errorf("space %q: encode snapshot: %w", s.name, err)
	}
	return data, nil
}

// Deserialize replaces the index content with an encoded snapshot.
func (s *Space[ID]) Deserialize(data []byte) error {
	_, err := s.Restore(data)
	return err
}

// Restore is Deserialize that reports how many records were skipped.
func (s *Space[ID]) Restore(data []byte) (int, error) {
	var snap spatial.Snapshot[ID]
	if err := s.codec.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("space %q: decode snapshot: %w", s.name, err)
	}
	return s.Load(snap), nil
}

// Load replaces the index content with a decoded snapshot and returns the
// number of skipped records.
func (s *Space[ID]) Load(snap spatial.Snapshot[ID]) int {
	skipped := s.index.Deserialize(snap)
	n := s.index.Size()
	if skipped > 0 {
		s.logger.Warn("snapshot records skipped", log.Int("skipped", skipped), log.Int("entities", n))
	}
	s.logger.Info("space restored", log.Int("entities", n))
	s.publish(EventSpaceRestored, SpaceEvent{Entities: n, Skipped: skipped})
	return skipped
}

func (s *Space[ID]) announceMove(id ID, tr spatial.Transition) {
	if s.bus == nil || !(tr.Entered() || tr.Crossed()) {
		return
	}
	loc, ok := s.index.Lookup(id)
	if !ok {
		return
	}
	ev := EntityEvent[ID]{ID: id, Type: loc.Type, Transition: tr}
	if tr.Entered() {
		s.publish(EventEntityAdded, ev)
		return
	}
	s.publish(EventCellChanged, ev)
}

func (s *Space[ID]) publish(eventType string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishToTopic(s.name, bus.NewEvent(eventType, s.name, data)); err != nil {
		s.logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
