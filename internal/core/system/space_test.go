package system

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/gridspace/internal/core/events/bus"
	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/core/systems/physics"
	"github.com/zeusync/gridspace/pkg/encoding"
)

var testConfig = spatial.Config{CellSize: 100, Types: []string{"unit", "static"}}

type recorder struct {
	types  []string
	events []bus.Event
}

func (r *recorder) handle(e bus.Event) error {
	r.types = append(r.types, e.Type())
	r.events = append(r.events, e)
	return nil
}

func newObservedSpace(t *testing.T, name string) (*Space[string], *recorder) {
	t.Helper()
	b := bus.New()
	rec := &recorder{}
	_, err := b.SubscribeTopic(name, "", rec.handle)
	require.NoError(t, err)

	s, err := NewSpace[string](name, testConfig, WithBus(b))
	require.NoError(t, err)
	return s, rec
}

func TestSpace_Events(t *testing.T) {
	s, rec := newObservedSpace(t, "mission")

	require.NoError(t, s.Add("unit", "u1", spatial.Position{X: 10, Z: 10}))
	// same cell, nothing announced
	require.NoError(t, s.Add("unit", "u1", spatial.Position{X: 20, Z: 20}))
	require.NoError(t, s.Reposition("u1", spatial.Position{X: 250, Z: 20}))
	require.NoError(t, s.ChangeType("u1", "unit"))
	require.NoError(t, s.ChangeType("u1", "static"))
	require.ErrorIs(t, s.ChangeType("u1", "weapon"), spatial.ErrInvalidType)
	require.True(t, s.Remove("u1"))
	require.False(t, s.Remove("u1"))
	s.Clear()

	require.Equal(t, []string{
		EventEntityAdded,
		EventCellChanged,
		EventEntityRetyped,
		EventEntityRemoved,
		EventSpaceCleared,
	}, rec.types)

	crossed := rec.events[1].Data().(EntityEvent[string])
	require.Equal(t, "u1", crossed.ID)
	require.Equal(t, spatial.CellCoord{X: 0, Z: 0}, crossed.Transition.From)
	require.Equal(t, spatial.CellCoord{X: 2, Z: 0}, crossed.Transition.To)

	retyped := rec.events[2].Data().(EntityEvent[string])
	require.Equal(t, spatial.EntityType("static"), retyped.Type)
	require.Equal(t, spatial.EntityType("unit"), retyped.PreviousType)

	removed := rec.events[3].Data().(EntityEvent[string])
	require.Equal(t, spatial.EntityType("static"), removed.Type)
	require.Equal(t, "mission", rec.events[3].Source())
}

func TestSpace_WithoutBus(t *testing.T) {
	s, err := NewSpace[int]("quiet", testConfig)
	require.NoError(t, err)
	require.NoError(t, s.Add("unit", 1, spatial.Position{}))
	require.True(t, s.Remove(1))
	s.Clear()
}

func TestSpace_InvalidConfig(t *testing.T) {
	_, err := NewSpace[int]("broken", spatial.Config{})
	require.ErrorIs(t, err, spatial.ErrEmptyRegistry)
}

func TestSpace_TransformBoundary(t *testing.T) {
	s, err := NewSpace[string]("layer", testConfig)
	require.NoError(t, err)

	x, z := 40.0, 40.0
	live := physics.TransformFunc(func() (float64, float64, float64) { return x, 7, z })
	require.NoError(t, s.Track("unit", "u1", live))

	x, z = 140, 40
	require.NoError(t, s.Refresh("u1", live))
	loc, ok := s.Index().Lookup("u1")
	require.True(t, ok)
	require.Equal(t, spatial.Position{X: 140, Y: 7, Z: 40}, loc.Position)

	probe := physics.Transform3D{Pos: physics.Vec3{Xv: 130, Zv: 40}}
	res := s.QueryAround(probe, 10, "unit", "static")
	require.Equal(t, []string{"u1"}, res["unit"])
	require.Empty(t, res["static"])

	require.ErrorIs(t, s.Refresh("ghost", probe), spatial.ErrNotTracked)
}

func TestSpace_SnapshotCodecs(t *testing.T) {
	for _, name := range encoding.Names() {
		t.Run(name, func(t *testing.T) {
			codec, err := encoding.ByName(name)
			require.NoError(t, err)

			src, err := NewSpace[string]("src", testConfig, WithCodec(codec))
			require.NoError(t, err)
			require.NoError(t, src.Add("unit", "u1", spatial.Position{X: 1.5, Y: -2, Z: 3}))
			require.NoError(t, src.Add("static", "s1", spatial.Position{X: -999, Z: 12345}))
			require.NoError(t, src.Add("unit", "u2", spatial.Position{X: 40, Y: math.NaN(), Z: 40}))

			data, err := src.Serialize()
			require.NoError(t, err)

			dst, err := NewSpace[string]("dst", testConfig, WithCodec(codec))
			require.NoError(t, err)
			require.NoError(t, dst.Deserialize(data))

			require.Equal(t, src.Size(), dst.Size())
			require.Equal(t, src.Index().Bounds(), dst.Index().Bounds())
			loc, ok := dst.Index().Lookup("u2")
			require.True(t, ok)
			require.Equal(t, spatial.Position{X: 40, Z: 40}, loc.Position)

			for _, id := range []string{"u1", "s1"} {
				want, _ := src.Index().Lookup(id)
				got, ok := dst.Index().Lookup(id)
				require.True(t, ok)
				require.Equal(t, want, got)
			}
		})
	}
}

func TestSpace_RestoreReportsSkipped(t *testing.T) {
	s, rec := newObservedSpace(t, "restore")

	skipped, err := s.Restore([]byte(`{"cellSize": 100, "entities": [
		{"id": "u1", "type": "unit", "position": {"x": 1, "z": 1}},
		{"id": "w1", "type": "weapon", "position": {"x": 1, "z": 1}}
	]}`))
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.True(t, s.Has("u1"))

	require.Equal(t, []string{EventSpaceRestored}, rec.types)
	require.Equal(t, SpaceEvent{Entities: 1, Skipped: 1}, rec.events[0].Data())

	_, err = s.Restore([]byte("not json"))
	require.Error(t, err)
	require.True(t, s.Has("u1"))
}

func TestSpace_ClearReportsDropped(t *testing.T) {
	s, rec := newObservedSpace(t, "wipe")
	require.NoError(t, s.Add("unit", "u1", spatial.Position{X: 1, Z: 1}))
	require.NoError(t, s.Add("static", "s1", spatial.Position{X: 500, Z: 1}))

	s.Clear()
	require.Zero(t, s.Size())

	last := rec.events[len(rec.events)-1]
	require.Equal(t, EventSpaceCleared, last.Type())
	require.Equal(t, SpaceEvent{Entities: 2}, last.Data())
}
