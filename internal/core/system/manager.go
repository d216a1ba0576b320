package system

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/gridspace/internal/core/events/bus"
	"github.com/zeusync/gridspace/internal/core/observability/log"
	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/core/storage"
	"github.com/zeusync/gridspace/pkg/concurrent"
	"github.com/zeusync/gridspace/pkg/encoding"
)

var (
	ErrSpaceExists   = errors.New("system: space already exists")
	ErrSpaceNotFound = errors.New("system: space not found")
	ErrNoStore       = errors.New("system: no snapshot store configured")
)

// Manager owns the named spaces of a host and persists their snapshots.
type Manager[ID comparable] struct {
	mu     sync.RWMutex
	spaces map[string]*Space[ID]

	store  storage.SnapshotStore
	codec  encoding.Codec
	bus    bus.EventBus
	logger log.Log
}

// ManagerMetrics summarizes every managed space.
type ManagerMetrics struct {
	Spaces   int
	Entities int
	Cells    int
}

// NewManager wires spaces to a store, codec and bus. store and b may be nil.
func NewManager[ID comparable](store storage.SnapshotStore, codec encoding.Codec, b bus.EventBus, logger log.Log) *Manager[ID] {
	if codec == nil {
		codec = encoding.JSON
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager[ID]{
		spaces: make(map[string]*Space[ID]),
		store:  store,
		codec:  codec,
		bus:    b,
		logger: logger,
	}
}

// Create builds and registers a new space.
func (m *Manager[ID]) Create(name string, cfg spatial.Config) (*Space[ID], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.spaces[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrSpaceExists, name)
	}
	s, err := NewSpace[ID](name, cfg, WithBus(m.bus), WithCodec(m.codec), WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	m.spaces[name] = s
	m.logger.Info("space created",
		log.String("space", name), log.Float64("cell_size", s.index.CellSize()), log.Int("types", len(cfg.Types)))
	return s, nil
}

func (m *Manager[ID]) Get(name string) (*Space[ID], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.spaces[name]
	return s, ok
}

// Drop forgets a space without touching its stored snapshot.
func (m *Manager[ID]) Drop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spaces[name]; !ok {
		return false
	}
	delete(m.spaces, name)
	return true
}

// Names lists managed spaces in lexical order.
func (m *Manager[ID]) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.spaces))
	for name := range m.spaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the snapshot of one space to the store.
func (m *Manager[ID]) Save(ctx context.Context, name string) error {
	if m.store == nil {
		return ErrNoStore
	}
	s, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSpaceNotFound, name)
	}

	start := time.Now()
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	if err = m.store.Save(ctx, name, data); err != nil {
		m.logger.Error("snapshot save failed", log.String("space", name), log.Error(err))
		return err
	}
	m.logger.Info("snapshot saved",
		log.String("space", name),
		log.Int("bytes", len(data)),
		log.Uint64("checksum", storage.Checksum(data)),
		log.Duration("took", time.Since(start)))
	return nil
}

// SaveAll saves every space concurrently and returns the first error.
func (m *Manager[ID]) SaveAll(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	return concurrent.Each(ctx, m.Names(), 0, func(ctx context.Context, name string) error {
		return m.Save(ctx, name)
	})
}

// Restore loads the stored snapshot of an existing space into it. The space
// must have been created first: its type registry is not part of a snapshot.
func (m *Manager[ID]) Restore(ctx context.Context, name string) (int, error) {
	if m.store == nil {
		return 0, ErrNoStore
	}
	s, ok := m.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSpaceNotFound, name)
	}
	data, err := m.store.Load(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("restore %q: %w", name, err)
	}
	return s.Restore(data)
}

// RestoreAll restores every managed space that has a stored snapshot.
// Spaces without one are left as they are.
func (m *Manager[ID]) RestoreAll(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	return concurrent.Collect(ctx, m.Names(), 0, func(ctx context.Context, name string) error {
		if _, err := m.Restore(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return nil
	})
}

func (m *Manager[ID]) GetMetrics() ManagerMetrics {
	m.mu.RLock()
	spaces := make([]*Space[ID], 0, len(m.spaces))
	for _, s := range m.spaces {
		spaces = append(spaces, s)
	}
	m.mu.RUnlock()

	metrics := ManagerMetrics{Spaces: len(spaces)}
	for _, s := range spaces {
		st := s.Statistics()
		metrics.Entities += st.EntityCount
		metrics.Cells += st.CellCount
	}
	return metrics
}
