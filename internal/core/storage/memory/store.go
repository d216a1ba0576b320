package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/gridspace/internal/core/storage"
)

var _ storage.SnapshotStore = (*Store)(nil)

type entry struct {
	data []byte
	info storage.Info
}

// Store keeps snapshots in process memory.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return storage.ErrEmptyName
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = entry{
		data: buf,
		info: storage.Info{Name: name, Size: len(buf), Checksum: storage.Checksum(buf), UpdatedAt: s.now()},
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	if err := storage.Verify(e.data, e.info.Checksum); err != nil {
		return nil, err
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return storage.ErrNotFound
	}
	delete(s.entries, name)
	return nil
}

func (s *Store) List(ctx context.Context) ([]storage.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]storage.Info, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.info)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Close() error { return nil }
