package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNotFound         = errors.New("storage: snapshot not found")
	ErrChecksumMismatch = errors.New("storage: snapshot checksum mismatch")
	ErrEmptyName        = errors.New("storage: snapshot name is empty")
)

// SnapshotStore persists encoded index snapshots by space name.
type SnapshotStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Info, error)
	Close() error
}

// Info describes a stored snapshot without its payload.
type Info struct {
	Name      string
	Size      int
	Checksum  uint64
	UpdatedAt time.Time
}

// Checksum is the digest stores keep next to each payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify compares a payload with a stored digest.
func Verify(data []byte, sum uint64) error {
	if Checksum(data) != sum {
		return ErrChecksumMismatch
	}
	return nil
}
