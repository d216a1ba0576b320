package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/gridspace/internal/core/observability/log"
	"github.com/zeusync/gridspace/internal/core/storage"

	_ "modernc.org/sqlite"
)

var _ storage.SnapshotStore = (*Store)(nil)

// Store keeps snapshots in a SQLite database, one row per space.
type Store struct {
	conn   *sql.DB
	logger log.Log
}

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string, logger log.Log) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// SQLite has a single writer; one connection also keeps ":memory:" shared.
	conn.SetMaxOpenConns(1)

	if _, err = conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	s := &Store{conn: conn, logger: logger.With(log.String("store", "sqlite"), log.String("path", path))}
	if err = s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		checksum INTEGER NOT NULL,
		size INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		s.logger.Error("snapshot db migration failed", log.Error(err))
		return fmt.Errorf("migrate snapshot db: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return storage.ErrEmptyName
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO snapshots (name, payload, checksum, size, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			checksum = excluded.checksum,
			size = excluded.size,
			updated_at = excluded.updated_at`,
		name, data, int64(storage.Checksum(data)), len(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	s.logger.Debug("snapshot saved", log.String("name", name), log.Int("bytes", len(data)))
	return nil
}

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var (
		payload []byte
		sum     int64
	)
	err := s.conn.QueryRowContext(ctx,
		"SELECT payload, checksum FROM snapshots WHERE name = ?", name,
	).Scan(&payload, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	if err = storage.Verify(payload, uint64(sum)); err != nil {
		s.logger.Warn("snapshot checksum mismatch", log.String("name", name))
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return payload, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]storage.Info, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT name, size, checksum, updated_at FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []storage.Info
	for rows.Next() {
		var (
			info    storage.Info
			sum     int64
			updated int64
		)
		if err = rows.Scan(&info.Name, &info.Size, &sum, &updated); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		info.Checksum = uint64(sum)
		info.UpdatedAt = time.UnixMilli(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.conn.Close()
}
