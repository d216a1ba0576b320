package injector

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/wire"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/gridspace/internal/core/events/bus"
	"github.com/zeusync/gridspace/internal/core/observability/log"
	"github.com/zeusync/gridspace/internal/core/spatial"
	"github.com/zeusync/gridspace/internal/core/storage"
	"github.com/zeusync/gridspace/internal/core/storage/memory"
	"github.com/zeusync/gridspace/internal/core/storage/sqlite"
	"github.com/zeusync/gridspace/internal/core/system"
	"github.com/zeusync/gridspace/pkg/encoding"
)

// AppConfig is the host configuration file.
type AppConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Store is the sqlite database path. Snapshots stay in memory when empty.
	Store  string                    `yaml:"store" json:"store"`
	Codec  string                    `yaml:"codec" json:"codec"`
	Spaces map[string]spatial.Config `yaml:"spaces" json:"spaces"`
}

func LoadAppConfig(r io.Reader) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return AppConfig{}, fmt.Errorf("decode app config: %w", err)
	}
	return cfg, nil
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideBus,
	ProvideCodec,
	ProvideStore,
	ProvideManager,
)

func ProvideLogger(cfg AppConfig) *log.Logger {
	return log.New(log.ParseLevel(cfg.LogLevel))
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideCodec(cfg AppConfig) (encoding.Codec, error) {
	return encoding.ByName(cfg.Codec)
}

// ProvideStore opens the configured snapshot store. The cleanup closes it.
func ProvideStore(ctx context.Context, cfg AppConfig, logger log.Log) (storage.SnapshotStore, func(), error) {
	if cfg.Store == "" {
		s := memory.New()
		return s, func() { _ = s.Close() }, nil
	}
	s, err := sqlite.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn("closing snapshot store", log.Error(err))
		}
	}, nil
}

// ProvideManager creates every configured space, in name order.
func ProvideManager(cfg AppConfig, store storage.SnapshotStore, codec encoding.Codec, b bus.EventBus, logger log.Log) (*system.Manager[string], error) {
	m := system.NewManager[string](store, codec, b, logger)

	names := make([]string, 0, len(cfg.Spaces))
	for name := range cfg.Spaces {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := m.Create(name, cfg.Spaces[name]); err != nil {
			return nil, err
		}
	}
	return m, nil
}
