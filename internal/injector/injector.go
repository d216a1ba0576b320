//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/gridspace/internal/core/system"
)

func InitializeManager(ctx context.Context, cfg AppConfig) (*system.Manager[string], func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
