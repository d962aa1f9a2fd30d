//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/jobscout/internal/config"
)

// Initialize builds an App; the returned cleanup releases drivers, caches
// and browsers in reverse construction order
func Initialize(ctx context.Context, cfg config.Config, tr Transport) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
