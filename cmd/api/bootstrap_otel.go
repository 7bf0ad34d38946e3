package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/snapfeed/snapfeed/internal/config/api"
	"github.com/snapfeed/snapfeed/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return nil, err
	}
	logger.Debug("otel ready", zap.Bool("enabled", cfg.OTEL.Enable))
	return closer.Shutdown, nil
}
