package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/snapfeed/snapfeed/internal/config/api"
	pg "github.com/snapfeed/snapfeed/internal/repository/postgres"
)

type dbHandle = *pg.DB

func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (dbHandle, error) {
	logger.Info("connecting to postgres")
	return pg.NewDB(ctx, cfg.DB)
}
