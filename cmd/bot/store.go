package main

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/config"
	"github.com/PancyStudios/CapsFridayBot/pkg/database"
	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
)

const schemaTimeout = 15 * time.Second

// warningStore is what the bot needs from any backend
type warningStore interface {
	warnings.Store
	warnings.HealthChecker
}

// openStore connects the backend selected by STORE_DRIVER and makes sure the
// warnings collection or table exists. closeFn releases the connection.
func openStore(ctx context.Context, cfg *config.Config) (store warningStore, closeFn func(), err error) {
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			// The database keeps reconnecting in the background
			logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		}
		s := warnings.NewMongoStore(db)
		if db.Connected() {
			if err := s.EnsureSchema(ctx); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo crear el índice de avisos: %v", err), "Main")
			}
		}
		return s, func() { _ = db.Disconnect() }, nil

	case config.StoreRedis:
		s, err := warnings.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StorePostgres:
		s, err := warnings.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StoreMemory:
		logger.Warn("Usando almacén en memoria, los avisos se pierden al reiniciar", "Main")
		return warnings.NewMemoryStore(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.StoreDriver)
}
