package main

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/persistence"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository/memstore"
)

type stores struct {
	users    repository.UserRepository
	tokens   repository.TokenStore
	products repository.ProductRepository
	services repository.ServiceItemRepository
	worships repository.OnlineWorshipRepository
	orders   repository.OrderRepository
}

// buildStores uses Postgres when a pool exists and the in-memory store
// otherwise. The token registry can be moved to Redis or memory on its own.
func buildStores(cfg config.AuthConfig, pg *persistence.Postgres, rdb *persistence.Redis, logger *zap.Logger) (stores, error) {
	var s stores
	var mem *memstore.Store
	if pg.Enabled() {
		pool := pg.PoolHandle()
		s = stores{
			users:    repository.NewUserRepository(pool),
			tokens:   repository.NewTokenRepository(pool),
			products: repository.NewProductRepository(pool),
			services: repository.NewServiceItemRepository(pool),
			worships: repository.NewOnlineWorshipRepository(pool),
			orders:   repository.NewOrderRepository(pool),
		}
	} else {
		mem = memstore.New()
		s = stores{
			users:    mem.Users(),
			tokens:   mem.Tokens(),
			products: mem.Products(),
			services: mem.Services(),
			worships: mem.Worships(),
			orders:   mem.Orders(),
		}
	}

	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		if !rdb.Enabled() {
			return stores{}, errors.New("redis token store selected but redis is not configured")
		}
		s.tokens = repository.NewRedisTokenStore(rdb.Client)
	case config.TokenStoreMemory:
		if mem == nil {
			mem = memstore.New()
		}
		s.tokens = mem.Tokens()
	}
	logger.Info("stores ready",
		zap.Bool("postgres", pg.Enabled()),
		zap.String("token_store", cfg.TokenStore))
	return s, nil
}
