package services

import (
	"context"

	"gemrush/internal/datastore/redis_store"
	"gemrush/internal/models"
	"gemrush/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

type ServiceLeaderboard struct {
	container *do.Injector
	redisDB   redis.UniversalClient
	cache     caching.Cache

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, db, cache, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context) ([]*models.LeaderboardItem, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)

	callback := func() ([]*models.LeaderboardItem, error) {
		return redis_store.GetWalletLeaderboard(ctx, service.redisDB, limit)
	}

	return caching.UseCache(ctx, service.cache, DBKeyLeaderboard(limit), CACHE_TTL_5_SECONDS, callback)
}
