package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	_ "time/tzdata"

	"gemrush/internal/datastore"
	"gemrush/internal/models"
	"gemrush/internal/pkg/caching"
	"gemrush/internal/pkg/dayclock"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestContainer(t *testing.T) *do.Injector {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableUserWallet(ctx, db))
	require.NoError(t, datastore.CreateTableWalletGrant(ctx, db))
	require.NoError(t, datastore.CreateTableDailyStat(ctx, db))
	require.NoError(t, datastore.CreateTableConfig(ctx, db))

	injector := do.New()
	do.ProvideNamedValue[redis.UniversalClient](injector, "redis-db", client)
	do.ProvideNamedValue[redis.UniversalClient](injector, "redis-cache", client)
	do.ProvideNamedValue[redis.UniversalClient](injector, "redis-mutex", client)
	do.ProvideValue[*bun.DB](injector, db)

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		return caching.NewCacheRedis(client, false)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		pool := goredis.NewPool(client)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*dayclock.Clock, error) {
		return dayclock.New(DEFAULT_WALLET_TIMEZONE)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceConfig, error) {
		return NewServiceConfig(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceWallet, error) {
		return NewServiceWallet(i)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceLeaderboard, error) {
		return NewServiceLeaderboard(i)
	})

	return injector
}

func TestGetWalletStateFresh(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Diamonds)
	assert.False(t, state.ClaimedToday)
	assert.Nil(t, state.LastClaimAt)
	assert.True(t, state.NextClaimAt.After(service.clock.Now()))
}

func TestGetWalletStateMissingUser(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	_, err := service.GetWalletState(ctx, "")
	assert.Error(t, err)
}

func TestDailyRewardIgnoresClientAmount(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	// the client-supplied amount must never leak into the daily path
	result, err := service.GrantReward(ctx, "openid-1", 9999, models.REASON_DAILY_REWARD, "checkin")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, int64(DEFAULT_DAILY_REWARD_AMOUNT), result.CoinsDelta)
	assert.Equal(t, int64(DEFAULT_DAILY_REWARD_AMOUNT), result.Diamonds)
	assert.True(t, result.ClaimedToday)
	require.NotNil(t, result.LastClaimAt)
}

func TestDailyRewardSecondClaimRejected(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	_, err := service.GrantReward(ctx, "openid-1", 0, models.REASON_DAILY_REWARD, "checkin")
	require.NoError(t, err)

	result, err := service.GrantReward(ctx, "openid-1", 0, models.REASON_DAILY_REWARD, "checkin")
	require.ErrorIs(t, err, ErrDailyRewardClaimed)
	require.NotNil(t, result)
	assert.False(t, result.Applied)
	assert.Equal(t, int64(0), result.CoinsDelta)
	assert.Equal(t, int64(DEFAULT_DAILY_REWARD_AMOUNT), result.Diamonds)
	assert.True(t, result.ClaimedToday)

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(DEFAULT_DAILY_REWARD_AMOUNT), state.Diamonds)
}

func TestDirectGrantAppliesAmountVerbatim(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	result, err := service.GrantReward(ctx, "openid-1", 30, "task", "quest-3")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, int64(30), result.CoinsDelta)
	assert.Equal(t, int64(30), result.Diamonds)
	assert.False(t, result.ClaimedToday)

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), state.Diamonds)
	assert.False(t, state.ClaimedToday)

	// repeated non-daily grants accumulate
	result, err = service.GrantReward(ctx, "openid-1", 12, "task", "quest-4")
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Diamonds)
}

func TestDirectGrantRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	_, err := service.GrantReward(ctx, "openid-1", -5, "task", "")
	assert.Error(t, err)

	_, err = service.GrantReward(ctx, "openid-1", 0, "task", "")
	assert.Error(t, err)

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Diamonds)
}

func TestDirectGrantDailyCap(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	db := do.MustInvoke[*bun.DB](container)
	require.NoError(t, datastore.InsertConfig(ctx, db, models.Config{
		Key:   CONFIG_DAILY_GRANT_CAP,
		Value: strconv.Itoa(100),
	}))

	_, err := service.GrantReward(ctx, "openid-1", 80, "task", "")
	require.NoError(t, err)

	_, err = service.GrantReward(ctx, "openid-1", 30, "task", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "daily grant cap")

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(80), state.Diamonds)

	// the rejected amount must not consume quota
	_, err = service.GrantReward(ctx, "openid-1", 20, "task", "")
	require.NoError(t, err)
}

func TestConcurrentDailyClaimsSingleWinner(t *testing.T) {
	ctx := context.Background()
	container := newTestContainer(t)
	service := do.MustInvoke[*ServiceWallet](container)

	const n = 12

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.GrantReward(ctx, "openid-1", 1, models.REASON_DAILY_REWARD, "checkin")
			errs[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	losses := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrDailyRewardClaimed):
			losses++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, losses)

	state, err := service.GetWalletState(ctx, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(DEFAULT_DAILY_REWARD_AMOUNT), state.Diamonds)
}
