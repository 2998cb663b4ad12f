package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"gemrush/internal/datastore"
	"gemrush/internal/datastore/redis_store"
	"gemrush/internal/models"
	"gemrush/internal/pkg/caching"
	"gemrush/internal/pkg/dayclock"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceWallet struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	postgresDB *bun.DB
	cache      caching.Cache
	rs         *redsync.Redsync
	clock      *dayclock.Clock

	serviceConfig *ServiceConfig
}

func NewServiceWallet(container *do.Injector) (*ServiceWallet, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	clock, err := do.Invoke[*dayclock.Clock](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceWallet{container, db, postgresDB, cache, rs, clock, serviceConfig}, nil
}

func (service *ServiceWallet) GetWalletState(ctx context.Context, userID string) (*models.WalletState, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("missing user id"), errorx.Invalid)
	}

	diamonds, err := service.GetDiamonds(ctx, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	now := service.clock.Now()
	claim, err := redis_store.PeekDailyClaim(ctx, service.redisDB, userID, service.clock.Bucket(now))
	if err != nil && err != redis.Nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	state := &models.WalletState{
		UserID:      userID,
		Diamonds:    diamonds,
		NextClaimAt: service.clock.NextMidnight(now),
	}
	if claim != nil {
		state.ClaimedToday = true
		claimedAt := claim.ClaimedAt
		state.LastClaimAt = &claimedAt
	}

	return state, nil
}

func (service *ServiceWallet) GetDiamonds(ctx context.Context, userID string) (int64, error) {
	callback := func() (int64, error) {
		wallet, err := datastore.FindUserWallet(ctx, service.postgresDB, userID)
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		return wallet.Diamonds, nil
	}

	return caching.UseCache(ctx, service.cache, DBKeyUserWallet(userID), CACHE_TTL_1_MIN, callback)
}

// GrantReward applies a balance grant. The daily_reward reason is rate
// limited to one grant per user per local day and its amount is fixed by
// server policy; every other reason applies the client amount verbatim after
// validation, subject to the cumulative day cap.
func (service *ServiceWallet) GrantReward(ctx context.Context, userID string, amount int64, reason string, source string) (*models.GrantResult, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("missing user id"), errorx.Invalid)
	}

	if reason == models.REASON_DAILY_REWARD {
		return service.grantDailyReward(ctx, userID, source)
	}

	return service.grantDirect(ctx, userID, amount, reason, source)
}

func (service *ServiceWallet) grantDailyReward(ctx context.Context, userID string, source string) (*models.GrantResult, error) {
	now := service.clock.Now()
	bucket := service.clock.Bucket(now)

	mutex := service.rs.NewMutex(LockKeyDailyClaim(userID, bucket))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrDailyClaimLock, errorx.Invalid)
	}

	// nolint:errcheck
	defer mutex.Unlock()

	claim := &models.DailyClaim{
		UserID:    userID,
		DayBucket: bucket,
		ClaimedAt: now,
	}

	// SetNX is the arbiter: exactly one request per (user, day) creates the
	// claim record, everyone else loses without mutating anything.
	won, err := redis_store.TryDailyClaim(ctx, service.redisDB, claim, service.clock.UntilMidnight(now))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !won {
		result, err := service.currentResult(ctx, userID, models.REASON_DAILY_REWARD, source)
		if err != nil {
			return nil, err
		}
		return result, ErrDailyRewardClaimed
	}

	rewardAmount, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_REWARD_AMOUNT, DEFAULT_DAILY_REWARD_AMOUNT)

	grant := &models.WalletGrant{
		UserID:    userID,
		Amount:    int64(rewardAmount),
		Reason:    models.REASON_DAILY_REWARD,
		Source:    source,
		Action:    fmt.Sprintf("%s:%s", models.ACTION_DAILY_REWARD, bucket),
		DayBucket: bucket,
	}

	inserted, err := datastore.InsertWalletGrant(ctx, service.postgresDB, grant)
	if err != nil {
		// claim record stays; losing this one grant is the accepted bounded
		// inconsistency, a duplicate grant is not
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !inserted {
		result, err := service.currentResult(ctx, userID, models.REASON_DAILY_REWARD, source)
		if err != nil {
			return nil, err
		}
		return result, ErrDailyRewardClaimed
	}

	wallet, err := service.applyIncrement(ctx, userID, int64(rewardAmount))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	claimedAt := now
	return &models.GrantResult{
		Applied:      true,
		CoinsDelta:   int64(rewardAmount),
		Diamonds:     wallet.Diamonds,
		ClaimedToday: true,
		NextClaimAt:  service.clock.NextMidnight(now),
		LastClaimAt:  &claimedAt,
		Reason:       models.REASON_DAILY_REWARD,
		Source:       source,
	}, nil
}

func (service *ServiceWallet) grantDirect(ctx context.Context, userID string, amount int64, reason string, source string) (*models.GrantResult, error) {
	if amount <= 0 {
		return nil, errorx.Wrap(errors.New("amount must be a positive number"), errorx.Invalid)
	}

	now := service.clock.Now()
	bucket := service.clock.Bucket(now)

	dailyCap, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_GRANT_CAP, DEFAULT_DAILY_GRANT_CAP)
	if dailyCap > 0 {
		total, err := redis_store.AddDailySpend(ctx, service.redisDB, userID, bucket, amount, service.clock.UntilMidnight(now))
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		if total > int64(dailyCap) {
			if err := redis_store.RevertDailySpend(ctx, service.redisDB, userID, bucket, amount); err != nil {
				log.Println(err)
			}
			return nil, errorx.Wrap(ErrDailyCapExceeded, errorx.Validation)
		}
	}

	label := reason
	if label == "" {
		label = "grant"
	}

	grant := &models.WalletGrant{
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		Source:    source,
		Action:    fmt.Sprintf("%s:%s", label, uuid.New().String()),
		DayBucket: bucket,
	}

	if _, err := datastore.InsertWalletGrant(ctx, service.postgresDB, grant); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	wallet, err := service.applyIncrement(ctx, userID, amount)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	claim, err := redis_store.PeekDailyClaim(ctx, service.redisDB, userID, bucket)
	if err != nil && err != redis.Nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	result := &models.GrantResult{
		Applied:     true,
		CoinsDelta:  amount,
		Diamonds:    wallet.Diamonds,
		NextClaimAt: service.clock.NextMidnight(now),
		Reason:      reason,
		Source:      source,
	}
	if claim != nil {
		result.ClaimedToday = true
		claimedAt := claim.ClaimedAt
		result.LastClaimAt = &claimedAt
	}

	return result, nil
}

func (service *ServiceWallet) applyIncrement(ctx context.Context, userID string, delta int64) (*models.UserWallet, error) {
	wallet, err := datastore.IncrementUserWallet(ctx, service.postgresDB, userID, delta)
	if err != nil {
		return nil, err
	}

	err = service.cache.Delete(ctx, DBKeyUserWallet(userID))
	if err != nil {
		log.Println(err)
	}

	err = redis_store.SetWalletLeaderboard(ctx, service.redisDB, wallet)
	if err != nil {
		log.Println(err)
	}

	return wallet, nil
}

func (service *ServiceWallet) currentResult(ctx context.Context, userID string, reason string, source string) (*models.GrantResult, error) {
	state, err := service.GetWalletState(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.GrantResult{
		Applied:      false,
		CoinsDelta:   0,
		Diamonds:     state.Diamonds,
		ClaimedToday: state.ClaimedToday,
		NextClaimAt:  state.NextClaimAt,
		LastClaimAt:  state.LastClaimAt,
		Reason:       reason,
		Source:       source,
	}, nil
}
