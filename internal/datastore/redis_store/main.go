package redis_store

import (
	"context"
	"fmt"
	"time"

	"gemrush/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyDailyClaim(userID string, dayBucket string) string {
	return fmt.Sprintf("wallet:daily_claim:%s:%s", userID, dayBucket)
}

func dbKeyDailySpend(userID string, dayBucket string) string {
	return fmt.Sprintf("wallet:daily_spend:%s:%s", userID, dayBucket)
}

func dbKeyWalletLeaderboard() string {
	return "wallet:leaderboard"
}

// TryDailyClaim atomically creates the claim record for (user, day) and
// reports whether this call won. The record expires at local midnight so the
// next bucket starts clean without any sweeper.
func TryDailyClaim(ctx context.Context, cmd redis.Cmdable, claim *models.DailyClaim, ttl time.Duration) (bool, error) {
	b, err := msgpack.Marshal(claim)
	if err != nil {
		return false, err
	}

	return cmd.SetNX(ctx, dbKeyDailyClaim(claim.UserID, claim.DayBucket), b, ttl).Result()
}

// PeekDailyClaim reads the claim record without mutating anything. Absent
// records surface as redis.Nil.
func PeekDailyClaim(ctx context.Context, cmd redis.Cmdable, userID string, dayBucket string) (*models.DailyClaim, error) {
	b, err := cmd.Get(ctx, dbKeyDailyClaim(userID, dayBucket)).Bytes()
	if err != nil {
		return nil, err
	}

	var claim models.DailyClaim
	err = msgpack.Unmarshal(b, &claim)
	if err != nil {
		return nil, err
	}

	return &claim, nil
}

// AddDailySpend adds amount to the user's day-bucket counter and returns the
// new total. The key gets its TTL on first write so the window clears itself
// at midnight.
func AddDailySpend(ctx context.Context, cmd redis.Cmdable, userID string, dayBucket string, amount int64, ttl time.Duration) (int64, error) {
	total, err := cmd.IncrBy(ctx, dbKeyDailySpend(userID, dayBucket), amount).Result()
	if err != nil {
		return 0, err
	}

	if total == amount {
		err = cmd.Expire(ctx, dbKeyDailySpend(userID, dayBucket), ttl).Err()
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// RevertDailySpend compensates a rejected grant so the quota window only
// counts diamonds that were actually applied.
func RevertDailySpend(ctx context.Context, cmd redis.Cmdable, userID string, dayBucket string, amount int64) error {
	return cmd.DecrBy(ctx, dbKeyDailySpend(userID, dayBucket), amount).Err()
}

func GetDailySpend(ctx context.Context, cmd redis.Cmdable, userID string, dayBucket string) (int64, error) {
	total, err := cmd.Get(ctx, dbKeyDailySpend(userID, dayBucket)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return total, nil
}

func SetWalletLeaderboard(ctx context.Context, cmd redis.Cmdable, wallet *models.UserWallet) error {
	return cmd.ZAdd(ctx, dbKeyWalletLeaderboard(), redis.Z{
		Score:  float64(wallet.Diamonds),
		Member: wallet.UserID,
	}).Err()
}

func ClearWalletLeaderboard(ctx context.Context, cmd redis.Cmdable) error {
	return cmd.Del(ctx, dbKeyWalletLeaderboard()).Err()
}

func GetWalletLeaderboard(ctx context.Context, cmd redis.Cmdable, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyWalletLeaderboard(), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		results = append(results, &models.LeaderboardItem{
			UserID:   item.Member.(string),
			Diamonds: int64(item.Score),
			Rank:     i + 1,
		})
	}

	return results, nil
}
