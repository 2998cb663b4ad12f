package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDailyRewardClaimed = errors.New("daily reward already claimed today")
var ErrDailyCapExceeded = errors.New("daily grant cap exceeded")
var ErrDailyClaimLock = errors.New("daily claim locked")
var ErrIdentityResolution = errors.New("code2session failed")

const (
	CONFIG_DAILY_REWARD_AMOUNT = "DAILY_REWARD_AMOUNT"
	CONFIG_DAILY_GRANT_CAP     = "DAILY_GRANT_CAP"
	CONFIG_LEADERBOARD_LIMIT   = "LEADERBOARD_LIMIT"

	DEFAULT_DAILY_REWARD_AMOUNT = 50
	DEFAULT_DAILY_GRANT_CAP     = 10000
	DEFAULT_LEADERBOARD_LIMIT   = 20

	DEFAULT_WALLET_TIMEZONE = "Asia/Shanghai"

	WALLET_ADD_RATE_LIMIT_PER_MINUTE = 60

	CACHE_TTL_5_SECONDS = 5 * time.Second
	CACHE_TTL_1_MIN     = 1 * time.Minute
	CACHE_TTL_5_MINS    = 5 * time.Minute

	DOUYIN_API_BASE_URL = "https://developer.toutiao.com"
)

func LockKeyDailyClaim(userID string, dayBucket string) string {
	return fmt.Sprintf("lock:daily-claim:%s:%s", userID, dayBucket)
}

// db
func DBKeyUserWallet(userID string) string {
	return fmt.Sprintf("user_wallet:%s", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyLeaderboard(limit int) string {
	return fmt.Sprintf("wallet_leaderboard:%d", limit)
}

func LimitKeyWalletAdd(userID string) string {
	return fmt.Sprintf("limit:wallet_add:%s", userID)
}
