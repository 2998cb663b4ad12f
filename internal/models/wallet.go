package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	REASON_DAILY_REWARD = "daily_reward"

	ACTION_DAILY_REWARD = "daily_reward"
)

type UserWallet struct {
	bun.BaseModel `bun:"table:user_wallet"`
	UserID        string    `bun:"user_id,pk" json:"user_id"`
	Diamonds      int64     `bun:"diamonds" json:"diamonds"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,default:current_timestamp" json:"updated_at"`
}

// WalletGrant records every balance mutation; (user_id, action) is unique so
// the daily action "daily_reward:<bucket>" can never be inserted twice.
type WalletGrant struct {
	bun.BaseModel `bun:"table:wallet_grant"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	Amount        int64     `bun:"amount" json:"amount"`
	Reason        string    `bun:"reason" json:"reason"`
	Source        string    `bun:"source" json:"source"`
	Action        string    `bun:"action" json:"action"`
	DayBucket     string    `bun:"day_bucket" json:"day_bucket"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type DailyStat struct {
	bun.BaseModel `bun:"table:daily_stat"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	DayBucket     string    `bun:"day_bucket" json:"day_bucket"`
	TotalGrants   int64     `bun:"total_grants" json:"total_grants"`
	TotalDiamonds int64     `bun:"total_diamonds" json:"total_diamonds"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type WalletState struct {
	UserID       string     `json:"user_id"`
	Diamonds     int64      `json:"diamonds"`
	ClaimedToday bool       `json:"claimed_today"`
	NextClaimAt  time.Time  `json:"next_claim_at"`
	LastClaimAt  *time.Time `json:"last_claim_at"`
}

type GrantResult struct {
	Applied      bool       `json:"applied"`
	CoinsDelta   int64      `json:"coins_delta"`
	Diamonds     int64      `json:"diamonds"`
	ClaimedToday bool       `json:"claimed_today"`
	NextClaimAt  time.Time  `json:"next_claim_at"`
	LastClaimAt  *time.Time `json:"last_claim_at"`
	Reason       string     `json:"reason"`
	Source       string     `json:"source"`
}

// DailyClaim is the claim-ledger payload stored in redis until local midnight.
type DailyClaim struct {
	UserID    string    `msgpack:"user_id" json:"user_id"`
	DayBucket string    `msgpack:"day_bucket" json:"day_bucket"`
	ClaimedAt time.Time `msgpack:"claimed_at" json:"claimed_at"`
}

type LeaderboardItem struct {
	UserID   string `json:"user_id"`
	Diamonds int64  `json:"diamonds"`
	Rank     int    `json:"rank"`
}
