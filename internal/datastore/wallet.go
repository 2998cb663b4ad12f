package datastore

import (
	"context"
	"time"

	"gemrush/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserWallet(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserWallet)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserWallet)(nil)).Index("index_user_wallet_diamonds").IfNotExists().Column("diamonds").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableWalletGrant(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WalletGrant)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WalletGrant)(nil)).Index("index_wallet_grant_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WalletGrant)(nil)).Index("index_wallet_grant_user_id_action").IfNotExists().Unique().Column("user_id", "action").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WalletGrant)(nil)).Index("index_wallet_grant_day_bucket").IfNotExists().Column("day_bucket").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserWallet(ctx context.Context, db *bun.DB, userID string) (*models.UserWallet, error) {
	var wallet models.UserWallet
	err := db.NewSelect().Model(&wallet).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

// IncrementUserWallet applies the delta in a single upsert statement so
// concurrent increments on the same user never lose updates. The returned
// wallet carries the post-increment balance.
func IncrementUserWallet(ctx context.Context, db *bun.DB, userID string, delta int64) (*models.UserWallet, error) {
	now := time.Now()
	wallet := &models.UserWallet{
		UserID:    userID,
		Diamonds:  delta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.NewInsert().
		Model(wallet).
		On("CONFLICT (user_id) DO UPDATE").
		Set("diamonds = user_wallet.diamonds + EXCLUDED.diamonds").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("diamonds").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// InsertWalletGrant reports whether the row was actually inserted; the daily
// action conflicts on (user_id, action) and must not be applied twice.
func InsertWalletGrant(ctx context.Context, db *bun.DB, grant *models.WalletGrant) (bool, error) {
	res, err := db.NewInsert().Model(grant).On("CONFLICT (user_id, action) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func GetWalletGrantsByUser(ctx context.Context, db *bun.DB, userID string, limit, offset int) ([]*models.WalletGrant, error) {
	var grants []*models.WalletGrant
	err := db.NewSelect().Model(&grants).Where("user_id = ?", userID).OrderExpr("created_at DESC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return grants, nil
}

func TopWallets(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.UserWallet, error) {
	var wallets []*models.UserWallet
	err := db.NewSelect().Model(&wallets).OrderExpr("diamonds DESC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return wallets, nil
}
