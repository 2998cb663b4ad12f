package datastore

import (
	"context"

	"gemrush/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDailyStat(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyStat)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyStat)(nil)).Index("index_daily_stat_day_bucket").IfNotExists().Unique().Column("day_bucket").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func SumGrantsByDay(ctx context.Context, db *bun.DB, dayBucket string) (*models.DailyStat, error) {
	var stat models.DailyStat
	err := db.NewSelect().
		ColumnExpr("COUNT(*) as total_grants").
		ColumnExpr("COALESCE(SUM(amount), 0) as total_diamonds").
		TableExpr("wallet_grant").
		Where("day_bucket = ?", dayBucket).
		Scan(ctx, &stat)
	if err != nil {
		return nil, err
	}

	stat.DayBucket = dayBucket
	return &stat, nil
}

func UpsertDailyStat(ctx context.Context, db *bun.DB, stat *models.DailyStat) error {
	_, err := db.NewInsert().
		Model(stat).
		On("CONFLICT (day_bucket) DO UPDATE").
		Set("total_grants = EXCLUDED.total_grants").
		Set("total_diamonds = EXCLUDED.total_diamonds").
		Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}
