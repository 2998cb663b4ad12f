package main

import (
	"context"
	"log"
	"time"

	"gemrush/internal/datastore"
	"gemrush/internal/datastore/redis_store"
	"gemrush/internal/pkg/dayclock"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

// runs a minute after local midnight, once the previous day bucket is closed
const rolloverSchedule = "1 0 * * *"

type RolloverJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
	Clock *dayclock.Clock
}

func NewRolloverJob(redis redis.UniversalClient, db *bun.DB, clock *dayclock.Clock) *RolloverJob {
	return &RolloverJob{
		Redis: redis,
		Db:    db,
		Clock: clock,
	}
}

func (j *RolloverJob) Start(cronRunner *cron.Cron) {
	_, err := cronRunner.AddFunc(rolloverSchedule, j.runScheduledTask)
	log.Println("Rollover cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", rolloverSchedule, err)
	j.rebuildLeaderboard()
}

func (j *RolloverJob) runScheduledTask() {
	ctx := context.Background()

	yesterday := j.Clock.Bucket(j.Clock.Now().AddDate(0, 0, -1))
	log.Println("Rolling up grants for:", yesterday)

	stat, err := datastore.SumGrantsByDay(ctx, j.Db, yesterday)
	if err != nil {
		log.Println(err)
		return
	}

	err = datastore.UpsertDailyStat(ctx, j.Db, stat)
	if err != nil {
		log.Println(err)
		return
	}

	log.Println("Rolled up", stat.TotalGrants, "grants /", stat.TotalDiamonds, "diamonds")
	j.rebuildLeaderboard()
}

func (j *RolloverJob) rebuildLeaderboard() {
	ctx := context.Background()
	limit := 100
	offset := 0

	err := redis_store.ClearWalletLeaderboard(ctx, j.Redis)
	if err != nil {
		log.Println(err)
		return
	}

	for {
		wallets, err := datastore.TopWallets(ctx, j.Db, limit, offset)
		offset += limit
		if err != nil {
			log.Println(err)
			return
		}

		if len(wallets) == 0 {
			log.Println("Leaderboard rebuilt")
			break
		}

		for _, wallet := range wallets {
			err = redis_store.SetWalletLeaderboard(ctx, j.Redis, wallet)
			if err != nil {
				log.Println(err)
			}
		}
	}
}
