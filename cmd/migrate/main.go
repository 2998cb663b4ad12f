package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"

	"gemrush/internal/datastore"
	"gemrush/internal/models"
	"gemrush/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandSeedConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserWallet(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableWalletGrant(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDailyStat(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandSeedConfig() *cli.Command {
	return &cli.Command{
		Name: "seed-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			defaults := []models.Config{
				{Key: services.CONFIG_DAILY_REWARD_AMOUNT, Value: strconv.Itoa(services.DEFAULT_DAILY_REWARD_AMOUNT)},
				{Key: services.CONFIG_DAILY_GRANT_CAP, Value: strconv.Itoa(services.DEFAULT_DAILY_GRANT_CAP)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.DEFAULT_LEADERBOARD_LIMIT)},
			}

			for _, config := range defaults {
				err = datastore.InsertConfig(ctx, db, config)
				if err != nil {
					log.Fatal(err)
				}
			}

			log.Println("config seeded")
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
