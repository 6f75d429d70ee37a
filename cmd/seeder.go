package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/attendance-management/internal/seed"
	"github.com/frahmantamala/attendance-management/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data and initial accounts",
	Long:  `Insert departments, positions, roles and the initial admin (0001) and employee (1001) accounts. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		seeder := seed.NewSeeder(db, cfg.Security.BCryptCost, lg)

		if clearData {
			if err := seeder.Clear(ctx); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
		}

		if _, err := seeder.Run(ctx, seed.Default()); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	},
}
