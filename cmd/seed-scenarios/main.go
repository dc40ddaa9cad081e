package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/database"
	"github.com/stemsi/clinsim-backend/internal/logger"
	"github.com/stemsi/clinsim-backend/internal/repository"
	"github.com/stemsi/clinsim-backend/internal/scenario"
)

func main() {
	var category string
	flag.StringVar(&category, "category", "", "Only seed scenarios of this category")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewScenarioRepository(pool)

	fmt.Println("=== Seeding Scenarios ===")

	seeded := 0
	for _, s := range scenario.DefaultCatalog().Scenarios() {
		if category != "" && !strings.EqualFold(s.Category, category) {
			continue
		}
		if err := repo.Upsert(ctx, s); err != nil {
			log.Fatal().Err(err).Str("scenario", s.ID).Msg("Failed to upsert scenario")
		}
		fmt.Printf("Upserted %s (%s, %ds)\n", s.ID, s.Difficulty, s.TimeLimitSeconds)
		seeded++
	}

	fmt.Printf("Done. %d scenarios seeded.\n", seeded)
}
