package main

import (
	"context"
	"fmt"
	"log"

	"skylark/internal/api"
	"skylark/internal/config"
	"skylark/internal/model"
	"skylark/internal/pg"
	"skylark/internal/seed"
)

func main() {
	cfg := config.LoadWithPath("skylark.json")
	if cfg.DBURL == "" {
		log.Fatal("no database URL configured (set -db or SKYLARK_DB_URL)")
	}

	// 1. Resolve the entity schema
	schema, err := model.New()
	if err != nil {
		log.Fatalf("schema resolution failed: %v", err)
	}
	fmt.Printf("Resolved %d entity types\n", len(schema.Model.Types()))

	// 2. Open the database
	pool, err := pg.Open(cfg.DBURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	db := pg.New(pool)

	// 3. Install tables
	if cfg.AutoMigrate {
		if err := pg.Install(db, schema.Model); err != nil {
			log.Fatalf("install failed: %v", err)
		}
	}

	// 4. Seed rows
	if cfg.SeedDir != "" {
		files, err := seed.LoadDir(cfg.SeedDir)
		if err != nil {
			log.Fatalf("seed load failed: %v", err)
		}
		if err := seed.Apply(context.Background(), db, schema.Model, files); err != nil {
			log.Fatalf("seed apply failed: %v", err)
		}
		fmt.Printf("Seeded %d file(s)\n", len(files))
	}

	// 5. Serve
	fmt.Printf("Starting skylark on :%s...\n", cfg.Port)
	api.RunServer(":"+cfg.Port, api.NewHandle(schema.Model, db))
}
