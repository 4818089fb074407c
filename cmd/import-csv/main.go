package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"backlogr/internal/library"
	"backlogr/internal/sheet"
	"backlogr/pkg/database"
	"backlogr/pkg/utils"
)

func main() {
	var (
		src    = flag.String("src", "", "sheet CSV source (URL or local path); defaults to BACKLOGR_SHEET_URL")
		schema = flag.String("schema", "docs/schema.sql", "schema file to apply before import")
	)
	flag.Parse()

	cfg := utils.LoadConfig()
	locator := *src
	if locator == "" {
		locator = cfg.SheetURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.MigrateFrom(db, *schema); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	rows, err := sheet.NewReader().Fetch(ctx, locator)
	if err != nil {
		log.Fatalf("fetch sheet failed: %v", err)
	}

	games, err := sheet.Normalize(rows)
	if err != nil {
		log.Fatalf("normalize failed: %v", err)
	}

	runID := uuid.NewString()
	repo := library.NewRepo(db)
	if err := repo.SaveSnapshot(ctx, runID, games); err != nil {
		log.Fatalf("save snapshot failed: %v", err)
	}

	log.Printf("✅ imported %d games from %s (run %s)", len(games), locator, runID)
}
