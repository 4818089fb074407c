package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"backlogr/internal/library"
	"backlogr/pkg/database"
)

func main() {
	var (
		out   = flag.String("out", "data/library.csv", "output CSV path")
		runID = flag.String("run", "", "run id to export (defaults to the latest import)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	repo := library.NewRepo(db)

	run := *runID
	if run == "" {
		latest, err := repo.LatestRunID(ctx)
		if err != nil {
			log.Fatalf("find latest run failed: %v", err)
		}
		if latest == "" {
			log.Fatal("no snapshot in database; run import-csv first")
		}
		run = latest
	}

	games, err := repo.LoadSnapshot(ctx, run)
	if err != nil {
		log.Fatalf("load snapshot failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output dir failed: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create output file failed: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "platform", "price", "status", "hours"}); err != nil {
		log.Fatalf("write header failed: %v", err)
	}

	for _, g := range games {
		if err := w.Write([]string{
			strconv.Itoa(g.ID),
			g.Title,
			g.Platform,
			strconv.FormatFloat(g.Price, 'f', 2, 64),
			g.Status,
			strconv.FormatFloat(g.Hours, 'f', 1, 64),
		}); err != nil {
			log.Fatalf("write row failed: %v", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush failed: %v", err)
	}

	log.Printf("✅ exported %d games (run %s) to %s", len(games), run, *out)
}
