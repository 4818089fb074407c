package utils

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default Google Sheets CSV export of the demo library. Override with
// BACKLOGR_SHEET_URL; a local file path works too.
const defaultSheetURL = "https://docs.google.com/spreadsheets/d/1x0zCLkBLpcGFXCJhe239hoMEtccLDpxFLIdgDxHb6x8/export?format=csv"

type Config struct {
	Addr       string
	SheetURL   string
	RAWGAPIKey string
	CoverTTL   time.Duration
	QueueDelay time.Duration
}

// LoadConfig reads configuration from the environment, with .env as a
// convenience for local runs. A missing RAWG key is a warning, not an
// error: cover resolution degrades to "no image" for every title while
// ingestion keeps working.
func LoadConfig() Config {
	_ = godotenv.Load() // .env is optional

	cfg := Config{
		Addr:       getEnv("BACKLOGR_ADDR", ":8080"),
		SheetURL:   getEnv("BACKLOGR_SHEET_URL", defaultSheetURL),
		RAWGAPIKey: os.Getenv("BACKLOGR_RAWG_API_KEY"),
		CoverTTL:   getDuration("BACKLOGR_COVER_TTL_HOURS", 7*24*time.Hour),
		QueueDelay: getMillis("BACKLOGR_QUEUE_DELAY_MS", 200*time.Millisecond),
	}

	if cfg.RAWGAPIKey == "" {
		log.Println("[config] WARNING: BACKLOGR_RAWG_API_KEY is not set; covers will resolve to no image")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours <= 0 {
		return def
	}
	return time.Duration(hours) * time.Hour
}

func getMillis(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
