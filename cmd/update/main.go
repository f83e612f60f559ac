// Incremental update: fill the missing (entity, quarter) cells of an
// existing result workbook without touching values already present.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"dart_collector/pkg/core/collect"
	"dart_collector/pkg/core/config"
	"dart_collector/pkg/core/dart"
	"dart_collector/pkg/core/derive"
	"dart_collector/pkg/core/extract"
	"dart_collector/pkg/core/store"
)

func main() {
	file := flag.String("file", "", "workbook to update (required)")
	year := flag.Int("year", 0, "target year (required)")
	quarter := flag.Int("quarter", 0, "target quarter 1-4 (required)")
	noBackup := flag.Bool("no-backup", false, "skip the timestamped backup copy")
	configPath := flag.String("config", "config/keywords.yaml", "account keyword config (YAML)")
	maxCalls := flag.Int("max-api-calls", collect.DefaultMaxCalls, "retrieval budget for this run")
	cacheDir := flag.String("cache-dir", "", "statement cache directory (default .cache/dart/statements)")
	flag.Parse()

	if *file == "" || *year == 0 || *quarter == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, assuming environment variables are set")
	}

	apiKey := os.Getenv("DART_API_KEY")
	if apiKey == "" {
		log.Fatal("DART_API_KEY is not set")
	}

	ctx := context.Background()

	if err := store.InitDB(ctx); err != nil {
		log.Printf("running without database cache: %v", err)
	} else {
		defer store.Close()
	}

	cache := dart.NewStatementCache(store.GetPool(), *cacheDir)
	client := dart.NewClient(apiKey, cache)
	resolver := dart.NewCorpCodeResolver(apiKey, "", false)
	engine := derive.New(extract.New(config.LoadKeywords(*configPath)))
	collector := collect.NewCollector(resolver, client, engine, *maxCalls)
	updater := collect.NewUpdater(collector, store.NewExcelStore())

	if err := updater.UpdateMissing(ctx, *file, *year, *quarter, !*noBackup); err != nil {
		log.Fatalf("update failed: %v", err)
	}
}
