package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"dart_collector/pkg/core/collect"
	"dart_collector/pkg/core/config"
	"dart_collector/pkg/core/dart"
	"dart_collector/pkg/core/derive"
	"dart_collector/pkg/core/extract"
	"dart_collector/pkg/core/store"
)

const (
	defaultStartYear   = 2015
	defaultEndYear     = 2025
	defaultCompanyFile = "data/target_companies.txt"
	defaultConfigFile  = "config/keywords.yaml"
)

var defaultCompanies = []string{"삼성전자", "SK하이닉스", "LG에너지솔루션", "현대차", "NAVER"}

func main() {
	startYear := flag.Int("start-year", defaultStartYear, "first fiscal year to collect")
	endYear := flag.Int("end-year", defaultEndYear, "last fiscal year to collect (inclusive)")
	companies := flag.String("companies", "", "comma-separated entity names (overrides the company file)")
	companyFile := flag.String("company-file", defaultCompanyFile, "file with one entity name per line")
	output := flag.String("output", "", "output workbook path (default output/financial_data_<start>_<end>.xlsx)")
	configPath := flag.String("config", defaultConfigFile, "account keyword config (YAML)")
	maxCalls := flag.Int("max-api-calls", collect.DefaultMaxCalls, "retrieval budget for this run")
	cacheDir := flag.String("cache-dir", "", "statement cache directory (default .cache/dart/statements)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, assuming environment variables are set")
	}

	apiKey := os.Getenv("DART_API_KEY")
	if apiKey == "" {
		log.Fatal("DART_API_KEY is not set")
	}

	names := loadCompanies(*companies, *companyFile)
	if len(names) == 0 {
		log.Fatal("no target companies")
	}

	outPath := *output
	if outPath == "" {
		outPath = fmt.Sprintf("output/financial_data_%d_%d.xlsx", *startYear, *endYear)
	}

	ctx := context.Background()

	// Postgres is optional: without DATABASE_URL the statement cache
	// falls back to JSON files.
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

	fmt.Printf("🚀 collecting %d entities, %d-%d\n", len(names), *startYear, *endYear)
	sheets, summary := collector.CollectRange(ctx, names, *startYear, *endYear)

	if err := store.NewExcelStore().Write(outPath, sheets); err != nil {
		log.Fatalf("failed to save results: %v", err)
	}
	fmt.Printf("✅ saved %s (run %s: %d processed, %d skipped, %d calls)\n",
		outPath, summary.RunID, summary.Processed, summary.Skipped, summary.Calls)
	if summary.Exhausted {
		fmt.Println("⚠️  call budget was exhausted; results are partial")
	}
}

// loadCompanies prefers the -companies flag, then the company file. A
// missing file is seeded with the default list so the next run is
// reproducible.
func loadCompanies(csv, path string) []string {
	if csv != "" {
		var names []string
		for _, n := range strings.Split(csv, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return names
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("company file %s not found, seeding defaults", path)
		writeDefaultCompanies(path)
		return defaultCompanies
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return defaultCompanies
	}
	return names
}

func writeDefaultCompanies(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte(strings.Join(defaultCompanies, "\n")+"\n"), 0644)
}
