// attloader fills the attraction store from a CSV export or from
// synthetic data.
//
// Rows are embedded in batches through the shared provider chain (the
// embedding cache makes reloads cheap) and written as Redis hashes in
// the layout the API server reads.
//
// Usage:
//
//	attloader -csv seed/attractions.csv
//	attloader -generate 1000 -workers 8
package main

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/config"
	dbRedis "github.com/kailas-cloud/wayfarer/internal/db/redis"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	logpkg "github.com/kailas-cloud/wayfarer/internal/logger"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
	attractionrepo "github.com/kailas-cloud/wayfarer/internal/repository/attraction"
	budgetrepo "github.com/kailas-cloud/wayfarer/internal/repository/budget"
	"github.com/kailas-cloud/wayfarer/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/wayfarer/internal/transport/openai"
	budgetuc "github.com/kailas-cloud/wayfarer/internal/usecase/budget"
	embeddinguc "github.com/kailas-cloud/wayfarer/internal/usecase/embedding"
)

const providerName = "openai"

func main() {
	csvPath := flag.String("csv", "", "path to an attractions CSV export")
	generate := flag.Int("generate", 0, "generate N synthetic attractions instead of reading a CSV")
	workers := flag.Int("workers", 4, "concurrent embedding workers")
	batchSize := flag.Int("batch-size", 64, "attractions per embedding request")
	seed := flag.Int64("seed", 0, "random seed for -generate (0 = time-based)")
	flag.Parse()

	if (*csvPath == "") == (*generate == 0) {
		fmt.Fprintln(os.Stderr, "exactly one of -csv or -generate is required")
		flag.Usage()
		os.Exit(2)
	}
	if *batchSize <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "-workers and -batch-size must be positive")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	var attractions []domain.Attraction
	if *csvPath != "" {
		attractions, err = readCSV(*csvPath, logger)
		if err != nil {
			logger.Fatal("Failed to read CSV", zap.Error(err))
		}
		logger.Info("Loaded rows from CSV", zap.String("path", *csvPath), zap.Int("rows", len(attractions)))
	} else {
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		attractions = generateAttractions(*generate, rand.New(rand.NewSource(s)))
		logger.Info("Generated synthetic attractions", zap.Int("rows", len(attractions)), zap.Int64("seed", s))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	// The loader respects the same token budget as the API server.
	var budget *budgetuc.Tracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := budgetuc.ActionWarn
		if budgetCfg.Action == "reject" {
			action = budgetuc.ActionReject
		}
		budget = budgetuc.NewTracker(
			providerName, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		budget.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// Ingest embeds the raw field composition. The query instruction prefix
	// is a query-side concern and must not leak into stored vectors.
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   providerName,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, providerName, cfg.Embedding.Model, budgetChecker, logger)

	repo := attractionrepo.New(store, cfg.Embedding.Dimensions)

	start := time.Now()
	loaded, failed := loadAll(ctx, embedder, repo, attractions, *workers, *batchSize, logger)

	took := time.Since(start)
	logger.Info("Load complete",
		zap.Int64("loaded", loaded),
		zap.Int64("failed", failed),
		zap.Duration("took", took),
		zap.Float64("rows_per_sec", float64(loaded)/took.Seconds()),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

// loadAll embeds and stores attractions with a bounded worker pool.
func loadAll(
	ctx context.Context,
	embedder domain.Embedder,
	repo *attractionrepo.Repo,
	attractions []domain.Attraction,
	workers, batchSize int,
	logger *zap.Logger,
) (loaded, failed int64) {
	jobs := make(chan []domain.Attraction)

	var loadedN, failedN atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				if err := loadBatch(ctx, embedder, repo, batch); err != nil {
					logger.Error("Batch failed", zap.Int("size", len(batch)), zap.Error(err))
					failedN.Add(int64(len(batch)))
					continue
				}
				loadedN.Add(int64(len(batch)))
			}
		}()
	}

	for i := 0; i < len(attractions); i += batchSize {
		end := i + batchSize
		if end > len(attractions) {
			end = len(attractions)
		}
		jobs <- attractions[i:end]
	}
	close(jobs)
	wg.Wait()

	return loadedN.Load(), failedN.Load()
}

func loadBatch(
	ctx context.Context,
	embedder domain.Embedder,
	repo *attractionrepo.Repo,
	batch []domain.Attraction,
) error {
	texts := make([]string, len(batch))
	for i, a := range batch {
		texts[i] = a.EmbeddingText()
	}

	var res domain.BatchEmbeddingResult
	var err error
	if be, ok := embedder.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, embedder, texts)
	}
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(batch), len(res.Embeddings))
	}

	for i := range batch {
		batch[i].Embedding = res.Embeddings[i]
	}

	if err := repo.Put(ctx, batch); err != nil {
		return fmt.Errorf("store batch: %w", err)
	}
	return nil
}

// requiredColumns must be present and non-empty in every usable row.
// address may be missing; currency falls back to USD downstream.
var requiredColumns = []string{
	"city_name", "attraction_name", "attraction_type", "location",
	"price", "open_hours", "things_to_do",
}

// readCSV parses an attractions CSV export. Rows with missing required
// fields or an unparseable price are skipped with a warning, matching
// how partial exports are handled in practice.
func readCSV(path string, logger *zap.Logger) ([]domain.Attraction, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var attractions []domain.Attraction
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		skip := false
		for _, name := range requiredColumns {
			if field(rec, name) == "" {
				logger.Warn("Skipping row with missing field", zap.Int("line", line), zap.String("field", name))
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		price, err := strconv.ParseFloat(field(rec, "price"), 64)
		if err != nil {
			logger.Warn("Skipping row with invalid price",
				zap.Int("line", line), zap.String("price", field(rec, "price")))
			continue
		}

		name := field(rec, "attraction_name")
		city := field(rec, "city_name")
		attractions = append(attractions, domain.Attraction{
			ID:          attractionID(name, city),
			Name:        name,
			City:        city,
			Category:    field(rec, "attraction_type"),
			Location:    field(rec, "location"),
			Address:     field(rec, "address"),
			Price:       price,
			Currency:    field(rec, "currency"),
			OpenHours:   field(rec, "open_hours"),
			Description: field(rec, "things_to_do"),
		})
	}

	if len(attractions) == 0 {
		return nil, errors.New("no valid rows found")
	}
	return attractions, nil
}

// attractionID derives a stable ID from the attraction name and city,
// so reloading the same export overwrites records instead of duplicating them.
func attractionID(name, city string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + city))
	return hex.EncodeToString(sum[:6])
}
