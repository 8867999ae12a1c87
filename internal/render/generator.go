package render

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"hstin/sdf2bsdf/internal/colormap"
	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/internal/ctxlog"
	"hstin/sdf2bsdf/internal/db"
)

// Generate converts every input in cfg and returns the first error seen.
// Setup errors abort before any conversion starts; a failing conversion
// does not stop the others.
func Generate(ctx context.Context, cfg *config.Config) error {
	logger := ctxlog.FromContext(ctx)
	startTime := time.Now()

	outputDir := cfg.OutputDir
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine current directory: %w", err)
		}
		outputDir = wd
	}

	var cmap *colormap.Map
	if cfg.Preview {
		if cfg.ColorMap != "" {
			logger.Debug("Loading color map", "file", cfg.ColorMap)
			m, err := colormap.Load(cfg.ColorMap)
			if err != nil {
				return fmt.Errorf("failed to load color map: %w", err)
			}
			cmap = m
		} else {
			cmap = colormap.Default()
		}
	}

	var database *sql.DB
	newCatalog := false
	if cfg.Catalog != "" {
		logger.Debug("Opening catalog", "file", cfg.Catalog)
		if _, err := os.Stat(cfg.Catalog); errors.Is(err, fs.ErrNotExist) {
			newCatalog = true
		}
		var err error
		database, err = db.InitDB(cfg.Catalog)
		if err != nil {
			return fmt.Errorf("failed to initialize catalog: %w", err)
		}
		defer database.Close()
	}

	items, err := Plan(cfg.Inputs, outputDir, cfg.Preview)
	if err != nil {
		// A catalog created for this batch holds nothing yet.
		if newCatalog {
			database.Close()
			os.Remove(cfg.Catalog)
		}
		return err
	}

	logger.Debug("Converting grids", "files", len(items), "output", outputDir, "workers", cfg.NumWorkers)

	if err := convertAll(ctx, database, cfg, items, cmap); err != nil {
		return err
	}

	if database != nil {
		if err := db.UpdateMetadata(database); err != nil {
			return fmt.Errorf("failed to update catalog metadata: %w", err)
		}
	}

	logger.Info("Conversion complete", "files", len(items), "took", time.Since(startTime).Round(time.Millisecond))

	return nil
}

func convertAll(ctx context.Context, database *sql.DB, cfg *config.Config, items []*WorkItem, cmap *colormap.Map) error {
	logger := ctxlog.FromContext(ctx)

	var stmt *sql.Stmt
	if database != nil {
		var err error
		stmt, err = db.PrepareInsert(database)
		if err != nil {
			for _, item := range items {
				item.Close()
				item.discard()
			}
			return fmt.Errorf("failed to prepare catalog insert: %w", err)
		}
		defer stmt.Close()
	}

	numWorkers := min(cfg.NumWorkers, len(items))

	var wg sync.WaitGroup
	jobQueue := make(chan *WorkItem, len(items))
	resultQueue := make(chan Result, len(items))

	for _, item := range items {
		jobQueue <- item
	}
	close(jobQueue)

	var completed int64 = 0
	total := int64(len(items))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobQueue {
				resultQueue <- item.process(cmap, cfg.Quality)
				atomic.AddInt64(&completed, 1)
			}
		}()
	}

	done := make(chan struct{})
	if cfg.Verbose {
		go reportProgress(ctx, &completed, total, done)
	}

	var firstErr error
	var dbWg sync.WaitGroup
	dbWg.Add(1)
	go func() {
		defer dbWg.Done()

		for result := range resultQueue {
			if result.Err != nil {
				logger.Debug("Conversion failed", "error", result.Err)
				if firstErr == nil {
					firstErr = result.Err
				}
				continue
			}

			logger.Debug("Converted",
				"input", result.Item.Input, "output", result.Item.Output,
				"min", result.Stats.Min, "max", result.Stats.Max, "samples", result.Stats.Count)

			if stmt == nil {
				continue
			}
			err := db.InsertGrid(stmt, db.Record{
				Name:        result.Item.Name,
				Source:      result.Item.Input,
				Output:      result.Item.Output,
				Stats:       result.Stats,
				Bounds:      result.Bounds,
				Preview:     result.Preview,
				ConvertedAt: time.Now(),
			})
			if err != nil {
				logger.Debug("Error inserting grid", "name", result.Item.Name, "error", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: failed to record in catalog: %w", result.Item.Input, err)
				}
			}
		}
	}()

	wg.Wait()
	close(resultQueue)
	dbWg.Wait()
	close(done)

	return firstErr
}

func reportProgress(ctx context.Context, completed *int64, total int64, done <-chan struct{}) {
	logger := ctxlog.FromContext(ctx)
	startTime := time.Now()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	lastCompleted := int64(0)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			current := atomic.LoadInt64(completed)
			if current == lastCompleted && current > 0 {
				continue
			}

			elapsed := time.Since(startTime).Seconds()
			percent := int(float64(current) / float64(total) * 100)
			logger.Info("Progress",
				"done", current, "total", total, "percent", percent,
				"files_per_sec", fmt.Sprintf("%.2f", float64(current)/elapsed))

			lastCompleted = current
		}
	}
}
