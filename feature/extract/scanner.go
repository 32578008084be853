package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"modaudit/core/xmlnode"
	"modaudit/feature/index"
	"modaudit/feature/index/models"

	"go.uber.org/zap"
)

// ScanStats summarizes one ingestion pass.
type ScanStats struct {
	// Files is the number of XML files found.
	Files int `json:"files"`
	// Definitions is the number of definitions inserted.
	Definitions int `json:"definitions"`
	// SkippedFiles counts files skipped due to parse errors.
	SkippedFiles int `json:"skipped_files"`
	// SkippedRows counts rows dropped by store validation.
	SkippedRows int `json:"skipped_rows"`
}

// Scanner ingests a game config directory tree into the entity store.
type Scanner struct {
	extractor *Extractor
	store     *index.Store
	logger    *zap.Logger
	workers   int
}

// NewScanner creates a scanner with the given worker count.
func NewScanner(store *index.Store, logger *zap.Logger, workers int) *Scanner {
	if workers <= 0 {
		workers = 4
	}
	return &Scanner{
		extractor: NewExtractor(logger),
		store:     store,
		logger:    logger,
		workers:   workers,
	}
}

// ScanGameDir ingests every XML file under root as base-game content.
func (s *Scanner) ScanGameDir(ctx context.Context, root string) (ScanStats, error) {
	return s.scan(ctx, root, models.OriginBase)
}

// ScanModConfig ingests definitions a mod contributes as whole files (as
// opposed to XPath patches), tagged with the mod's origin.
func (s *Scanner) ScanModConfig(ctx context.Context, root, modName string) (ScanStats, error) {
	return s.scan(ctx, root, models.ModOrigin(modName))
}

func (s *Scanner) scan(ctx context.Context, root, origin string) (ScanStats, error) {
	var stats ScanStats

	files, err := listXMLFiles(root)
	if err != nil {
		// Total inability to read the input root is the one fatal case.
		return stats, fmt.Errorf("failed to read config directory %s: %w", root, err)
	}
	stats.Files = len(files)

	// Parse files in parallel; keep results per file so the merge below is
	// deterministic regardless of worker scheduling.
	type fileResult struct {
		bundles []index.Bundle
		skipped bool
	}
	results := make(map[string]fileResult, len(files))

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				// Keep draining after cancellation so the producer's sends
				// never block on exited workers.
				if ctx.Err() != nil {
					continue
				}
				bundles, err := s.parseFile(path, origin)
				mu.Lock()
				if err != nil {
					s.logger.Warn("Skipping config file", zap.String("file", path), zap.Error(err))
					results[path] = fileResult{skipped: true}
				} else {
					results[path] = fileResult{bundles: bundles}
				}
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		select {
		case jobs <- path:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	// Merge per-worker results in path order; insertion order determines
	// definition IDs, so this keeps rebuilds byte-identical.
	var merged []index.Bundle
	for _, path := range files {
		res := results[path]
		if res.skipped {
			stats.SkippedFiles++
			continue
		}
		merged = append(merged, res.bundles...)
	}

	skippedRows, err := s.store.InsertBundles(merged)
	if err != nil {
		return stats, fmt.Errorf("failed to insert extracted definitions: %w", err)
	}
	stats.SkippedRows = skippedRows
	stats.Definitions = len(merged)

	s.logger.Info("Config scan finished",
		zap.String("root", root),
		zap.Int("files", stats.Files),
		zap.Int("definitions", stats.Definitions),
		zap.Int("skipped_files", stats.SkippedFiles),
		zap.Int("skipped_rows", stats.SkippedRows),
	)
	return stats, nil
}

// parseFile parses one config file and extracts every definition it holds.
func (s *Scanner) parseFile(path, origin string) ([]index.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	defer f.Close()

	root, err := xmlnode.Parse(f)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}

	var bundles []index.Bundle
	for _, child := range root.Children {
		defType, ok := DefinitionTags[child.Tag]
		if !ok {
			continue
		}
		if child.Attr("name") == "" {
			s.logger.Warn("Skipping unnamed definition",
				zap.String("file", path),
				zap.String("tag", child.Tag),
				zap.Int("line", child.Line),
			)
			continue
		}
		bundles = append(bundles, s.extractor.ExtractDefinition(child, defType, origin, path))
	}
	return bundles, nil
}

// listXMLFiles walks root and returns every .xml file in lexical order.
func listXMLFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal; only a
			// missing root aborts the run.
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
