package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"modaudit/core/config"
	"modaudit/core/database"
	"modaudit/core/logger"
	"modaudit/core/storage"
	"modaudit/feature/closure"
	"modaudit/feature/extract"
	"modaudit/feature/index"
	"modaudit/feature/index/models"
	"modaudit/feature/modops"
	"modaudit/feature/report"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var publishFlag bool

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full analysis pipeline",
	Long: `Rebuilds the index store from scratch: scans the game config tree into the
entity store, records every mod patch operation, computes the transitive
closure, and writes run metadata. The store is a single file per run;
rebuilding replaces its content entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		startTime := time.Now()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		store := index.New(db)
		if err := store.Reset(); err != nil {
			return err
		}

		runID := uuid.NewString()
		logg.Info("Build started",
			zap.String("run_id", runID),
			zap.String("game_dir", cfg.Scan.GameDir),
			zap.String("mods_dir", cfg.Scan.ModsDir),
		)

		// 1. Base game config into the entity store.
		scanner := extract.NewScanner(store, logg, cfg.Scan.Workers)
		gameStats, err := scanner.ScanGameDir(ctx, cfg.Scan.GameDir)
		if err != nil {
			return err
		}

		// 2. Mods: whole-file definitions first (so duplicates participate
		// in ambiguity resolution), then the patch operations.
		mods, err := modops.DiscoverMods(cfg.Scan.ModsDir)
		if err != nil {
			return err
		}
		skippedFiles := gameStats.SkippedFiles
		for _, mod := range mods {
			modStats, err := scanner.ScanModConfig(ctx, mod.Dir, mod.Name)
			if err != nil {
				return err
			}
			skippedFiles += modStats.SkippedFiles
		}

		// The recorder re-parses the same mod files under the patch grammar,
		// so its skips are tracked separately from the scan skips above.
		recorder := modops.NewRecorder(store, logg)
		opStats, err := recorder.RecordMods(ctx, mods)
		if err != nil {
			return err
		}

		// 3. Transitive closure over the complete reference set.
		builder := closure.NewBuilder(store, logg, closure.Config{
			MaxDepth: cfg.Scan.MaxDepth,
			Workers:  cfg.Scan.Workers,
		})
		closureStats, err := builder.Build(ctx)
		if err != nil {
			return err
		}

		// 4. Run metadata, including partial-failure counters. A run that
		// skipped inputs still produces a store and a report.
		meta := &models.RunMeta{
			ID:                runID,
			GameDir:           cfg.Scan.GameDir,
			ModsDir:           cfg.Scan.ModsDir,
			SchemaVersion:     models.SchemaVersion,
			BuiltAt:           time.Now().UTC(),
			SkippedFiles:      skippedFiles,
			SkippedPatchFiles: opStats.SkippedFiles,
			TruncatedPaths:    closureStats.Truncated,
		}
		if err := store.SaveRunMeta(meta); err != nil {
			return err
		}

		// 5. Conflict report alongside the store file.
		service := report.NewService(store, logg, cfg.Scan.ValueCompare)
		verdicts, err := service.Conflicts()
		if err != nil {
			return err
		}
		reportFile := fmt.Sprintf("conflicts_%s.json", runID)
		data, err := json.MarshalIndent(verdicts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal conflict report: %w", err)
		}
		if err := os.WriteFile(reportFile, data, 0644); err != nil {
			return fmt.Errorf("failed to save conflict report: %w", err)
		}

		if publishFlag {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to create storage client: %w", err)
			}
			publisher := report.NewPublisher(client, cfg.Storage.Bucket, logg)
			if err := publisher.PublishRun(ctx, runID, cfg.Database.Path, reportFile); err != nil {
				return err
			}
		}

		logg.Info("Build finished",
			zap.String("run_id", runID),
			zap.Int("definitions", gameStats.Definitions),
			zap.Int("operations", opStats.Operations),
			zap.Int("closure_rows", closureStats.Rows),
			zap.Int("conflicts", len(verdicts)),
			zap.Int("skipped_files", skippedFiles),
			zap.Int("skipped_patch_files", opStats.SkippedFiles),
			zap.Int("truncated_paths", closureStats.Truncated),
			zap.Duration("execution_time", time.Since(startTime)),
		)
		fmt.Printf("Store written, conflict report saved to %s\n", reportFile)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&publishFlag, "publish", false, "Upload the store and conflict report to object storage")
	RootCmd.AddCommand(buildCmd)
}
