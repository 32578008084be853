package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"modaudit/core/config"
	"modaudit/core/database"
	"modaudit/core/logger"
	"modaudit/feature/conflict"
	"modaudit/feature/index"
	"modaudit/feature/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// conflictsCmd represents the conflicts command
var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Classify and print mod conflicts from an existing store",
	Long: `Reads an already-built store, classifies all recorded mod operations and
prints conflict metrics. Use --json for a full report file including the
justification list of every verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		jsonOutput, _ := cmd.Flags().GetBool("json")

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

		service := report.NewService(index.New(db), logg, cfg.Scan.ValueCompare)
		if err := service.VerifyStore(); err != nil {
			return err
		}

		verdicts, err := service.Conflicts()
		if err != nil {
			return err
		}
		fragile, err := service.FragileOperations()
		if err != nil {
			return err
		}
		meta, err := service.Meta()
		if err != nil {
			return err
		}

		var high, medium, low int
		for _, v := range verdicts {
			switch v.Severity {
			case conflict.SeverityHigh:
				high++
			case conflict.SeverityMedium:
				medium++
			case conflict.SeverityLow:
				low++
			}
		}

		if jsonOutput {
			type fullReport struct {
				Verdicts []conflict.Verdict `json:"verdicts"`
				Fragile  any                `json:"fragile_operations"`
				Meta     any                `json:"run_meta,omitempty"`
			}
			filename := fmt.Sprintf("conflicts_report_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(fullReport{Verdicts: verdicts, Fragile: fragile, Meta: meta}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			logg.Info("Detailed JSON report saved", zap.String("file", filename), zap.Int("verdicts", len(verdicts)))
		}

		// Always display metrics
		fmt.Println("\n=== Mod Conflict Metrics ===")
		fmt.Printf("High:   %d\n", high)
		fmt.Printf("Medium: %d\n", medium)
		fmt.Printf("Low:    %d\n", low)
		fmt.Printf("Fragile Selectors: %d\n", len(fragile))
		if meta != nil {
			fmt.Printf("Skipped Inputs: %d\n", meta.SkippedFiles)
			fmt.Printf("Skipped Patch Files: %d\n", meta.SkippedPatchFiles)
			fmt.Printf("Truncated Paths: %d\n", meta.TruncatedPaths)
		}
		fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

		for _, v := range verdicts {
			fmt.Printf("[%s] %s %q", v.Severity, v.TargetType, v.TargetName)
			if v.PropertyKey != "" {
				fmt.Printf(" (%s)", v.PropertyKey)
			}
			fmt.Printf(": %s\n", v.Reason)
		}

		logg.Info("Conflict report completed",
			zap.Int("high", high),
			zap.Int("medium", medium),
			zap.Int("low", low),
			zap.Int("fragile", len(fragile)),
			zap.Duration("execution_time", time.Since(startTime)),
		)
		return nil
	},
}

func init() {
	conflictsCmd.Flags().Bool("json", false, "Save a detailed JSON report file")
	RootCmd.AddCommand(conflictsCmd)
}
