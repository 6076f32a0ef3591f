package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	resultsPath  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Route multiple captures from a file in parallel",
	Long: `Batch processes captures concurrently:
- Read captures from the input file (one per line, # for comments)
- Process them in parallel with configurable worker count
- Shared rate limiting keeps the whole batch within backend limits
- One failed capture never stops the rest

Example:
  inflow batch captures.txt
  inflow batch captures.txt --concurrency 8 --results results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&resultsPath, "results", "", "write all results as a JSON array to this path")
	batchCmd.Flags().StringVar(&scopeID, "scope", "", "limit destinations to one parent scope ID")
	batchCmd.Flags().StringVar(&reasonProvider, "reason", "", "reasoning provider (openai); empty disables reasoning")
	batchCmd.Flags().StringVar(&reasonModel, "reason-model", "", "reasoning model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if reasonProvider != "" {
		cfg.Reason.Provider = reasonProvider
	}
	if reasonModel != "" {
		cfg.Reason.Model = reasonModel
	}
	if concurrency > 0 {
		cfg.Batch.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", cfg.Batch.Workers)
	fmt.Fprintf(os.Stderr, "Reasoning:  %s\n", orDisabled(cfg.Reason.Provider))
	fmt.Fprintln(os.Stderr)

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	processor, err := newCaptureProcessor(cfg, scopeID, logger)
	if err != nil {
		return err
	}

	batch := worker.NewBatchProcessor(processor, cfg.Batch.Workers,
		cfg.Batch.RequestsPerSecond, cfg.Batch.Burst)

	outcomes, err := batch.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	var results []*model.CaptureResult

	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %q: %v\n", outcome.Input, outcome.Error)
			continue
		}

		result := outcome.Result
		results = append(results, result)

		switch {
		case result.CalendarEventCreated:
			successCount++
			fmt.Fprintf(os.Stderr, "ok   %q -> calendar event\n", outcome.Input)
		case result.RecordCreated:
			successCount++
			fmt.Fprintf(os.Stderr, "ok   %q -> %s\n", outcome.Input, result.RecordInfo.Destination)
		default:
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %q: %s\n", outcome.Input, firstError(result))
		}
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d captures\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "Routed:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failed:   %d\n", failureCount)

	if resultsPath != "" {
		if err := writeResults(resultsPath, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results:  %s\n", resultsPath)
	}

	return nil
}

func firstError(result *model.CaptureResult) string {
	if result.CalendarError != "" {
		return result.CalendarError
	}
	if result.DocumentError != "" {
		return result.DocumentError
	}
	return "not routed"
}

func writeResults(path string, results []*model.CaptureResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
