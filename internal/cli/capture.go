package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkaryakin/inflow/internal/model"
)

var (
	captureTimeout time.Duration
	scopeID        string
	reasonProvider string
	reasonModel    string
	outputJSON     bool
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <text>",
	Short: "Route one capture to the calendar or the document store",
	Long: `Capture classifies one piece of input and routes it:
- Time-bound captures become calendar events
- Everything else is matched against document-store destinations,
  mapped onto the chosen destination's fields, and created as a record
- A summary explains every filled and unfilled field

Example:
  inflow capture "watch Inception this weekend"
  inflow capture "dentist tuesday 3pm" --reason openai
  inflow capture "buy milk" --scope 1f2a... --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", 2*time.Minute, "overall capture timeout")
	captureCmd.Flags().StringVar(&scopeID, "scope", "", "limit destinations to one parent scope ID")
	captureCmd.Flags().StringVar(&reasonProvider, "reason", "", "reasoning provider (openai); empty disables reasoning")
	captureCmd.Flags().StringVar(&reasonModel, "reason-model", "", "reasoning model name")
	captureCmd.Flags().BoolVar(&outputJSON, "json", false, "print the full result as JSON")
}

func runCapture(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	cfg := loadConfig()
	if reasonProvider != "" {
		cfg.Reason.Provider = reasonProvider
	}
	if reasonModel != "" {
		cfg.Reason.Model = reasonModel
	}
	cfg.Output.JSON = outputJSON

	if verbose {
		fmt.Fprintf(os.Stderr, "Capturing: %s\n", input)
		fmt.Fprintf(os.Stderr, "Reasoning: %s\n", orDisabled(cfg.Reason.Provider))
		fmt.Fprintln(os.Stderr)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	processor, err := newCaptureProcessor(cfg, scopeID, logger)
	if err != nil {
		return err
	}

	result, err := processor.ProcessInput(ctx, input)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	return renderResult(result, cfg.Output.JSON)
}

func orDisabled(provider string) string {
	if provider == "" {
		return "disabled"
	}
	return provider
}

// renderResult prints one capture result to stdout.
func renderResult(result *model.CaptureResult, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Capture:  %s\n", result.Title)
	fmt.Printf("Category: %s (confidence %.2f)\n", result.Category, result.Confidence)

	switch {
	case result.CalendarEventCreated:
		fmt.Printf("Created calendar event: %s\n", result.EventInfo.Title)
		if result.EventInfo.StartTime != "" {
			fmt.Printf("  Start: %s\n", result.EventInfo.StartTime)
		}
		if result.EventInfo.Link != "" {
			fmt.Printf("  Link:  %s\n", result.EventInfo.Link)
		}
	case result.CalendarError != "":
		fmt.Printf("Calendar: %s\n", result.CalendarError)
	case result.RecordCreated:
		fmt.Printf("Created record in %q\n", result.RecordInfo.Destination)
		if result.RecordInfo.URL != "" {
			fmt.Printf("  URL: %s\n", result.RecordInfo.URL)
		}
	case result.DocumentError != "":
		fmt.Printf("Documents: %s\n", result.DocumentError)
	}

	printFields("Filled from input", result.Summary.FilledFromUser)
	printFields("Filled by AI", result.Summary.FilledByAI)

	if n := len(result.Summary.LeftEmpty); n > 0 {
		fmt.Printf("Left empty (%d):\n", n)
		for _, f := range result.Summary.LeftEmpty {
			if f.Reason != "" {
				fmt.Printf("  - %s (%s)\n", f.Field, f.Reason)
			} else {
				fmt.Printf("  - %s\n", f.Field)
			}
		}
	}

	if result.Summary.SelectionFailed {
		fmt.Printf("Selection failed: %s\n", result.Summary.SelectionReason)
	}

	return nil
}

func printFields(label string, fields []model.FilledField) {
	if len(fields) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(fields))
	for _, f := range fields {
		fmt.Printf("  - %s = %s\n", f.Field, f.Value)
	}
}
