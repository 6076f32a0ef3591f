package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
	"github.com/dkaryakin/inflow/internal/store"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity of all configured backends",
	Long: `Status probes every configured backend once and reports the result.
Missing credentials are reported as disconnected, not as errors.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := loadConfig()
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	docs := store.NewDocumentClient(cfg.Documents, logger)
	printStatus("documents", docs.Status(ctx))

	calendar := store.NewCalendarClient(cfg.Calendar, logger)
	printStatus("calendar", calendar.Status(ctx))

	provider, err := reason.NewProvider(reason.ConfigFromModel(cfg.Reason))
	switch {
	case err != nil:
		fmt.Printf("%-10s misconfigured: %v\n", "reasoning", err)
	case provider == nil:
		fmt.Printf("%-10s disabled\n", "reasoning")
	case provider.IsAvailable(ctx):
		fmt.Printf("%-10s connected (%s)\n", "reasoning", provider.Name())
	default:
		fmt.Printf("%-10s unreachable (%s)\n", "reasoning", provider.Name())
	}

	return nil
}

func printStatus(name string, status model.ConnectionStatus) {
	switch {
	case status.Connected && status.Detail != "":
		fmt.Printf("%-10s connected (%s)\n", name, status.Detail)
	case status.Connected:
		fmt.Printf("%-10s connected\n", name)
	case status.Error != "":
		fmt.Printf("%-10s disconnected: %s\n", name, status.Error)
	default:
		fmt.Printf("%-10s disconnected\n", name)
	}
}
