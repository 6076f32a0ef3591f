package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkaryakin/inflow/internal/store"
	"github.com/dkaryakin/inflow/internal/triage"
)

// destinationsCmd represents the destinations command
var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List document-store destinations visible to the integration",
	Long: `Destinations lists every document-store destination the configured
integration can reach, with its field names. Log-like destinations that
receive audit entries are marked.

Example:
  inflow destinations
  inflow destinations --scope 1f2a...`,
	Args: cobra.NoArgs,
	RunE: runDestinations,
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema <destination-id>",
	Short: "Show the field schema of one destination",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(destinationsCmd)
	rootCmd.AddCommand(schemaCmd)

	destinationsCmd.Flags().StringVar(&scopeID, "scope", "", "limit destinations to one parent scope ID")
}

func runDestinations(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := loadConfig()
	if cfg.Documents.Token == "" {
		return fmt.Errorf("INFLOW_DOCUMENTS_TOKEN environment variable not set")
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	docs := store.NewDocumentClient(cfg.Documents, logger)
	destinations, err := docs.ListDestinations(ctx, scopeID)
	if err != nil {
		return fmt.Errorf("list destinations: %w", err)
	}
	if len(destinations) == 0 {
		fmt.Println("No destinations found. Share at least one database with the integration.")
		return nil
	}

	logDest := triage.DetectLogDestination(destinations)

	for _, d := range destinations {
		marker := ""
		if logDest != nil && d.ID == logDest.ID {
			marker = "  [audit log]"
		}
		fmt.Printf("%s  %s%s\n", d.ID, d.Title, marker)
		if names := d.FieldNames(10); len(names) > 0 {
			fmt.Printf("    fields: %s\n", strings.Join(names, ", "))
		}
	}

	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := loadConfig()
	if cfg.Documents.Token == "" {
		return fmt.Errorf("INFLOW_DOCUMENTS_TOKEN environment variable not set")
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	docs := store.NewDocumentClient(cfg.Documents, logger)
	schema, err := docs.FetchSchema(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch schema: %w", err)
	}

	for _, f := range schema {
		line := fmt.Sprintf("%-30s %s", f.Name, f.Type)
		if f.Type.AutoComputed() {
			line += "  (auto-computed, never written)"
		}
		fmt.Println(line)
		if len(f.Options) > 0 {
			fmt.Printf("  options: %s\n", strings.Join(f.Options, ", "))
		}
	}

	return nil
}
