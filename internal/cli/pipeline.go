package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dkaryakin/inflow/internal/codec"
	"github.com/dkaryakin/inflow/internal/ingest"
	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
	"github.com/dkaryakin/inflow/internal/store"
	"github.com/dkaryakin/inflow/internal/triage"
)

// loadConfig builds the runtime configuration: defaults, overlaid by the
// config file, with secrets taken from the environment only.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("reason.provider"); v != "" {
		cfg.Reason.Provider = v
	}
	if v := viper.GetString("reason.model"); v != "" {
		cfg.Reason.Model = v
	}
	if v := viper.GetString("reason.base_url"); v != "" {
		cfg.Reason.BaseURL = v
	}
	if v := viper.GetInt("reason.timeout"); v > 0 {
		cfg.Reason.Timeout = v
	}
	if v := viper.GetInt("reason.max_tokens"); v > 0 {
		cfg.Reason.MaxTokens = v
	}
	if v := viper.GetString("documents.base_url"); v != "" {
		cfg.Documents.BaseURL = v
	}
	if v := viper.GetString("documents.api_version"); v != "" {
		cfg.Documents.APIVersion = v
	}
	if v := viper.GetString("calendar.base_url"); v != "" {
		cfg.Calendar.BaseURL = v
	}
	if v := viper.GetString("calendar.calendar_id"); v != "" {
		cfg.Calendar.CalendarID = v
	}
	if v := viper.GetInt("batch.workers"); v > 0 {
		cfg.Batch.Workers = v
	}
	if v := viper.GetFloat64("batch.requests_per_second"); v > 0 {
		cfg.Batch.RequestsPerSecond = v
	}
	if v := viper.GetInt("batch.burst"); v > 0 {
		cfg.Batch.Burst = v
	}

	// Secrets come from the environment, never the config file.
	cfg.Reason.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Documents.Token = os.Getenv("INFLOW_DOCUMENTS_TOKEN")
	cfg.Calendar.Token = os.Getenv("INFLOW_CALENDAR_TOKEN")

	cfg.Output.Verbose = verbose
	return cfg
}

// newLogger builds the operational logger. Verbose mode switches to the
// human-readable development encoder.
func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// captureProcessor runs one raw input through ingest, classification, and
// orchestration. It implements worker.CaptureProcessor so single and batch
// captures share one code path.
type captureProcessor struct {
	provider     reason.Provider
	orchestrator *triage.Orchestrator
	scopeID      string

	documentsConnected bool
	calendarConnected  bool
}

// newCaptureProcessor wires the full pipeline from configuration.
func newCaptureProcessor(cfg *model.Config, scopeID string, logger *zap.Logger) (*captureProcessor, error) {
	provider, err := reason.NewProvider(reason.ConfigFromModel(cfg.Reason))
	if err != nil {
		return nil, fmt.Errorf("reasoning provider: %w", err)
	}

	docs := store.NewDocumentClient(cfg.Documents, logger)
	calendar := store.NewCalendarClient(cfg.Calendar, logger)

	return &captureProcessor{
		provider:           provider,
		orchestrator:       triage.NewOrchestrator(docs, calendar, provider, logger),
		scopeID:            scopeID,
		documentsConnected: cfg.Documents.Token != "",
		calendarConnected:  cfg.Calendar.Token != "",
	}, nil
}

// ProcessInput handles one capture end to end. It returns an error only for
// unusable input; every downstream failure is expressed in the result.
func (p *captureProcessor) ProcessInput(ctx context.Context, raw string) (*model.CaptureResult, error) {
	input := ingest.Normalize(raw)
	if input == "" {
		return nil, errors.New("empty input")
	}

	capturedAt := time.Now().Format(time.RFC3339)

	var cls *model.Classification
	if p.provider != nil {
		c, err := p.provider.Classify(ctx, reason.ClassifyRequest{Input: input, CapturedAt: capturedAt})
		if err != nil {
			return triage.FailedClassification(err), nil
		}
		cls = c
	} else {
		// No reasoning backend: every capture is a document capture with
		// the input itself as the title.
		cls = &model.Classification{
			Category:   model.CategoryOther,
			Title:      codec.Truncate(input, 100),
			RawInput:   input,
			CapturedAt: capturedAt,
		}
	}

	return p.orchestrator.ProcessCapture(ctx, triage.Request{
		Classification:     *cls,
		DocumentsConnected: p.documentsConnected,
		CalendarConnected:  p.calendarConnected,
		ScopeID:            p.scopeID,
	}), nil
}
