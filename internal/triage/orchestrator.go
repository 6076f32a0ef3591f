package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
	"github.com/dkaryakin/inflow/internal/store"
)

// Orchestrator drives one capture through routing, mapping, enrichment,
// record creation, and audit logging. Stateless per call: concurrent
// captures share nothing mutable.
type Orchestrator struct {
	docs     store.DocumentStore
	calendar store.CalendarStore
	selector *Selector
	mapper   *Mapper
	enricher *Enricher
	router   *CalendarRouter
	audit    *AuditWriter
	log      *zap.Logger
	now      func() time.Time
}

// NewOrchestrator wires the pipeline stages around the injected
// collaborators. provider may be nil (reasoning disabled); docs and
// calendar must be non-nil clients, whose missing credentials are expressed
// through the request flags and their Status probes.
func NewOrchestrator(docs store.DocumentStore, calendar store.CalendarStore, provider reason.Provider, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		docs:     docs,
		calendar: calendar,
		selector: NewSelector(provider),
		mapper:   NewMapper(provider),
		enricher: NewEnricher(provider),
		router:   NewCalendarRouter(calendar, nil),
		audit:    NewAuditWriter(docs, logger),
		log:      logger,
		now:      time.Now,
	}
}

// WithClock overrides the orchestrator's clock. Test hook.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	o.router = NewCalendarRouter(o.calendar, now)
	return o
}

// Request carries one classified capture into the pipeline.
type Request struct {
	Classification model.Classification

	// Credential presence is a normal branch input, not an error condition.
	DocumentsConnected bool
	CalendarConnected  bool

	// ScopeID optionally narrows destination listing to one parent scope.
	ScopeID string
}

// FailedClassification builds the terminal result for an upstream
// classification failure: nothing downstream can run without a record.
func FailedClassification(err error) *model.CaptureResult {
	result := newResult(model.Classification{Category: model.CategoryOther, Title: "Untitled"})
	result.Status = "error"
	result.FailedStep = "classify"
	result.DocumentError = err.Error()
	return result
}

// ProcessCapture routes one classified capture and returns the structured
// outcome. It never returns an error: every external failure degrades the
// result. Each external call is attempted exactly once.
func (o *Orchestrator) ProcessCapture(ctx context.Context, req Request) *model.CaptureResult {
	cls := req.Classification
	cls.Category = model.NormalizeCategory(string(cls.Category))

	result := newResult(cls)

	o.log.Info("processing capture",
		zap.String("capture_id", result.CaptureID),
		zap.String("category", string(cls.Category)),
		zap.String("title", result.Title))

	switch cls.Category {
	case model.CategoryEvent:
		o.processEvent(ctx, cls, req.CalendarConnected, result)
	default:
		o.processDocument(ctx, cls, req, result)
	}

	// Connectivity snapshot of both destinations, independent of which
	// branch ran. Best-effort.
	result.DocumentsStatus = o.docs.Status(ctx)
	result.CalendarStatus = o.calendar.Status(ctx)

	return result
}

func newResult(cls model.Classification) *model.CaptureResult {
	title := cls.Title
	if title == "" {
		title = "Untitled"
	}
	return &model.CaptureResult{
		CaptureID:  uuid.NewString(),
		Status:     "success",
		Category:   cls.Category,
		Title:      title,
		Confidence: cls.Confidence,
		Summary: model.Summary{
			FilledFromUser: []model.FilledField{},
			FilledByAI:     []model.FilledField{},
			LeftEmpty:      []model.EmptyField{},
		},
	}
}

// processEvent handles the calendar branch.
func (o *Orchestrator) processEvent(ctx context.Context, cls model.Classification, connected bool, result *model.CaptureResult) {
	result.Summary.Destination = "Calendar"

	if !connected {
		result.CalendarError = "calendar not connected"
		return
	}

	info, err := o.router.Route(ctx, cls)
	if err != nil {
		// Reported, not retried.
		result.CalendarError = err.Error()
		o.log.Warn("calendar event failed", zap.String("capture_id", result.CaptureID), zap.Error(err))
		return
	}

	result.CalendarEventCreated = true
	result.EventInfo = info

	result.Summary.FilledFromUser = append(result.Summary.FilledFromUser,
		model.FilledField{Field: "title", Value: result.Title, Source: "user"})
	if cls.StartTime != "" {
		result.Summary.FilledFromUser = append(result.Summary.FilledFromUser,
			model.FilledField{Field: "start_time", Value: cls.StartTime, Source: "user"})
	}
	if cls.EndTime != "" {
		result.Summary.FilledFromUser = append(result.Summary.FilledFromUser,
			model.FilledField{Field: "end_time", Value: cls.EndTime, Source: "user"})
	}
	if cls.Location != "" {
		result.Summary.FilledFromUser = append(result.Summary.FilledFromUser,
			model.FilledField{Field: "location", Value: cls.Location, Source: "user"})
	}
}

// processDocument handles the document-store branch: select, map, enrich,
// create, audit.
func (o *Orchestrator) processDocument(ctx context.Context, cls model.Classification, req Request, result *model.CaptureResult) {
	result.Summary.Destination = "Documents"

	if !req.DocumentsConnected {
		result.DocumentError = "document store not connected"
		result.Summary.LeftEmpty = append(result.Summary.LeftEmpty,
			model.EmptyField{Reason: "document store not connected"})
		return
	}

	candidates, err := o.docs.ListDestinations(ctx, req.ScopeID)
	if err != nil {
		result.DocumentError = fmt.Sprintf("list destinations: %v", err)
		return
	}
	if len(candidates) == 0 {
		result.DocumentError = "no destinations found"
		return
	}

	// Found early so selection failures can still be audited.
	logDest := DetectLogDestination(candidates)

	selection := o.selector.Select(ctx, cls, candidates)
	result.Summary.SelectionReason = selection.Reason
	result.Summary.SelectionConfidence = selection.Confidence

	if !selection.Matched {
		result.DocumentError = "no suitable destination: " + selection.Reason
		result.Summary.SelectionFailed = true
		o.writeAudit(ctx, logDest, o.failureEntry(cls, "None (no match)",
			fmt.Sprintf("No suitable destination. Available: %s. Reason: %s",
				destinationTitles(candidates), selection.Reason)))
		return
	}

	dest := *selection.Destination
	result.Summary.DestinationTitle = dest.Title
	o.log.Info("destination selected",
		zap.String("capture_id", result.CaptureID),
		zap.String("destination", dest.Title),
		zap.Float64("confidence", selection.Confidence))

	// Schema is authoritative and always re-fetched.
	schema, err := o.docs.FetchSchema(ctx, dest.ID)
	if err != nil {
		result.DocumentError = fmt.Sprintf("fetch schema: %v", err)
		o.writeAudit(ctx, logDest, o.failureEntry(cls, dest.Title, "Schema fetch error: "+err.Error()))
		return
	}

	outcome := o.mapper.Map(ctx, cls, schema)
	result.Summary.FilledFromUser = outcome.Filled
	result.Summary.LeftEmpty = outcome.Empty
	result.Summary.MappingReasoning = outcome.Reasoning

	if len(outcome.Empty) > 0 {
		researchable := o.enricher.Identify(ctx, cls, outcome.Empty, schema)
		if len(researchable) > 0 {
			enriched := o.enricher.Enrich(ctx, cls, researchable)
			if filledByAI := o.enricher.Apply(&outcome, enriched, schema); len(filledByAI) > 0 {
				result.Summary.FilledByAI = filledByAI
				result.Summary.LeftEmpty = outcome.Empty
			}
		}
	}

	info, err := o.docs.CreateRecord(ctx, dest.ID, outcome.Properties)
	if err != nil {
		result.DocumentError = err.Error()
		o.writeAudit(ctx, logDest, o.failureEntry(cls, dest.Title, "Record creation error: "+err.Error()))
		return
	}

	info.Destination = dest.Title
	result.RecordCreated = true
	result.RecordInfo = info

	o.writeAudit(ctx, logDest, model.AuditEntry{
		Action:      "Created: " + result.Title,
		Timestamp:   o.now().Format(time.RFC3339),
		Result:      "Success",
		Destination: dest.Title,
		Details: fmt.Sprintf("SUCCESS. Raw input: %q. Destination: %s. Mapped: %s. AI-researched: %s.",
			cls.RawInput, dest.Title,
			fieldSummary(result.Summary.FilledFromUser),
			fieldSummary(result.Summary.FilledByAI)),
	})
}

func (o *Orchestrator) writeAudit(ctx context.Context, logDest *model.Destination, entry model.AuditEntry) {
	if logDest == nil {
		return
	}
	o.audit.Write(ctx, *logDest, entry)
}

func (o *Orchestrator) failureEntry(cls model.Classification, destination, details string) model.AuditEntry {
	title := cls.Title
	if title == "" {
		title = "Untitled"
	}
	return model.AuditEntry{
		Action:      "FAILED: " + title,
		Timestamp:   o.now().Format(time.RFC3339),
		Result:      "Failed",
		Destination: destination,
		Details:     fmt.Sprintf("FAILURE. Raw input: %q. %s", cls.RawInput, details),
	}
}

func destinationTitles(candidates []model.Destination) string {
	titles := make([]string, 0, len(candidates))
	for _, c := range candidates {
		titles = append(titles, c.Title)
	}
	return strings.Join(titles, ", ")
}

func fieldSummary(fields []model.FilledField) string {
	if len(fields) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+"="+f.Value)
	}
	return strings.Join(parts, ", ")
}
