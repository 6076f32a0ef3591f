package triage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dkaryakin/inflow/internal/codec"
	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/store"
)

// logNameIndicators drive the log-destination heuristic: a case-insensitive
// substring match against the destination title. Deliberately unchanged
// from the behavior the pipeline was specified against.
var logNameIndicators = []string{"log", "logs", "activity", "history", "journal"}

// DetectLogDestination returns the first candidate whose title looks like
// an activity log, or nil.
func DetectLogDestination(candidates []model.Destination) *model.Destination {
	for i := range candidates {
		title := strings.ToLower(candidates[i].Title)
		for _, indicator := range logNameIndicators {
			if strings.Contains(title, indicator) {
				return &candidates[i]
			}
		}
	}
	return nil
}

// AuditWriter writes one flattened audit entry per run to a log-like
// destination, filling that destination's own schema by field-name
// heuristics. All failures are swallowed: auditing never surfaces to the
// caller.
type AuditWriter struct {
	docs store.DocumentStore
	log  *zap.Logger
}

// NewAuditWriter creates an audit writer
func NewAuditWriter(docs store.DocumentStore, logger *zap.Logger) *AuditWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditWriter{docs: docs, log: logger}
}

// Write maps the entry onto the log destination's fields and creates one
// record. Best-effort: errors go to the operational log only.
func (w *AuditWriter) Write(ctx context.Context, logDest model.Destination, entry model.AuditEntry) {
	schema, err := w.docs.FetchSchema(ctx, logDest.ID)
	if err != nil {
		w.log.Warn("audit schema fetch failed", zap.String("destination", logDest.Title), zap.Error(err))
		return
	}

	properties := BuildAuditProperties(schema, entry)
	if len(properties) == 0 {
		w.log.Warn("audit destination has no usable fields", zap.String("destination", logDest.Title))
		return
	}

	if _, err := w.docs.CreateRecord(ctx, logDest.ID, properties); err != nil {
		w.log.Warn("audit write failed", zap.String("destination", logDest.Title), zap.Error(err))
		return
	}
	w.log.Debug("audit entry written", zap.String("destination", logDest.Title), zap.String("action", entry.Action))
}

// BuildAuditProperties fills a log destination's schema from one entry by
// field-name substrings: the title field takes the action, time/date fields
// the timestamp, result/status fields the result, detail/description/note
// fields the details, database/target fields the destination name.
func BuildAuditProperties(schema []model.FieldSchema, entry model.AuditEntry) map[string]model.FieldValue {
	properties := make(map[string]model.FieldValue)

	for _, field := range schema {
		name := strings.ToLower(field.Name)

		var value any
		switch {
		case field.Type == model.FieldTitle:
			value = entry.Action
		case strings.Contains(name, "time") || strings.Contains(name, "date"):
			if field.Type == model.FieldDate {
				value = entry.Timestamp
			}
		case strings.Contains(name, "result") || strings.Contains(name, "status"):
			if field.Type == model.FieldSingleSelect || field.Type == model.FieldStatus || field.Type == model.FieldText {
				value = entry.Result
			}
		case strings.Contains(name, "detail") || strings.Contains(name, "description") || strings.Contains(name, "note"):
			if field.Type == model.FieldText {
				value = entry.Details
			}
		case strings.Contains(name, "database") || strings.Contains(name, "target"):
			if field.Type == model.FieldText || field.Type == model.FieldSingleSelect {
				value = entry.Destination
			}
		}

		if value == nil {
			continue
		}
		if encoded := codec.Encode(field.Type, value, field); encoded != nil {
			properties[field.Name] = encoded
		}
	}

	return properties
}
