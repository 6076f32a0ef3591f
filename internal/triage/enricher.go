package triage

import (
	"context"

	"github.com/dkaryakin/inflow/internal/codec"
	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
)

// maxIdentifyOptions caps allowed options per field in the identify prompt.
const maxIdentifyOptions = 15

// Enricher runs the bounded secondary inference pass over fields the
// mapper left empty: first asking which of them are factually derivable
// from content alone, then asking for values for just those.
type Enricher struct {
	provider reason.Provider // nil when reasoning is disabled
}

// NewEnricher creates an enricher. provider may be nil.
func NewEnricher(provider reason.Provider) *Enricher {
	return &Enricher{provider: provider}
}

// Identify asks which empty fields are researchable. Returns nil on a
// missing provider or any failure; never raises.
func (e *Enricher) Identify(ctx context.Context, cls model.Classification, empty []model.EmptyField, schema []model.FieldSchema) []reason.FieldSpec {
	if e.provider == nil || len(empty) == 0 {
		return nil
	}

	byName := make(map[string]model.FieldSchema, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}

	req := reason.IdentifyRequest{Classification: cls}
	for _, ef := range empty {
		field, ok := byName[ef.Field]
		if !ok {
			continue
		}
		req.Fields = append(req.Fields, reason.FieldSpec{
			Name:    field.Name,
			Type:    field.Type,
			Options: capOptions(field.Options, maxIdentifyOptions),
		})
	}
	if len(req.Fields) == 0 {
		return nil
	}

	reply, err := e.provider.IdentifyResearchable(ctx, req)
	if err != nil {
		return nil
	}

	// Only fields that were actually offered count as researchable.
	offered := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		offered[f.Name] = true
	}
	researchable := make([]reason.FieldSpec, 0, len(reply.Researchable))
	for _, f := range reply.Researchable {
		if offered[f.Name] {
			researchable = append(researchable, f)
		}
	}
	return researchable
}

// Enrich asks for best-effort values for the researchable fields. Null
// values were already dropped at the provider boundary. Returns an empty
// map on a missing provider or any failure.
func (e *Enricher) Enrich(ctx context.Context, cls model.Classification, researchable []reason.FieldSpec) map[string]any {
	if e.provider == nil || len(researchable) == 0 {
		return nil
	}

	reply, err := e.provider.EnrichFields(ctx, reason.EnrichRequest{
		Classification: cls,
		Fields:         researchable,
	})
	if err != nil {
		return nil
	}
	return reply.Values
}

// Apply encodes each enrichment value against its field schema and merges
// successes into the outcome: properties gain the value, FilledByAI records
// it, Empty loses the field. Values that fail to encode stay empty.
func (e *Enricher) Apply(outcome *MappingOutcome, enriched map[string]any, schema []model.FieldSchema) []model.FilledField {
	if len(enriched) == 0 {
		return nil
	}

	byName := make(map[string]model.FieldSchema, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}

	var filledByAI []model.FilledField
	for name, value := range enriched {
		field, ok := byName[name]
		if !ok || value == nil {
			continue
		}
		encoded := codec.Encode(field.Type, value, field)
		if encoded == nil {
			continue
		}
		outcome.Properties[name] = encoded
		filledByAI = append(filledByAI, model.FilledField{
			Field: name,
			Value: codec.Truncate(codec.Stringify(value), maxProvenanceLen),
			Type:  field.Type,
		})
	}

	if len(filledByAI) > 0 {
		filled := make(map[string]bool, len(filledByAI))
		for _, f := range filledByAI {
			filled[f.Field] = true
		}
		remaining := outcome.Empty[:0]
		for _, ef := range outcome.Empty {
			if !filled[ef.Field] {
				remaining = append(remaining, ef)
			}
		}
		outcome.Empty = remaining
	}

	return filledByAI
}
