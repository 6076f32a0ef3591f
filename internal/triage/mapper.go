package triage

import (
	"context"

	"github.com/dkaryakin/inflow/internal/codec"
	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
)

// maxPromptOptions caps how many allowed options a select/status field
// contributes to the mapping prompt.
const maxPromptOptions = 20

// maxProvenanceLen caps original values recorded in filled-field provenance.
const maxProvenanceLen = 100

// MappingOutcome is the result of one dynamic mapping pass.
type MappingOutcome struct {
	Properties map[string]model.FieldValue
	Filled     []model.FilledField
	Empty      []model.EmptyField
	Reasoning  string
}

// Mapper maps a classification onto a destination's live field schema.
type Mapper struct {
	provider reason.Provider // nil when reasoning is disabled
}

// NewMapper creates a mapper. provider may be nil.
func NewMapper(provider reason.Provider) *Mapper {
	return &Mapper{provider: provider}
}

// Map never returns an error. On any collaborator failure the outcome has
// no properties, every eligible field in Empty, and the error captured as
// reasoning text.
func (m *Mapper) Map(ctx context.Context, cls model.Classification, schema []model.FieldSchema) MappingOutcome {
	eligible := eligibleFields(schema)

	if m.provider == nil {
		return MappingOutcome{
			Properties: map[string]model.FieldValue{},
			Empty:      allEmpty(eligible),
			Reasoning:  "no reasoning backend",
		}
	}

	req := reason.MapRequest{Classification: cls}
	for _, f := range eligible {
		req.Fields = append(req.Fields, reason.FieldSpec{
			Name:    f.Name,
			Type:    f.Type,
			Options: capOptions(f.Options, maxPromptOptions),
		})
	}

	reply, err := m.provider.MapFields(ctx, req)
	if err != nil {
		return MappingOutcome{
			Properties: map[string]model.FieldValue{},
			Empty:      allEmpty(eligible),
			Reasoning:  err.Error(),
		}
	}

	byName := make(map[string]model.FieldSchema, len(eligible))
	for _, f := range eligible {
		byName[f.Name] = f
	}

	outcome := MappingOutcome{
		Properties: map[string]model.FieldValue{},
		Reasoning:  reply.Reasoning,
	}

	for _, proposal := range reply.Mappings {
		field, ok := byName[proposal.Field]
		if !ok || proposal.Value == nil {
			continue
		}
		encoded := codec.Encode(field.Type, proposal.Value, field)
		if encoded == nil {
			continue
		}
		// One value per field: a later proposal for the same field loses.
		if _, taken := outcome.Properties[field.Name]; taken {
			continue
		}
		outcome.Properties[field.Name] = encoded
		outcome.Filled = append(outcome.Filled, model.FilledField{
			Field:     field.Name,
			Value:     codec.Truncate(codec.Stringify(proposal.Value), maxProvenanceLen),
			Source:    proposal.Source,
			Reasoning: proposal.Reasoning,
			Type:      field.Type,
		})
	}

	// Every eligible field not successfully filled is empty, regardless of
	// what the collaborator claimed it mapped.
	for _, f := range eligible {
		if _, filled := outcome.Properties[f.Name]; !filled {
			outcome.Empty = append(outcome.Empty, model.EmptyField{Field: f.Name, Type: f.Type})
		}
	}

	return outcome
}

// eligibleFields drops auto-computed kinds: the destination fills those
// itself, so they are never offered for mapping and never reported.
func eligibleFields(schema []model.FieldSchema) []model.FieldSchema {
	eligible := make([]model.FieldSchema, 0, len(schema))
	for _, f := range schema {
		if f.Type.AutoComputed() {
			continue
		}
		eligible = append(eligible, f)
	}
	return eligible
}

func allEmpty(fields []model.FieldSchema) []model.EmptyField {
	empty := make([]model.EmptyField, 0, len(fields))
	for _, f := range fields {
		empty = append(empty, model.EmptyField{Field: f.Name, Type: f.Type})
	}
	return empty
}

func capOptions(options []string, max int) []string {
	if len(options) > max {
		return options[:max]
	}
	return options
}
