package triage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
)

func movieSchema() []model.FieldSchema {
	return []model.FieldSchema{
		{Name: "Name", Type: model.FieldTitle},
		{Name: "Genre", Type: model.FieldSingleSelect, Options: []string{"Drama", "Sci-Fi"}},
		{Name: "Year", Type: model.FieldNumber},
		{Name: "Added", Type: model.FieldCreatedTime},
		{Name: "Score", Type: model.FieldFormula},
	}
}

func TestMapper_NoProvider(t *testing.T) {
	outcome := NewMapper(nil).Map(context.Background(), model.Classification{}, movieSchema())

	if len(outcome.Properties) != 0 || len(outcome.Filled) != 0 {
		t.Error("Expected nothing mapped without a provider")
	}
	if len(outcome.Empty) != 3 {
		t.Errorf("Expected 3 eligible empty fields, got %d", len(outcome.Empty))
	}
	if outcome.Reasoning != "no reasoning backend" {
		t.Errorf("Unexpected reasoning: %q", outcome.Reasoning)
	}
}

func TestMapper_AutoComputedNeverAppears(t *testing.T) {
	provider := &fakeProvider{mapReply: &reason.MapReply{
		Mappings: []reason.ProposedMapping{
			{Field: "Name", Value: "Inception", Source: "user"},
			// A proposal against an auto-computed field must be dropped.
			{Field: "Added", Value: "2024-03-01", Source: "ai"},
		},
	}}

	outcome := NewMapper(provider).Map(context.Background(), model.Classification{}, movieSchema())

	for _, spec := range provider.lastMapReq.Fields {
		if spec.Name == "Added" || spec.Name == "Score" {
			t.Errorf("Auto-computed field %q offered to the provider", spec.Name)
		}
	}
	for _, f := range outcome.Filled {
		if f.Field == "Added" {
			t.Error("Auto-computed field appeared in filled")
		}
	}
	for _, f := range outcome.Empty {
		if f.Field == "Added" || f.Field == "Score" {
			t.Errorf("Auto-computed field %q appeared in empty", f.Field)
		}
	}
}

func TestMapper_EncodesAndRecordsProvenance(t *testing.T) {
	provider := &fakeProvider{mapReply: &reason.MapReply{
		Mappings: []reason.ProposedMapping{
			{Field: "Name", Value: "Inception", Source: "user", Reasoning: "stated title"},
			{Field: "Genre", Value: "sci-fi", Source: "ai", Reasoning: "known genre"},
			{Field: "Year", Value: "not a number", Source: "ai"},
		},
		Reasoning: "overall",
	}}

	outcome := NewMapper(provider).Map(context.Background(), model.Classification{}, movieSchema())

	if len(outcome.Properties) != 2 {
		t.Fatalf("Expected 2 encoded properties, got %d", len(outcome.Properties))
	}
	// Canonical option casing comes from the schema
	genre := outcome.Properties["Genre"]["select"].(map[string]any)["name"].(string)
	if genre != "Sci-Fi" {
		t.Errorf("Expected canonical 'Sci-Fi', got %q", genre)
	}

	if len(outcome.Filled) != 2 {
		t.Fatalf("Expected 2 filled records, got %d", len(outcome.Filled))
	}
	if outcome.Filled[0].Source != "user" || outcome.Filled[0].Reasoning != "stated title" {
		t.Errorf("Provenance lost: %+v", outcome.Filled[0])
	}

	// The unencodable Year proposal stays empty
	if len(outcome.Empty) != 1 || outcome.Empty[0].Field != "Year" {
		t.Errorf("Expected only Year empty, got %+v", outcome.Empty)
	}
	if outcome.Reasoning != "overall" {
		t.Errorf("Unexpected reasoning: %q", outcome.Reasoning)
	}
}

func TestMapper_IgnoresUnknownFieldsAndNulls(t *testing.T) {
	provider := &fakeProvider{mapReply: &reason.MapReply{
		Mappings: []reason.ProposedMapping{
			{Field: "Ghost", Value: "x"},
			{Field: "Name", Value: nil},
		},
	}}

	outcome := NewMapper(provider).Map(context.Background(), model.Classification{}, movieSchema())
	if len(outcome.Properties) != 0 {
		t.Errorf("Expected nothing mapped, got %v", outcome.Properties)
	}
	if len(outcome.Empty) != 3 {
		t.Errorf("Expected all eligible fields empty, got %d", len(outcome.Empty))
	}
}

func TestMapper_ProviderErrorDegrades(t *testing.T) {
	provider := &fakeProvider{mapErr: errors.New("boom")}
	outcome := NewMapper(provider).Map(context.Background(), model.Classification{}, movieSchema())

	if len(outcome.Properties) != 0 {
		t.Error("Expected no properties on provider error")
	}
	if len(outcome.Empty) != 3 {
		t.Errorf("Expected all eligible fields empty, got %d", len(outcome.Empty))
	}
	if outcome.Reasoning != "boom" {
		t.Errorf("Expected error text as reasoning, got %q", outcome.Reasoning)
	}
}

func TestMapper_Idempotent(t *testing.T) {
	cls := model.Classification{Title: "Inception", RawInput: "watch inception"}
	newProvider := func() *fakeProvider {
		return &fakeProvider{mapReply: &reason.MapReply{
			Mappings: []reason.ProposedMapping{
				{Field: "Name", Value: "Inception", Source: "user"},
				{Field: "Genre", Value: "Drama", Source: "ai"},
			},
		}}
	}

	first := NewMapper(newProvider()).Map(context.Background(), cls, movieSchema())
	second := NewMapper(newProvider()).Map(context.Background(), cls, movieSchema())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical outcomes:\n%+v\n%+v", first, second)
	}
}

func TestMapper_OptionsCappedAt20(t *testing.T) {
	options := make([]string, 30)
	for i := range options {
		options[i] = string(rune('a' + i))
	}
	schema := []model.FieldSchema{{Name: "Tag", Type: model.FieldSingleSelect, Options: options}}

	provider := &fakeProvider{}
	NewMapper(provider).Map(context.Background(), model.Classification{}, schema)

	if got := len(provider.lastMapReq.Fields[0].Options); got != 20 {
		t.Errorf("Expected 20 options in prompt, got %d", got)
	}
}
