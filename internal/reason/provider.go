// Package reason wraps the optional reasoning backend behind a typed
// contract. Free-text parsing fragility stays inside this boundary: every
// operation returns a typed reply or an error, never raw model output.
// A nil Provider is a valid, handled state everywhere in the pipeline.
package reason

import (
	"context"

	"github.com/dkaryakin/inflow/internal/model"
)

// Provider defines the interface for reasoning backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify turns raw captured text into a structured classification.
	Classify(ctx context.Context, req ClassifyRequest) (*model.Classification, error)

	// SelectDestination picks the best document destination for a capture.
	SelectDestination(ctx context.Context, req SelectRequest) (*SelectReply, error)

	// MapFields proposes at most one value per eligible destination field.
	MapFields(ctx context.Context, req MapRequest) (*MapReply, error)

	// IdentifyResearchable reports which empty fields are factually
	// derivable from the captured content alone.
	IdentifyResearchable(ctx context.Context, req IdentifyRequest) (*IdentifyReply, error)

	// EnrichFields produces best-effort values for researchable fields.
	EnrichFields(ctx context.Context, req EnrichRequest) (*EnrichReply, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest carries one capture into the classifier.
type ClassifyRequest struct {
	Input      string // normalized captured text
	CapturedAt string // ISO-8601 local capture timestamp with offset
}

// Candidate summarizes one destination for the selection prompt.
type Candidate struct {
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	FieldNames []string `json:"fields"` // at most 15
}

// SelectRequest asks which candidate fits the classified capture.
type SelectRequest struct {
	Classification model.Classification
	Candidates     []Candidate
}

// SelectReply is the structured selection verdict.
type SelectReply struct {
	FoundMatch bool    `json:"found_match"`
	Index      int     `json:"selected_index"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// FieldSpec describes one destination field offered for mapping,
// identification, or enrichment.
type FieldSpec struct {
	Name    string          `json:"name"`
	Type    model.FieldType `json:"type"`
	Options []string        `json:"options,omitempty"`
}

// MapRequest asks for field-value proposals against a destination schema.
type MapRequest struct {
	Classification model.Classification
	Fields         []FieldSpec // eligible fields only, options capped at 20
}

// ProposedMapping is one field-value proposal with provenance.
type ProposedMapping struct {
	Field     string `json:"field"`
	Value     any    `json:"value"`
	Source    string `json:"source"` // "user" or "ai"
	Reasoning string `json:"reasoning"`
}

// MapReply is the structured mapping proposal set.
type MapReply struct {
	Mappings  []ProposedMapping `json:"mappings"`
	Reasoning string            `json:"overall_reasoning"`
}

// IdentifyRequest asks which empty fields are researchable.
type IdentifyRequest struct {
	Classification model.Classification
	Fields         []FieldSpec // still-empty fields, options capped at 15
}

// IdentifyReply lists the fields worth a secondary inference pass.
type IdentifyReply struct {
	Researchable []FieldSpec `json:"researchable"`
}

// EnrichRequest asks for values for the researchable fields.
type EnrichRequest struct {
	Classification model.Classification
	Fields         []FieldSpec
}

// EnrichReply maps field name to inferred value. Nil values are dropped
// before the reply leaves the provider.
type EnrichReply struct {
	Values map[string]any
}

// Config holds reasoning backend configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the backend
	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 2000,
	}
}
