// Package triage implements the capture routing and dynamic property
// mapping pipeline: destination selection, type-directed field mapping,
// bounded enrichment, calendar routing, and the orchestrator tying them
// together. Every stage degrades on collaborator failure; none panics or
// propagates an error past the orchestrator.
package triage

import (
	"context"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
)

// minSelectionConfidence is the acceptance threshold for a reasoned match.
const minSelectionConfidence = 0.5

// degradedConfidence is reported when selection falls back to the first
// candidate because no reasoning backend is configured.
const degradedConfidence = 0.3

// maxCandidateFields caps how many field names each candidate contributes
// to the selection prompt.
const maxCandidateFields = 15

// Selection is the destination-selection verdict.
type Selection struct {
	Matched     bool
	Destination *model.Destination
	Confidence  float64
	Reason      string
}

// Selector picks the single best document destination for a capture.
type Selector struct {
	provider reason.Provider // nil when reasoning is disabled
}

// NewSelector creates a selector. provider may be nil.
func NewSelector(provider reason.Provider) *Selector {
	return &Selector{provider: provider}
}

// Select never returns an error: collaborator failures become a failed
// Selection carrying the error text as reason.
func (s *Selector) Select(ctx context.Context, cls model.Classification, candidates []model.Destination) Selection {
	if len(candidates) == 0 {
		return Selection{Matched: false, Reason: "no destinations available"}
	}

	// Reasoning disabled is a valid state: take the first candidate rather
	// than blocking the capture.
	if s.provider == nil {
		return Selection{
			Matched:     true,
			Destination: &candidates[0],
			Confidence:  degradedConfidence,
			Reason:      "reasoning backend not configured - using first destination",
		}
	}

	req := reason.SelectRequest{Classification: cls}
	for i, cand := range candidates {
		req.Candidates = append(req.Candidates, reason.Candidate{
			Index:      i,
			Title:      cand.Title,
			FieldNames: cand.FieldNames(maxCandidateFields),
		})
	}

	reply, err := s.provider.SelectDestination(ctx, req)
	if err != nil {
		return Selection{Matched: false, Confidence: 0, Reason: err.Error()}
	}

	inRange := reply.Index >= 0 && reply.Index < len(candidates)
	if reply.FoundMatch && inRange && reply.Confidence >= minSelectionConfidence {
		return Selection{
			Matched:     true,
			Destination: &candidates[reply.Index],
			Confidence:  reply.Confidence,
			Reason:      reply.Reason,
		}
	}

	failReason := reply.Reason
	if failReason == "" {
		failReason = "no suitable destination found"
	}
	return Selection{Matched: false, Confidence: reply.Confidence, Reason: failReason}
}
