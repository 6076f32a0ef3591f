// Package store defines the destination collaborator contracts the pipeline
// consumes, plus HTTP clients implementing them. The pipeline only depends
// on the interfaces; every call is attempted exactly once, failures degrade
// the result upstream.
package store

import (
	"context"

	"github.com/dkaryakin/inflow/internal/model"
)

// DocumentStore is the schema-driven document destination.
type DocumentStore interface {
	// ListDestinations returns the candidate containers, each with its
	// field list. scopeHint optionally narrows to one parent scope.
	ListDestinations(ctx context.Context, scopeHint string) ([]model.Destination, error)

	// FetchSchema returns the authoritative field schema for one
	// destination. Always re-fetched; never served from a cache.
	FetchSchema(ctx context.Context, destinationID string) ([]model.FieldSchema, error)

	// CreateRecord creates one record with the given encoded properties.
	CreateRecord(ctx context.Context, destinationID string, properties map[string]model.FieldValue) (*model.RecordInfo, error)

	// Status probes connectivity, best-effort.
	Status(ctx context.Context) model.ConnectionStatus
}

// EventRecord is the fixed-shape calendar event. The calendar has no
// dynamic schema; these fields are known in advance.
type EventRecord struct {
	Title       string
	Description string
	Location    string
	Start       string // RFC 3339
	End         string // RFC 3339
	TimeZone    string // IANA name, e.g. "Europe/Berlin"
}

// CalendarStore is the calendar destination.
type CalendarStore interface {
	CreateEvent(ctx context.Context, event EventRecord) (*model.EventInfo, error)
	DeleteEvent(ctx context.Context, eventID string) error
	Status(ctx context.Context) model.ConnectionStatus
}
