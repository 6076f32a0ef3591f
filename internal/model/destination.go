package model

// FieldType is the fixed vocabulary of destination field types the codec
// understands. The store boundary normalizes its native names into this set;
// unrecognized types arrive as FieldText.
type FieldType string

const (
	FieldTitle        FieldType = "title"
	FieldText         FieldType = "text"
	FieldNumber       FieldType = "number"
	FieldSingleSelect FieldType = "single-select"
	FieldMultiSelect  FieldType = "multi-select"
	FieldStatus       FieldType = "status"
	FieldDate         FieldType = "date"
	FieldBoolean      FieldType = "boolean"
	FieldURL          FieldType = "url"
	FieldEmail        FieldType = "email"
	FieldPhone        FieldType = "phone"

	// Auto-computed kinds pass through the boundary by name so the mapper
	// can exclude them. The codec never encodes these.
	FieldFormula        FieldType = "formula"
	FieldRollup         FieldType = "rollup"
	FieldCreatedTime    FieldType = "created_time"
	FieldCreatedBy      FieldType = "created_by"
	FieldLastEditedTime FieldType = "last_edited_time"
	FieldLastEditedBy   FieldType = "last_edited_by"
)

// AutoComputed reports whether the destination computes this field itself.
// Such fields are never offered for mapping or enrichment.
func (t FieldType) AutoComputed() bool {
	switch t {
	case FieldFormula, FieldRollup, FieldCreatedTime, FieldCreatedBy, FieldLastEditedTime, FieldLastEditedBy:
		return true
	}
	return false
}

// FieldSchema describes one field of a document destination.
type FieldSchema struct {
	Name    string         `json:"name"`              // unique within the destination
	Type    FieldType      `json:"type"`
	Options []string       `json:"options,omitempty"` // ordered, select/status only
	Raw     map[string]any `json:"raw,omitempty"`     // opaque store-native config passthrough
}

// Destination is a schema-bearing document container. Transient: rebuilt
// from the store on every request, never cached across requests.
type Destination struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	URL    string        `json:"url,omitempty"`
	Fields []FieldSchema `json:"fields"`
}

// FieldNames returns up to max field names, in schema order.
func (d Destination) FieldNames(max int) []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		if len(names) >= max {
			break
		}
		names = append(names, f.Name)
	}
	return names
}

// FieldValue is the destination-native encoding of one field value, shaped
// for the store's create call (e.g. a date becomes a start-only range).
// A nil FieldValue means "leave the field unset".
type FieldValue map[string]any
