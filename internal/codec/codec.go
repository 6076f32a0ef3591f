// Package codec converts semantic values into the typed, store-native
// representation each destination field type requires. All functions are
// pure: no I/O, no panics. Unconvertible input yields nil, which callers
// treat as "leave the field unset".
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkaryakin/inflow/internal/model"
)

const (
	maxTextLen   = 2000
	maxOptionLen = 100
	maxTags      = 10
)

// Encode converts value into the store-native shape for fieldType.
// Returns nil when the value is nil, the type is unknown, or the value
// cannot be represented as that type.
func Encode(fieldType model.FieldType, value any, schema model.FieldSchema) model.FieldValue {
	if value == nil {
		return nil
	}

	switch fieldType {
	case model.FieldTitle:
		return richText("title", stringify(value))

	case model.FieldText:
		return richText("rich_text", stringify(value))

	case model.FieldNumber:
		n, ok := toNumber(value)
		if !ok {
			return nil
		}
		return model.FieldValue{"number": n}

	case model.FieldSingleSelect:
		name := strings.TrimSpace(stringify(value))
		if opt, ok := matchOption(name, schema.Options); ok {
			return model.FieldValue{"select": map[string]any{"name": opt}}
		}
		// Unmatched values pass through; the store may create a new option.
		return model.FieldValue{"select": map[string]any{"name": truncate(name, maxOptionLen)}}

	case model.FieldStatus:
		name := strings.TrimSpace(stringify(value))
		if opt, ok := matchOption(name, schema.Options); ok {
			return model.FieldValue{"status": map[string]any{"name": opt}}
		}
		// Status options are closed: fall back to the first one.
		if len(schema.Options) > 0 {
			return model.FieldValue{"status": map[string]any{"name": schema.Options[0]}}
		}
		return nil

	case model.FieldMultiSelect:
		return model.FieldValue{"multi_select": toTags(value)}

	case model.FieldDate:
		return model.FieldValue{"date": map[string]any{"start": normalizeDate(stringify(value))}}

	case model.FieldBoolean:
		if b, ok := value.(bool); ok {
			return model.FieldValue{"checkbox": b}
		}
		s := strings.ToLower(stringify(value))
		return model.FieldValue{"checkbox": s == "true" || s == "yes" || s == "1"}

	case model.FieldURL:
		return model.FieldValue{"url": stringify(value)}

	case model.FieldEmail:
		return model.FieldValue{"email": stringify(value)}

	case model.FieldPhone:
		return model.FieldValue{"phone_number": stringify(value)}
	}

	return nil
}

func richText(key, content string) model.FieldValue {
	return model.FieldValue{
		key: []any{
			map[string]any{"text": map[string]any{"content": truncate(content, maxTextLen)}},
		},
	}
}

// matchOption finds a case-insensitive match and returns the canonical-cased
// option from the schema.
func matchOption(value string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt, true
		}
	}
	return "", false
}

// toTags builds the multi-select tag list: up to the first 10 elements of a
// list, or a single tag for scalar input.
func toTags(value any) []any {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		items = []any{value}
	}

	if len(items) > maxTags {
		items = items[:maxTags]
	}

	tags := make([]any, 0, len(items))
	for _, item := range items {
		tags = append(tags, map[string]any{"name": truncate(stringify(item), maxOptionLen)})
	}
	return tags
}

// normalizeDate shapes an ISO-8601-ish string for the store's start-only
// date range. A value with a time component keeps an explicit offset or
// trailing Z verbatim; otherwise it is cut to second precision. A value
// without a time component is cut to the date alone.
func normalizeDate(s string) string {
	tIdx := strings.Index(s, "T")
	if tIdx < 0 {
		return truncate(s, 10)
	}
	timePart := s[tIdx+1:]
	if strings.HasSuffix(s, "Z") || strings.ContainsAny(timePart, "+-") {
		return s
	}
	return truncate(s, 19)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// truncate cuts s to at most n runes without splitting a multibyte character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Truncate is the rune-safe truncation used across the pipeline for
// provenance values and audit details.
func Truncate(s string, n int) string {
	return truncate(s, n)
}

// Stringify renders any semantic value as a string the way the codec does.
func Stringify(value any) string {
	return stringify(value)
}
