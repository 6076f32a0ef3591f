package model

// Category routes a capture to one of the two destinations
type Category string

const (
	CategoryEvent Category = "event" // goes to the calendar
	CategoryOther Category = "other" // goes to the document store
)

// NormalizeCategory maps unknown category strings to CategoryOther
func NormalizeCategory(s string) Category {
	switch Category(s) {
	case CategoryEvent:
		return CategoryEvent
	default:
		return CategoryOther
	}
}

// Classification is the structured triage result produced by the classifier.
// It is built once per capture and never mutated afterwards.
type Classification struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	ContentType string   `json:"content_type,omitempty"` // e.g. "note", "task", "movie"
	Confidence  float64  `json:"confidence"`             // classifier confidence, 0.0-1.0
	RawInput    string   `json:"raw_input"`              // verbatim captured text

	// Event fields (ISO-8601 local datetimes with offset)
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Location  string `json:"location,omitempty"`

	// Scheduling fields. DoDate is when the user intends to act,
	// Deadline is a hard due date. These are distinct from CapturedAt
	// and must never substitute for one another.
	DoDate   string `json:"do_date,omitempty"`
	Deadline string `json:"deadline,omitempty"`

	// CapturedAt is the capture timestamp in the user's local timezone.
	CapturedAt string `json:"captured_at,omitempty"`

	Analysis string `json:"analysis,omitempty"` // free-text classifier notes
}
