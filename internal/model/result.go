package model

// FilledField records one field that was filled, with provenance.
type FilledField struct {
	Field     string    `json:"field"`
	Value     string    `json:"value"` // original value, truncated to 100 chars
	Source    string    `json:"source,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
	Type      FieldType `json:"type,omitempty"`
}

// EmptyField records one eligible field that was left unset.
type EmptyField struct {
	Field  string    `json:"field"`
	Type   FieldType `json:"type,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Summary explains what the pipeline did with one capture. It is a
// first-class output: every unfilled field and unused destination must be
// explainable from it.
type Summary struct {
	Destination      string        `json:"destination,omitempty"`       // "Calendar" or "Documents"
	DestinationTitle string        `json:"destination_title,omitempty"` // chosen document destination title
	FilledFromUser   []FilledField `json:"filled_from_user"`
	FilledByAI       []FilledField `json:"filled_by_ai"`
	LeftEmpty        []EmptyField  `json:"left_empty"`

	SelectionFailed     bool    `json:"selection_failed,omitempty"`
	SelectionReason     string  `json:"selection_reason,omitempty"`
	SelectionConfidence float64 `json:"selection_confidence,omitempty"`
	MappingReasoning    string  `json:"mapping_reasoning,omitempty"`
}

// EventInfo describes a created calendar entry.
type EventInfo struct {
	Title     string `json:"title"`
	EventID   string `json:"event_id,omitempty"`
	Link      string `json:"link,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Location  string `json:"location,omitempty"`
}

// RecordInfo describes a created document-store record.
type RecordInfo struct {
	RecordID    string `json:"record_id,omitempty"`
	URL         string `json:"url,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// ConnectionStatus is a best-effort connectivity snapshot of one destination.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CaptureResult is the externally visible outcome of one orchestration run.
type CaptureResult struct {
	CaptureID  string   `json:"capture_id"`
	Status     string   `json:"status"`
	Category   Category `json:"category"`
	Title      string   `json:"title"`
	Confidence float64  `json:"confidence"`
	FailedStep string   `json:"failed_step,omitempty"`

	// Calendar branch
	CalendarEventCreated bool       `json:"calendar_event_created,omitempty"`
	EventInfo            *EventInfo `json:"event_info,omitempty"`
	CalendarError        string     `json:"calendar_error,omitempty"`

	// Document branch
	RecordCreated bool        `json:"record_created,omitempty"`
	RecordInfo    *RecordInfo `json:"record_info,omitempty"`
	DocumentError string      `json:"document_error,omitempty"`

	Summary Summary `json:"summary"`

	DocumentsStatus ConnectionStatus `json:"documents_status"`
	CalendarStatus  ConnectionStatus `json:"calendar_status"`
}

// AuditEntry is a flattened, human-readable description of one run,
// written best-effort to a log-like destination.
type AuditEntry struct {
	Action      string `json:"action"`
	Timestamp   string `json:"timestamp"` // ISO-8601 with offset
	Result      string `json:"result"`    // "Success" or "Failed"
	Destination string `json:"destination"`
	Details     string `json:"details"`
}
