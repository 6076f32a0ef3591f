package triage

import (
	"context"
	"time"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/store"
)

// defaultEventStartHour anchors the fallback window when a classified event
// carries no usable start time: 09:00-10:00 local.
const defaultEventStartHour = 9

// CalendarRouter builds the fixed-shape event record for event-classified
// captures and hands it to the calendar collaborator. No schema discovery:
// the calendar's shape is known in advance.
type CalendarRouter struct {
	calendar store.CalendarStore
	now      func() time.Time
}

// NewCalendarRouter creates a calendar router
func NewCalendarRouter(calendar store.CalendarStore, now func() time.Time) *CalendarRouter {
	if now == nil {
		now = time.Now
	}
	return &CalendarRouter{calendar: calendar, now: now}
}

// BuildEvent assembles the event record from the classification alone.
func (r *CalendarRouter) BuildEvent(cls model.Classification) store.EventRecord {
	now := r.now()
	loc := now.Location()

	start, ok := parseEventTime(cls.StartTime, loc)
	if !ok {
		start = time.Date(now.Year(), now.Month(), now.Day(), defaultEventStartHour, 0, 0, 0, loc)
	}
	end, ok := parseEventTime(cls.EndTime, loc)
	if !ok || !end.After(start) {
		end = start.Add(time.Hour)
	}

	return store.EventRecord{
		Title:       cls.Title,
		Description: cls.Description,
		Location:    cls.Location,
		Start:       start.UTC().Format(time.RFC3339),
		End:         end.UTC().Format(time.RFC3339),
		TimeZone:    loc.String(),
	}
}

// Route creates the event. Collaborator failure surfaces as-is; there is
// exactly one attempt.
func (r *CalendarRouter) Route(ctx context.Context, cls model.Classification) (*model.EventInfo, error) {
	return r.calendar.CreateEvent(ctx, r.BuildEvent(cls))
}

// parseEventTime parses an ISO-8601-ish datetime, treating naive values as
// local time.
func parseEventTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if layout == "2006-01-02" {
				// Date-only events still get the default morning slot.
				return time.Date(t.Year(), t.Month(), t.Day(), defaultEventStartHour, 0, 0, 0, loc), true
			}
			return t, true
		}
	}
	return time.Time{}, false
}
