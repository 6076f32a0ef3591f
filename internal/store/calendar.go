package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dkaryakin/inflow/internal/model"
)

// CalendarClient talks to a Google-Calendar-style events API. The event
// shape is fixed; no schema discovery happens here.
type CalendarClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	calendarID string
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewCalendarClient creates a calendar client
func NewCalendarClient(cfg model.CalendarConfig, logger *zap.Logger) *CalendarClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		calendarID: calendarID,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		log:        logger,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

// CreateEvent creates one calendar event
func (c *CalendarClient) CreateEvent(ctx context.Context, event EventRecord) (*model.EventInfo, error) {
	body := eventBody{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       eventTime{DateTime: event.Start, TimeZone: event.TimeZone},
		End:         eventTime{DateTime: event.End, TimeZone: event.TimeZone},
	}
	if body.Summary == "" {
		body.Summary = "Untitled Event"
	}

	var created struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
	}
	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(c.calendarID))
	if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	c.log.Debug("calendar event created", zap.String("event_id", created.ID))
	return &model.EventInfo{
		Title:     body.Summary,
		EventID:   created.ID,
		Link:      created.HTMLLink,
		StartTime: event.Start,
		EndTime:   event.End,
		Location:  event.Location,
	}, nil
}

// DeleteEvent removes one calendar event
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(c.calendarID), url.PathEscape(eventID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// Status probes connectivity by retrieving the calendar itself
func (c *CalendarClient) Status(ctx context.Context) model.ConnectionStatus {
	if c.token == "" {
		return model.ConnectionStatus{Connected: false, Error: "no calendar token configured"}
	}

	var cal struct {
		Summary string `json:"summary"`
	}
	path := "/calendars/" + url.PathEscape(c.calendarID)
	if err := c.do(ctx, http.MethodGet, path, nil, &cal); err != nil {
		return model.ConnectionStatus{Connected: false, Error: err.Error()}
	}
	return model.ConnectionStatus{Connected: true, Detail: cal.Summary}
}

func (c *CalendarClient) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
