package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dkaryakin/inflow/internal/model"
)

// DocumentClient talks to a Notion-compatible document store over REST.
// Stateless with respect to captures: destination lists and schemas are
// fetched fresh per request. Only the connectivity probe is cached, which
// never affects routing or mapping behavior.
type DocumentClient struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	apiVersion  string
	limiter     *rate.Limiter
	statusCache *gocache.Cache
	statusTTL   time.Duration
	log         *zap.Logger
}

// NewDocumentClient creates a document-store client
func NewDocumentClient(cfg model.DocumentsConfig, logger *zap.Logger) *DocumentClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.StatusTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DocumentClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		apiVersion:  cfg.APIVersion,
		limiter:     rate.NewLimiter(rate.Limit(3), 3), // store-wide API budget
		statusCache: gocache.New(ttl, 2*ttl),
		statusTTL:   ttl,
		log:         logger,
	}
}

// wire shapes

type searchResponse struct {
	Results []containerObject `json:"results"`
}

type containerObject struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title []struct {
		Text struct {
			Content string `json:"content"`
		} `json:"text"`
	} `json:"title"`
	Parent struct {
		Type   string `json:"type"`
		PageID string `json:"page_id"`
	} `json:"parent"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type propertyObject struct {
	Type        string      `json:"type"`
	Select      *optionList `json:"select"`
	MultiSelect *optionList `json:"multi_select"`
	Status      *optionList `json:"status"`
}

type optionList struct {
	Options []struct {
		Name string `json:"name"`
	} `json:"options"`
}

// ListDestinations returns all containers the integration can reach,
// optionally filtered to one parent scope.
func (c *DocumentClient) ListDestinations(ctx context.Context, scopeHint string) ([]model.Destination, error) {
	body := map[string]any{
		"filter": map[string]any{"property": "object", "value": "database"},
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}

	destinations := make([]model.Destination, 0, len(resp.Results))
	for _, obj := range resp.Results {
		if scopeHint != "" && obj.Parent.Type != "workspace" && obj.Parent.PageID != scopeHint {
			continue
		}
		destinations = append(destinations, model.Destination{
			ID:     obj.ID,
			Title:  containerTitle(obj),
			URL:    obj.URL,
			Fields: parseFields(obj.Properties),
		})
	}

	c.log.Debug("listed destinations", zap.Int("count", len(destinations)))
	return destinations, nil
}

// FetchSchema returns the authoritative field schema for one destination
func (c *DocumentClient) FetchSchema(ctx context.Context, destinationID string) ([]model.FieldSchema, error) {
	var obj containerObject
	if err := c.do(ctx, http.MethodGet, "/databases/"+destinationID, nil, &obj); err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	return parseFields(obj.Properties), nil
}

// CreateRecord creates one record with the given encoded properties
func (c *DocumentClient) CreateRecord(ctx context.Context, destinationID string, properties map[string]model.FieldValue) (*model.RecordInfo, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": destinationID},
		"properties": properties,
	}

	var created struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", body, &created); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return &model.RecordInfo{RecordID: created.ID, URL: created.URL}, nil
}

// Status probes connectivity. The probe result is cached briefly so that
// per-request snapshots don't double the API traffic.
func (c *DocumentClient) Status(ctx context.Context) model.ConnectionStatus {
	if c.token == "" {
		return model.ConnectionStatus{Connected: false, Error: "no API token configured"}
	}

	if cached, found := c.statusCache.Get("status"); found {
		return cached.(model.ConnectionStatus)
	}

	var me struct {
		Name string `json:"name"`
	}
	status := model.ConnectionStatus{Connected: true}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &me); err != nil {
		status = model.ConnectionStatus{Connected: false, Error: err.Error()}
	} else {
		status.Detail = me.Name
	}

	c.statusCache.Set("status", status, c.statusTTL)
	return status
}

// do runs one API call with auth headers, rate limiting, and JSON decoding
func (c *DocumentClient) do(ctx context.Context, method, path string, body, out any) error {
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
	if c.apiVersion != "" {
		req.Header.Set("Notion-Version", c.apiVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
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

func containerTitle(obj containerObject) string {
	if len(obj.Title) == 0 || obj.Title[0].Text.Content == "" {
		return "Untitled"
	}
	return obj.Title[0].Text.Content
}

// parseFields normalizes store-native property schemas into the codec's
// field vocabulary. Auto-computed kinds pass through by name so the mapper
// can exclude them; anything unrecognized becomes plain text here, at the
// boundary, never inside the core.
func parseFields(properties map[string]json.RawMessage) []model.FieldSchema {
	fields := make([]model.FieldSchema, 0, len(properties))
	for name, rawConfig := range properties {
		var prop propertyObject
		if err := json.Unmarshal(rawConfig, &prop); err != nil {
			continue
		}

		var raw map[string]any
		_ = json.Unmarshal(rawConfig, &raw)

		fields = append(fields, model.FieldSchema{
			Name:    name,
			Type:    normalizeFieldType(prop.Type),
			Options: optionNames(prop),
			Raw:     raw,
		})
	}
	return fields
}

func normalizeFieldType(native string) model.FieldType {
	switch native {
	case "title":
		return model.FieldTitle
	case "rich_text":
		return model.FieldText
	case "number":
		return model.FieldNumber
	case "select":
		return model.FieldSingleSelect
	case "multi_select":
		return model.FieldMultiSelect
	case "status":
		return model.FieldStatus
	case "date":
		return model.FieldDate
	case "checkbox":
		return model.FieldBoolean
	case "url":
		return model.FieldURL
	case "email":
		return model.FieldEmail
	case "phone_number":
		return model.FieldPhone
	case "formula", "rollup", "created_time", "created_by", "last_edited_time", "last_edited_by":
		return model.FieldType(native)
	default:
		return model.FieldText
	}
}

func optionNames(prop propertyObject) []string {
	var list *optionList
	switch {
	case prop.Select != nil:
		list = prop.Select
	case prop.MultiSelect != nil:
		list = prop.MultiSelect
	case prop.Status != nil:
		list = prop.Status
	default:
		return nil
	}

	names := make([]string, 0, len(list.Options))
	for _, opt := range list.Options {
		names = append(names, opt.Name)
	}
	return names
}

func truncateBody(raw []byte) string {
	const max = 300
	if len(raw) > max {
		raw = raw[:max]
	}
	return string(raw)
}
