// Package celia is the Go client for the Mini-CELIA dossier service.
package celia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the server address, e.g. "http://localhost:8080".
	BaseURL string

	// APIKey is sent as a Bearer token. The admin key unlocks the
	// privileged operations (generate-all, md/doc/json exports).
	APIKey string

	// Timeout bounds every request. Defaults to 30 seconds.
	Timeout time.Duration
}

// Client talks to a Mini-CELIA server.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// APIError is an RFC 7807 problem returned by the server.
type APIError struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("celia: %s (%d): %s", e.Title, e.Status, e.Detail)
}

// New creates a new Client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		client:  &http.Client{Timeout: config.Timeout},
	}, nil
}

// Health reports server and generation-backend health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// State returns the full session state, draft and progress.
func (c *Client) State(ctx context.Context) (*StateResponse, error) {
	var out StateResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/state", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat submits one dialogue turn.
func (c *Client) Chat(ctx context.Context, text string) (*ChatResponse, error) {
	var out ChatResponse
	in := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartCategory begins the guided flow for a tender category. The server
// answers by asking for the expediente identifier.
func (c *Client) StartCategory(ctx context.Context, category string) (*ChatResponse, error) {
	return c.chatExample(ctx, category, "")
}

// RunExample runs the shortcut path with a pre-filled description.
func (c *Client) RunExample(ctx context.Context, category, text string) (*ChatResponse, error) {
	return c.chatExample(ctx, category, text)
}

func (c *Client) chatExample(ctx context.Context, category, text string) (*ChatResponse, error) {
	var out ChatResponse
	in := map[string]string{"category": category, "text": text}
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat/example", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Examples returns the fixed example template table.
func (c *Client) Examples(ctx context.Context) ([]ExampleCategory, error) {
	var out struct {
		Categories []ExampleCategory `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/examples", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Clarify suggests follow-up questions for a tender description.
func (c *Client) Clarify(ctx context.Context, text string) ([]Clarification, error) {
	var out struct {
		Clarifications []Clarification `json:"clarifications"`
	}
	in := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/api/v1/clarify", in, &out); err != nil {
		return nil, err
	}
	return out.Clarifications, nil
}

// SetContext updates one context field (proceso, entidad or fecha).
func (c *Client) SetContext(ctx context.Context, field, value string) (*ContextResponse, error) {
	var out ContextResponse
	in := map[string]string{"field": field, "value": value}
	if err := c.do(ctx, http.MethodPost, "/api/v1/context", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateSection triggers a quick generation of one section by identifier
// (JN, PPT, CEC or CR).
func (c *Client) GenerateSection(ctx context.Context, id string) (*SectionResponse, error) {
	var out SectionResponse
	path := "/api/v1/sections/" + url.PathEscape(id) + "/generate"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAll generates every section in canonical order. Requires the
// admin key.
func (c *Client) GenerateAll(ctx context.Context) (*StateResponse, error) {
	var out StateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sections/generate-all", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCompliance runs the regulatory marker checks.
func (c *Client) ValidateCompliance(ctx context.Context) (*ComplianceResult, error) {
	var out ComplianceResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/validate/compliance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCoherence runs the cross-section consistency check.
func (c *Client) ValidateCoherence(ctx context.Context) (*CoherenceResult, error) {
	var out CoherenceResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/validate/coherence", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddDraftSection stages a section for export. Empty content is ignored by
// the server.
func (c *Client) AddDraftSection(ctx context.Context, name, content string) (*Draft, error) {
	var out Draft
	in := map[string]string{"name": name, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/v1/draft", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDraftSection replaces the content of a staged section.
func (c *Client) UpdateDraftSection(ctx context.Context, name, content string) (*Draft, error) {
	var out Draft
	in := map[string]string{"content": content}
	path := "/api/v1/draft/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodPut, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveDraftSection removes one staged section.
func (c *Client) RemoveDraftSection(ctx context.Context, name string) (*Draft, error) {
	var out Draft
	path := "/api/v1/draft/" + url.PathEscape(name)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearDraft empties the staging area.
func (c *Client) ClearDraft(ctx context.Context) (*Draft, error) {
	var out Draft
	if err := c.do(ctx, http.MethodDelete, "/api/v1/draft", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads one rendered artifact. Formats md, doc and json require
// the admin key; chat and pdf are open to any authorized caller.
func (c *Client) Export(ctx context.Context, format string) (*ExportFile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/export/"+url.PathEscape(format), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("celia: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeProblem(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("celia: read export: %w", err)
	}

	file := &ExportFile{
		MIMEType: resp.Header.Get("Content-Type"),
		Content:  content,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Name = params["filename"]
	}
	return file, nil
}

// SaveSession persists the current session snapshot on the server.
func (c *Client) SaveSession(ctx context.Context) (*SaveResult, error) {
	var out SaveResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/session/save", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadSession restores the last persisted snapshot.
func (c *Client) LoadSession(ctx context.Context) (*LoadResult, error) {
	var out LoadResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/session/load", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("celia: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("celia: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("celia: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeProblem(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("celia: decode response: %w", err)
	}
	return nil
}

func decodeProblem(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	_ = json.NewDecoder(resp.Body).Decode(apiErr)
	apiErr.Status = resp.StatusCode
	return apiErr
}
