package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minicelia/celia/internal/types"
)

// Compile-time interface check
var _ Generator = (*HTTPClient)(nil)

const (
	defaultStructuredLLM = "openai"
	defaultNarrativeLLM  = "groq"
)

// HTTPClient talks to the remote dossier generation service. All calls are
// bounded by the configured timeout; a timeout surfaces as ErrUnavailable,
// never a hang.
type HTTPClient struct {
	baseURL       string
	client        *http.Client
	structuredLLM string
	narrativeLLM  string
}

// NewHTTPClient creates a gateway client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:       baseURL,
		client:        &http.Client{Timeout: timeout},
		structuredLLM: defaultStructuredLLM,
		narrativeLLM:  defaultNarrativeLLM,
	}
}

// WithModels overrides the default model-selection hints forwarded on every
// generation request.
func (c *HTTPClient) WithModels(structured, narrative string) *HTTPClient {
	if structured != "" {
		c.structuredLLM = structured
	}
	if narrative != "" {
		c.narrativeLLM = narrative
	}
	return c
}

// generateRequest mirrors the remote service's request contract.
type generateRequest struct {
	UserInput struct {
		ExpedienteID string `json:"expediente_id"`
		Seccion      string `json:"seccion"`
		UserText     string `json:"user_text"`
	} `json:"user_input"`
	StructuredLLMChoice string `json:"structured_llm_choice"`
	NarrativeLLMChoice  string `json:"narrative_llm_choice"`
}

// Generate posts a generation request and returns the raw response body.
func (c *HTTPClient) Generate(ctx context.Context, params GenerateParams) ([]byte, error) {
	var body generateRequest
	body.UserInput.ExpedienteID = params.ExpedienteID
	body.UserInput.Seccion = params.Seccion
	body.UserInput.UserText = params.UserText
	body.StructuredLLMChoice = params.StructuredLLM
	if body.StructuredLLMChoice == "" {
		body.StructuredLLMChoice = c.structuredLLM
	}
	body.NarrativeLLMChoice = params.NarrativeLLM
	if body.NarrativeLLMChoice == "" {
		body.NarrativeLLMChoice = c.narrativeLLM
	}

	return c.post(ctx, "/justificacion/generar_jn", body)
}

// Health probes the service's health endpoint with a no-body GET.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// complianceRequest mirrors the remote validator contract.
type complianceRequest struct {
	Content map[types.SectionID]string `json:"content"`
	Checks  []string                   `json:"checks"`
}

type coherenceRequest struct {
	Sections map[types.SectionID]string `json:"sections"`
}

// ValidateCompliance asks the remote validator for a compliance evaluation.
// An unusable response shape is an error so the caller can fall back to the
// local rules.
func (c *HTTPClient) ValidateCompliance(ctx context.Context, contents map[types.SectionID]string) (types.ComplianceResult, error) {
	body := complianceRequest{
		Content: contents,
		Checks:  []string{"DNSH", "RGPD", "fraccionamiento"},
	}
	raw, err := c.post(ctx, "/validate/compliance", body)
	if err != nil {
		return types.ComplianceResult{}, err
	}
	var envelope struct {
		ValidationResults *types.ComplianceResult `json:"validation_results"`
		types.ComplianceResult
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return types.ComplianceResult{}, fmt.Errorf("decode compliance response: %w", err)
	}
	if envelope.ValidationResults != nil {
		return *envelope.ValidationResults, nil
	}
	if envelope.Missing == nil {
		return types.ComplianceResult{}, fmt.Errorf("compliance response missing result fields")
	}
	return envelope.ComplianceResult, nil
}

// ValidateCoherence asks the remote validator for a coherence evaluation.
func (c *HTTPClient) ValidateCoherence(ctx context.Context, contents map[types.SectionID]string) (types.CoherenceResult, error) {
	raw, err := c.post(ctx, "/validate/coherence", coherenceRequest{Sections: contents})
	if err != nil {
		return types.CoherenceResult{}, err
	}
	var envelope struct {
		CoherenceResults *types.CoherenceResult `json:"coherence_results"`
		types.CoherenceResult
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return types.CoherenceResult{}, fmt.Errorf("decode coherence response: %w", err)
	}
	if envelope.CoherenceResults != nil {
		return *envelope.CoherenceResults, nil
	}
	if !envelope.Checked {
		return types.CoherenceResult{}, fmt.Errorf("coherence response missing result fields")
	}
	return envelope.CoherenceResult, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return raw, nil
}
