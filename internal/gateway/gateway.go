// Package gateway is the boundary to the remote generation service. It
// issues requests and returns raw response payloads or transport failures;
// interpreting the payload is the normalizer's job.
package gateway

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the generation service could not be reached or
// answered outside the bounded timeout.
var ErrUnavailable = errors.New("generation service unavailable")

// Generator issues generation requests against the remote service.
type Generator interface {
	// Generate returns the raw, shape-unknown response payload.
	Generate(ctx context.Context, req GenerateParams) ([]byte, error)
	// Health probes service connectivity. It only flips an indicator;
	// no core behavior depends on it.
	Health(ctx context.Context) error
}

// GenerateParams carries the inputs of one generation call.
type GenerateParams struct {
	ExpedienteID string
	Seccion      string
	UserText     string

	// Optional model-selection hints; the client applies defaults.
	StructuredLLM string
	NarrativeLLM  string
}

// ChatResponder produces a free-form reply for turns that match no intent.
type ChatResponder interface {
	Respond(ctx context.Context, message string) (string, error)
}
