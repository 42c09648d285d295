package rules

import (
	"context"
	"log/slog"

	"github.com/minicelia/celia/internal/types"
)

// RemoteValidator is the optional remote evaluation boundary. Implementations
// return an error on transport failure or unusable response shape.
type RemoteValidator interface {
	ValidateCompliance(ctx context.Context, contents map[types.SectionID]string) (types.ComplianceResult, error)
	ValidateCoherence(ctx context.Context, contents map[types.SectionID]string) (types.CoherenceResult, error)
}

// Service evaluates compliance and coherence, preferring the remote
// validator and falling back to the local rule tables transparently. Callers
// cannot distinguish remote from local evaluation by the result shape.
type Service struct {
	remote RemoteValidator
}

// NewService returns a Service. remote may be nil for local-only evaluation.
func NewService(remote RemoteValidator) *Service {
	return &Service{remote: remote}
}

// Compliance evaluates the regulatory markers.
func (s *Service) Compliance(ctx context.Context, contents map[types.SectionID]string) types.ComplianceResult {
	if s.remote != nil {
		result, err := s.remote.ValidateCompliance(ctx, contents)
		if err == nil {
			return result
		}
		slog.Debug("remote compliance unavailable, using local rules", "error", err)
	}
	return Compliance(contents)
}

// Coherence evaluates the cross-section weighting markers.
func (s *Service) Coherence(ctx context.Context, contents map[types.SectionID]string) types.CoherenceResult {
	if s.remote != nil {
		result, err := s.remote.ValidateCoherence(ctx, contents)
		if err == nil {
			return result
		}
		slog.Debug("remote coherence unavailable, using local rules", "error", err)
	}
	return Coherence(contents)
}
