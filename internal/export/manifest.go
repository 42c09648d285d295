package export

import (
	"encoding/json"
	"time"

	"github.com/minicelia/celia/internal/types"
)

// Static provenance strings stamped into every manifest.
const (
	manifestName    = "Mini-CELIA PoC"
	promptsVersion  = "v0.1-canon"
	goldenRepoHash  = "sim-hash-abc123"
	manifestTimeFmt = time.RFC3339
)

// manifest is the fixed-shape JSON export: a timestamp, the context fields,
// an empty sections placeholder, defaulted validation shapes, and the two
// provenance strings.
type manifest struct {
	Name           string                 `json:"name"`
	GeneratedAt    string                 `json:"generatedAt"`
	Context        types.Context          `json:"context"`
	Sections       []string               `json:"sections"`
	Compliance     types.ComplianceResult `json:"compliance"`
	Coherence      types.CoherenceResult  `json:"coherence"`
	PromptsVersion string                 `json:"promptsVersion"`
	GoldenRepoHash string                 `json:"goldenRepoHash"`
}

// BuildManifest renders the manifest JSON, indented for readability.
func BuildManifest(ctx types.Context) ([]byte, error) {
	m := manifest{
		Name:           manifestName,
		GeneratedAt:    time.Now().UTC().Format(manifestTimeFmt),
		Context:        ctx,
		Sections:       []string{},
		Compliance:     types.ComplianceResult{Missing: []string{}},
		Coherence:      types.CoherenceResult{Notes: []string{}},
		PromptsVersion: promptsVersion,
		GoldenRepoHash: goldenRepoHash,
	}
	return json.MarshalIndent(m, "", "  ")
}
