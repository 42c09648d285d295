package celia

import "time"

// SectionStatus is the lifecycle state of a dossier section.
type SectionStatus string

const (
	StatusPending   SectionStatus = "pendiente"
	StatusGenerated SectionStatus = "generado"
	StatusReviewed  SectionStatus = "revisado"
)

// Section is one dossier section as reported by the server.
type Section struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    SectionStatus `json:"status"`
	Content   string        `json:"content"`
	Citations []string      `json:"citations"`
}

// Context is the procurement context shared by all sections.
type Context struct {
	Proceso string `json:"proceso"`
	Entidad string `json:"entidad"`
	Fecha   string `json:"fecha"`
}

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ComplianceResult reports the regulatory marker checks.
type ComplianceResult struct {
	DNSH    bool     `json:"DNSH"`
	PRTR    bool     `json:"PRTR"`
	RGPD    bool     `json:"RGPD"`
	Fracc   bool     `json:"Fracc"`
	Missing []string `json:"Missing"`
}

// CoherenceResult reports the cross-section consistency check.
type CoherenceResult struct {
	Checked bool     `json:"checked"`
	Ok      bool     `json:"ok"`
	Notes   []string `json:"notes"`
}

// Draft is the staging area for export.
type Draft struct {
	Sections map[string]string `json:"sections"`
	Order    []string          `json:"order"`
}

// SessionState is the full dialogue and dossier state.
type SessionState struct {
	Ctx        Context          `json:"ctx"`
	Steps      []Section        `json:"steps"`
	Compliance ComplianceResult `json:"compliance"`
	Coherence  CoherenceResult  `json:"coherence"`
	Chat       []ChatMessage    `json:"chat"`
}

// Progress summarizes completion of the dossier.
type Progress struct {
	Percent       int `json:"percent"`
	ContextFilled int `json:"context_filled"`
	ContextTotal  int `json:"context_total"`
}

// HealthStatus is the server's health report.
type HealthStatus struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Generation string `json:"generation"`
}

// StateResponse is the combined state view returned by State and GenerateAll.
type StateResponse struct {
	State    SessionState `json:"state"`
	Draft    Draft        `json:"draft"`
	Progress Progress     `json:"progress"`
	Flow     string       `json:"flow"`
}

// ChatResponse carries the transcript after a dialogue turn.
type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
	Flow     string        `json:"flow"`
}

// ContextResponse carries the context after an update.
type ContextResponse struct {
	Ctx      Context  `json:"ctx"`
	Progress Progress `json:"progress"`
}

// SectionResponse carries one section after a quick generation.
type SectionResponse struct {
	Section  Section       `json:"section"`
	Messages []ChatMessage `json:"messages"`
}

// Example is a pre-filled tender description.
type Example struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ExampleCategory groups examples by tender category.
type ExampleCategory struct {
	Category string    `json:"category"`
	Examples []Example `json:"examples"`
}

// Clarification is a follow-up question suggested for a description.
type Clarification struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Suggestions []string `json:"suggestions"`
}

// ExportFile is a rendered export artifact.
type ExportFile struct {
	Name     string
	MIMEType string
	Content  []byte
}

// SaveResult reports a persisted snapshot.
type SaveResult struct {
	Saved   bool   `json:"saved"`
	SavedAt string `json:"saved_at"`
}

// LoadResult reports a restored snapshot.
type LoadResult struct {
	Loaded  bool         `json:"loaded"`
	SavedAt string       `json:"saved_at"`
	State   SessionState `json:"state"`
	Draft   Draft        `json:"draft"`
}
