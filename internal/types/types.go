package types

import (
	"encoding/json"
	"time"
)

// SectionID identifies one of the four canonical dossier sections.
type SectionID string

const (
	SectionJN  SectionID = "JN"
	SectionPPT SectionID = "PPT"
	SectionCEC SectionID = "CEC"
	SectionCR  SectionID = "CR"
)

// CanonicalOrder is the fixed generation and export order of the dossier.
var CanonicalOrder = []SectionID{SectionJN, SectionPPT, SectionCEC, SectionCR}

// SectionName returns the display name for a canonical section.
func SectionName(id SectionID) string {
	switch id {
	case SectionJN:
		return "Justificación de la Necesidad"
	case SectionPPT:
		return "Pliego Técnico"
	case SectionCEC:
		return "Presupuesto (CEC)"
	case SectionCR:
		return "Cuadro Resumen (CR)"
	}
	return string(id)
}

// SectionStatus represents the lifecycle status of a section.
type SectionStatus string

const (
	StatusPending   SectionStatus = "pendiente"
	StatusGenerated SectionStatus = "generado"
	StatusReviewed  SectionStatus = "revisado"
)

// Section is one canonical dossier part. Status is generado or revisado
// iff Content is non-empty.
type Section struct {
	ID        SectionID     `json:"id"`
	Name      string        `json:"name"`
	Status    SectionStatus `json:"status"`
	Content   string        `json:"content"`
	Citations []string      `json:"citations"`
}

// Context holds the free-text fields describing the procurement process.
// All optional, but the dialogue engine blocks generation until complete.
type Context struct {
	Proceso string `json:"proceso"`
	Entidad string `json:"entidad"`
	Fecha   string `json:"fecha"`
}

// MissingFields returns the user-facing names of unset context fields.
func (c Context) MissingFields() []string {
	var missing []string
	if c.Proceso == "" {
		missing = append(missing, "proceso")
	}
	if c.Entidad == "" {
		missing = append(missing, "entidad")
	}
	if c.Fecha == "" {
		missing = append(missing, "fecha límite")
	}
	return missing
}

// Role distinguishes the two chat participants.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ChatMessage is one entry of the append-only transcript. Content is
// pre-sanitized markup; the session store escapes raw user text before
// constructing a message.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ComplianceResult reports which regulatory markers were found.
// Missing is always the complement of the passing checks.
type ComplianceResult struct {
	DNSH    bool     `json:"DNSH"`
	PRTR    bool     `json:"PRTR"`
	RGPD    bool     `json:"RGPD"`
	Fracc   bool     `json:"Fracc"`
	Missing []string `json:"Missing"`
}

// CoherenceResult reports cross-section weighting consistency.
// Ok holds iff Notes is empty and Checked is true.
type CoherenceResult struct {
	Checked bool     `json:"checked"`
	Ok      bool     `json:"ok"`
	Notes   []string `json:"notes"`
}

// Draft is the user-curated staging area for export, independent of the
// canonical sections. Labels are arbitrary; Order preserves insertion order.
type Draft struct {
	Sections map[string]string `json:"sections"`
	Order    []string          `json:"order"`
}

// SessionState is the full mutable dossier state.
type SessionState struct {
	Ctx        Context          `json:"ctx"`
	Steps      []Section        `json:"steps"`
	Compliance ComplianceResult `json:"compliance"`
	Coherence  CoherenceResult  `json:"coherence"`
	Chat       []ChatMessage    `json:"chat"`
}

// Snapshot is the persisted save/restore payload: session state plus draft,
// serialized as one blob.
type Snapshot struct {
	State SessionState `json:"state"`
	Draft Draft        `json:"draft"`
}

// GenerationRequest is the payload sent to the generation gateway.
type GenerationRequest struct {
	ExpedienteID string `json:"expediente_id"`
	Seccion      string `json:"seccion"`
	UserText     string `json:"user_text"`

	// Model-selection hints forwarded to the remote service.
	StructuredLLM string `json:"structured_llm_choice,omitempty"`
	NarrativeLLM  string `json:"narrative_llm_choice,omitempty"`
}

// Progress summarizes dossier completion for the state endpoint.
type Progress struct {
	Percent       int `json:"percent"`
	ContextFilled int `json:"context_filled"`
	ContextTotal  int `json:"context_total"`
}

// MarshalJSON ensures nil slices in Section marshal as [] not null.
func (s Section) MarshalJSON() ([]byte, error) {
	if s.Citations == nil {
		s.Citations = []string{}
	}
	type Alias Section
	return json.Marshal(Alias(s))
}

// MarshalJSON ensures nil Missing marshals as [] not null.
func (c ComplianceResult) MarshalJSON() ([]byte, error) {
	if c.Missing == nil {
		c.Missing = []string{}
	}
	type Alias ComplianceResult
	return json.Marshal(Alias(c))
}

// MarshalJSON ensures nil Notes marshals as [] not null.
func (c CoherenceResult) MarshalJSON() ([]byte, error) {
	if c.Notes == nil {
		c.Notes = []string{}
	}
	type Alias CoherenceResult
	return json.Marshal(Alias(c))
}

// MarshalJSON ensures nil maps and slices in Draft marshal as {} and [].
func (d Draft) MarshalJSON() ([]byte, error) {
	if d.Sections == nil {
		d.Sections = map[string]string{}
	}
	if d.Order == nil {
		d.Order = []string{}
	}
	type Alias Draft
	return json.Marshal(Alias(d))
}

// NewSessionState returns the initial state: all four sections pending, in
// canonical order, empty transcript and unchecked validations.
func NewSessionState() SessionState {
	steps := make([]Section, 0, len(CanonicalOrder))
	for _, id := range CanonicalOrder {
		steps = append(steps, Section{
			ID:        id,
			Name:      SectionName(id),
			Status:    StatusPending,
			Citations: []string{},
		})
	}
	return SessionState{
		Steps: steps,
		Compliance: ComplianceResult{
			Missing: []string{},
		},
		Coherence: CoherenceResult{
			Notes: []string{},
		},
		Chat: []ChatMessage{},
	}
}
