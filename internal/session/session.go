// Package session holds the dossier's mutable state behind an explicit
// state container. Every mutation builds a fresh state value and replaces
// the whole record under the lock, so readers always observe a consistent
// snapshot and transitions stay independently testable.
package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/minicelia/celia/internal/types"
)

// ErrBadSnapshot indicates a malformed persisted snapshot. The current
// state is left untouched when it is returned.
var ErrBadSnapshot = errors.New("malformed session snapshot")

// Store is the single shared mutable resource of the service.
type Store struct {
	mu      sync.RWMutex
	state   types.SessionState
	draft   types.Draft
	entropy *ulid.MonotonicEntropy
}

// New returns a Store seeded with the initial session state.
func New() *Store {
	return &Store{
		state:   types.NewSessionState(),
		draft:   types.Draft{Sections: map[string]string{}},
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// update applies fn to a deep copy of the state, then replaces the record.
func (s *Store) update(fn func(st *types.SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneState(s.state)
	fn(&next)
	s.state = next
}

// State returns a deep copy of the current session state.
func (s *Store) State() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Draft returns a deep copy of the current draft.
func (s *Store) Draft() types.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDraft(s.draft)
}

// UpdateContext sets a single context field. Unknown fields are an error so
// callers cannot silently drop user edits.
func (s *Store) UpdateContext(field, value string) error {
	switch field {
	case "proceso", "entidad", "fecha":
	default:
		return fmt.Errorf("unknown context field %q", field)
	}
	s.update(func(st *types.SessionState) {
		switch field {
		case "proceso":
			st.Ctx.Proceso = value
		case "entidad":
			st.Ctx.Entidad = value
		case "fecha":
			st.Ctx.Fecha = value
		}
	})
	return nil
}

// Section returns a copy of the section with the given ID.
func (s *Store) Section(id types.SectionID) (types.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, step := range s.state.Steps {
		if step.ID == id {
			return cloneSection(step), true
		}
	}
	return types.Section{}, false
}

// SetSectionContent stores generated content and citations for a section and
// advances its status to generado in the same replace, keeping the
// status-iff-content invariant.
func (s *Store) SetSectionContent(id types.SectionID, content string, citations []string) {
	s.update(func(st *types.SessionState) {
		for i := range st.Steps {
			if st.Steps[i].ID != id {
				continue
			}
			st.Steps[i].Content = content
			st.Steps[i].Citations = append([]string{}, citations...)
			if content == "" {
				st.Steps[i].Status = types.StatusPending
			} else {
				st.Steps[i].Status = types.StatusGenerated
			}
		}
	})
}

// MarkReviewed advances a generated section to revisado. Sections without
// content stay pending.
func (s *Store) MarkReviewed(id types.SectionID) {
	s.update(func(st *types.SessionState) {
		for i := range st.Steps {
			if st.Steps[i].ID == id && st.Steps[i].Content != "" {
				st.Steps[i].Status = types.StatusReviewed
			}
		}
	})
}

// AppendUserMessage escapes raw user text and appends it to the transcript.
func (s *Store) AppendUserMessage(text string) types.ChatMessage {
	return s.appendMessage(types.RoleUser, EscapeHTML(text))
}

// AppendBotMessage appends pre-formatted bot markup to the transcript.
func (s *Store) AppendBotMessage(markup string) types.ChatMessage {
	return s.appendMessage(types.RoleBot, markup)
}

func (s *Store) appendMessage(role types.Role, content string) types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	msg := types.ChatMessage{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
	next := cloneState(s.state)
	next.Chat = append(next.Chat, msg)
	s.state = next
	return msg
}

// ChatLength reports the number of transcript entries.
func (s *Store) ChatLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Chat)
}

// UpdateCompliance replaces the compliance result.
func (s *Store) UpdateCompliance(result types.ComplianceResult) {
	s.update(func(st *types.SessionState) {
		st.Compliance = result
	})
}

// UpdateCoherence replaces the coherence result.
func (s *Store) UpdateCoherence(result types.CoherenceResult) {
	s.update(func(st *types.SessionState) {
		st.Coherence = result
	})
}

// SectionContents returns the non-empty section texts keyed by section ID,
// the input shape the validators consume.
func (s *Store) SectionContents() map[types.SectionID]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents := make(map[types.SectionID]string)
	for _, step := range s.state.Steps {
		if step.Content != "" {
			contents[step.ID] = step.Content
		}
	}
	return contents
}

// AddToDraft stores content under a label, preserving insertion order for
// export. Empty content is ignored, matching the original add action.
func (s *Store) AddToDraft(name, content string) {
	if content == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneDraft(s.draft)
	if _, exists := next.Sections[name]; !exists {
		next.Order = append(next.Order, name)
	}
	next.Sections[name] = content
	s.draft = next
}

// UpdateDraftSection replaces the content of an existing draft entry.
func (s *Store) UpdateDraftSection(name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.draft.Sections[name]; !exists {
		return fmt.Errorf("draft section %q not found", name)
	}
	next := cloneDraft(s.draft)
	next.Sections[name] = content
	s.draft = next
	return nil
}

// RemoveDraftSection deletes one draft entry.
func (s *Store) RemoveDraftSection(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneDraft(s.draft)
	delete(next.Sections, name)
	order := next.Order[:0]
	for _, n := range next.Order {
		if n != name {
			order = append(order, n)
		}
	}
	next.Order = order
	s.draft = next
}

// ClearDraft discards all draft entries.
func (s *Store) ClearDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = types.Draft{Sections: map[string]string{}}
}

// Progress reports section completion percentage and context fill counts.
func (s *Store) Progress() types.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	completed := 0
	for _, step := range s.state.Steps {
		if step.Status != types.StatusPending {
			completed++
		}
	}
	filled := 3 - len(s.state.Ctx.MissingFields())
	percent := 0
	if len(s.state.Steps) > 0 {
		percent = int(float64(completed)/float64(len(s.state.Steps))*100 + 0.5)
	}
	return types.Progress{
		Percent:       percent,
		ContextFilled: filled,
		ContextTotal:  3,
	}
}

// Snapshot serializes the full session (state plus draft) as one blob.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(types.Snapshot{State: s.state, Draft: s.draft})
}

// Restore replaces the session with a previously saved snapshot. A malformed
// blob returns ErrBadSnapshot and leaves the current state untouched.
func (s *Store) Restore(blob []byte) error {
	var snap types.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if len(snap.State.Steps) == 0 {
		return fmt.Errorf("%w: no sections", ErrBadSnapshot)
	}
	if snap.Draft.Sections == nil {
		snap.Draft.Sections = map[string]string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap.State
	s.draft = snap.Draft
	return nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes raw user text so the transcript only ever holds
// trusted markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func cloneState(st types.SessionState) types.SessionState {
	next := st
	next.Steps = make([]types.Section, len(st.Steps))
	for i, step := range st.Steps {
		next.Steps[i] = cloneSection(step)
	}
	next.Chat = append([]types.ChatMessage{}, st.Chat...)
	next.Compliance.Missing = append([]string{}, st.Compliance.Missing...)
	next.Coherence.Notes = append([]string{}, st.Coherence.Notes...)
	return next
}

func cloneSection(sec types.Section) types.Section {
	next := sec
	next.Citations = append([]string{}, sec.Citations...)
	return next
}

func cloneDraft(d types.Draft) types.Draft {
	next := types.Draft{
		Sections: make(map[string]string, len(d.Sections)),
		Order:    append([]string{}, d.Order...),
	}
	for k, v := range d.Sections {
		next.Sections[k] = v
	}
	return next
}
