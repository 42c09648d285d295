package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minicelia/celia/internal/dialogue"
	"github.com/minicelia/celia/internal/export"
	"github.com/minicelia/celia/internal/gateway"
	"github.com/minicelia/celia/internal/rules"
	"github.com/minicelia/celia/internal/session"
	"github.com/minicelia/celia/internal/store"
	"github.com/minicelia/celia/internal/types"
	"github.com/minicelia/celia/internal/validation"
)

// maxChatTextLen bounds a single chat turn, matching the UI input limit.
const maxChatTextLen = 4000

// Handler implements the API handlers.
type Handler struct {
	sessions  *session.Store
	engine    *dialogue.Engine
	validator *rules.Service
	generator gateway.Generator
	snapshots store.SnapshotStore
	version   string
}

// NewHandler creates a new Handler.
func NewHandler(
	sessions *session.Store,
	engine *dialogue.Engine,
	validator *rules.Service,
	generator gateway.Generator,
	snapshots store.SnapshotStore,
	version string,
) *Handler {
	return &Handler{
		sessions:  sessions,
		engine:    engine,
		validator: validator,
		generator: generator,
		snapshots: snapshots,
		version:   version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	generation := "ok"
	if err := h.generator.Health(r.Context()); err != nil {
		generation = "unreachable"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "healthy",
		"version":    h.version,
		"generation": generation,
	})
}

type stateResponse struct {
	State    types.SessionState `json:"state"`
	Draft    types.Draft        `json:"draft"`
	Progress types.Progress     `json:"progress"`
	Flow     dialogue.State     `json:"flow"`
}

// State handles GET /api/v1/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		State:    h.sessions.State(),
		Draft:    h.sessions.Draft(),
		Progress: h.sessions.Progress(),
		Flow:     h.engine.State(),
	})
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Messages []types.ChatMessage `json:"messages"`
	Flow     dialogue.State      `json:"flow"`
}

// Chat handles POST /api/v1/chat: one dialogue turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("text", req.Text))
	c.Add(validation.ValidateUTF8("text", req.Text))
	c.Add(validation.ValidateNoNullBytes("text", req.Text))
	c.Add(validation.ValidateMaxLength("text", req.Text, maxChatTextLen))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	h.engine.HandleTurn(r.Context(), req.Text)

	writeJSON(w, http.StatusOK, chatResponse{
		Messages: h.sessions.State().Chat,
		Flow:     h.engine.State(),
	})
}

type exampleRequest struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// ChatExample handles POST /api/v1/chat/example. With text it runs the
// shortcut flow; without text it starts the guided flow and asks for the
// expediente identifier.
func (h *Handler) ChatExample(w http.ResponseWriter, r *http.Request) {
	var req exampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("category", req.Category))
	c.Add(validation.ValidateMaxLength("text", req.Text, maxChatTextLen))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	var err error
	if strings.TrimSpace(req.Text) == "" {
		err = h.engine.StartCategory(req.Category)
	} else {
		err = h.engine.StartExample(r.Context(), req.Category, req.Text)
	}
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Messages: h.sessions.State().Chat,
		Flow:     h.engine.State(),
	})
}

// Examples handles GET /api/v1/examples.
func (h *Handler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": dialogue.Examples})
}

type clarifyRequest struct {
	Text string `json:"text"`
}

// Clarify handles POST /api/v1/clarify: analyze a description and suggest
// follow-up questions without advancing the dialogue.
func (h *Handler) Clarify(w http.ResponseWriter, r *http.Request) {
	var req clarifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"clarifications": dialogue.Clarify(req.Text),
	})
}

type contextRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UpdateContext handles POST /api/v1/context.
func (h *Handler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if err := h.sessions.UpdateContext(req.Field, req.Value); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "field", Message: err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ctx":      h.sessions.State().Ctx,
		"progress": h.sessions.Progress(),
	})
}

// parseSectionID validates a URL section identifier.
func parseSectionID(raw string) (types.SectionID, bool) {
	id := types.SectionID(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range types.CanonicalOrder {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// GenerateSection handles POST /api/v1/sections/{id}/generate.
func (h *Handler) GenerateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSectionID(chi.URLParam(r, "id"))
	if !ok {
		WriteProblem(w, r, http.StatusNotFound, "Unknown section")
		return
	}

	if err := h.engine.GenerateSection(r.Context(), id); err != nil {
		MapDomainError(w, r, err)
		return
	}

	section, _ := h.sessions.Section(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"section":  section,
		"messages": h.sessions.State().Chat,
	})
}

// GenerateAll handles POST /api/v1/sections/generate-all (privileged).
func (h *Handler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	if !PrivilegedFromContext(r.Context()) {
		WriteProblem(w, r, http.StatusForbidden, "Generating the full dossier requires privileged access")
		return
	}

	if err := h.engine.GenerateAll(r.Context()); err != nil {
		MapDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{
		State:    h.sessions.State(),
		Draft:    h.sessions.Draft(),
		Progress: h.sessions.Progress(),
		Flow:     h.engine.State(),
	})
}

// ValidateCompliance handles POST /api/v1/validate/compliance.
func (h *Handler) ValidateCompliance(w http.ResponseWriter, r *http.Request) {
	result := h.validator.Compliance(r.Context(), h.sessions.SectionContents())
	h.sessions.UpdateCompliance(result)
	writeJSON(w, http.StatusOK, result)
}

// ValidateCoherence handles POST /api/v1/validate/coherence.
func (h *Handler) ValidateCoherence(w http.ResponseWriter, r *http.Request) {
	result := h.validator.Coherence(r.Context(), h.sessions.SectionContents())
	h.sessions.UpdateCoherence(result)
	writeJSON(w, http.StatusOK, result)
}

type draftRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DraftAdd handles POST /api/v1/draft. Entries with empty content are
// ignored, mirroring the staging-area rules.
func (h *Handler) DraftAdd(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("name", req.Name))
	c.Add(validation.ValidateUTF8("content", req.Content))
	c.Add(validation.ValidateNoNullBytes("content", req.Content))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	h.sessions.AddToDraft(req.Name, req.Content)
	writeJSON(w, http.StatusOK, h.sessions.Draft())
}

// DraftUpdate handles PUT /api/v1/draft/{name}.
func (h *Handler) DraftUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if err := h.sessions.UpdateDraftSection(name, req.Content); err != nil {
		WriteProblem(w, r, http.StatusNotFound, "Draft section not found")
		return
	}

	writeJSON(w, http.StatusOK, h.sessions.Draft())
}

// DraftDelete handles DELETE /api/v1/draft/{name}.
func (h *Handler) DraftDelete(w http.ResponseWriter, r *http.Request) {
	h.sessions.RemoveDraftSection(chi.URLParam(r, "name"))
	writeJSON(w, http.StatusOK, h.sessions.Draft())
}

// DraftClear handles DELETE /api/v1/draft.
func (h *Handler) DraftClear(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearDraft()
	writeJSON(w, http.StatusOK, h.sessions.Draft())
}

// Export handles GET /api/v1/export/{format}.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	snap := types.Snapshot{
		State: h.sessions.State(),
		Draft: h.sessions.Draft(),
	}

	exporter := export.NewEngine(h.engine.ExpedienteID())
	file, err := exporter.Render(format, snap, PrivilegedFromContext(r.Context()))
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		slog.Error("failed to write export", "format", format, "error", err)
	}
}

// SessionSave handles POST /api/v1/session/save.
func (h *Handler) SessionSave(w http.ResponseWriter, r *http.Request) {
	payload, err := h.sessions.Snapshot()
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		MapDomainError(w, r, err)
		return
	}

	if err := h.snapshots.SaveSnapshot(r.Context(), payload); err != nil {
		slog.Error("snapshot save failed", "error", err)
		MapDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved":    true,
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// SessionLoad handles POST /api/v1/session/load.
func (h *Handler) SessionLoad(w http.ResponseWriter, r *http.Request) {
	payload, savedAt, err := h.snapshots.LoadSnapshot(r.Context())
	if err != nil {
		MapDomainError(w, r, err)
		return
	}

	if err := h.sessions.Restore(payload); err != nil {
		MapDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":   true,
		"saved_at": savedAt.Format(time.RFC3339),
		"state":    h.sessions.State(),
		"draft":    h.sessions.Draft(),
	})
}
