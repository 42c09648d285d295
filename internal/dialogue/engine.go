// Package dialogue implements the slot-filling controller that decides, per
// user turn, whether to ask a follow-up question, invoke generation, run a
// validator, or fall through to free-form chat.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/minicelia/celia/internal/gateway"
	"github.com/minicelia/celia/internal/normalizer"
	"github.com/minicelia/celia/internal/rules"
	"github.com/minicelia/celia/internal/session"
	"github.com/minicelia/celia/internal/types"
	"github.com/minicelia/celia/internal/validation"
)

// State is the engine's position in the guided generation flow.
type State string

const (
	StateIdle             State = "IDLE"
	StateAwaitID          State = "AWAIT_ID"
	StateAwaitDescription State = "AWAIT_DESCRIPTION"
	StateGenerating       State = "GENERATING"
)

// ErrFlowBusy is returned when a new guided flow is started while a
// generation is in flight. Quick-action generations for other sections are
// not blocked by this.
var ErrFlowBusy = errors.New("a generation flow is already in progress")

// guidedSectionCode is the fixed section code of the guided flow.
const guidedSectionCode = "JN.1"

// flowState is the transient slot-filling state. It is reset after each
// completed or abandoned flow and is never persisted in snapshots.
type flowState struct {
	state        State
	category     string
	expedienteID string
}

// Engine drives the dialogue. One guided flow is active at a time by
// construction. Handlers call it from concurrent goroutines; mu guards the
// flow state, and generation calls run outside the lock so the busy guard
// stays observable while a generation is in flight.
type Engine struct {
	sessions  *session.Store
	generator gateway.Generator
	chat      gateway.ChatResponder
	validator *rules.Service

	mu   sync.Mutex
	flow flowState

	// lastExpediente survives flow resets so later quick actions and
	// exports reuse the identifier of the most recent guided flow.
	lastExpediente string
}

// New creates an Engine. chat may be nil; free-form turns then get the fixed
// clarifying prompt.
func New(sessions *session.Store, generator gateway.Generator, chat gateway.ChatResponder, validator *rules.Service) *Engine {
	return &Engine{
		sessions:  sessions,
		generator: generator,
		chat:      chat,
		validator: validator,
		flow:      flowState{state: StateIdle},
	}
}

// State reports the current flow state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flow.state
}

// ExpedienteID reports the identifier of the active or most recent guided
// flow, empty when none has run yet.
func (e *Engine) ExpedienteID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flow.expedienteID != "" {
		return e.flow.expedienteID
	}
	return e.lastExpediente
}

// Welcome seeds the fixed welcome message on an empty transcript.
func (e *Engine) Welcome() {
	if e.sessions.ChatLength() > 0 {
		return
	}
	e.sessions.AppendBotMessage(strings.ReplaceAll(welcomeMessage, "\n", "<br/>"))
}

// StartCategory begins a guided flow for a tender category: the engine asks
// for the expediente identifier next.
func (e *Engine) StartCategory(category string) error {
	e.mu.Lock()
	if e.flow.state == StateGenerating {
		e.mu.Unlock()
		return ErrFlowBusy
	}
	e.flow = flowState{state: StateAwaitID, category: category}
	e.mu.Unlock()

	e.sessions.AppendBotMessage(fmt.Sprintf(
		"Perfecto, expediente de %s. Indica el identificador del expediente (ej: SER-2024-001).",
		session.EscapeHTML(category)))
	return nil
}

// StartExample runs the shortcut path: a pre-filled example skips directly
// to generation with an auto-derived identifier.
func (e *Engine) StartExample(ctx context.Context, category, text string) error {
	e.mu.Lock()
	if e.flow.state == StateGenerating {
		e.mu.Unlock()
		return ErrFlowBusy
	}
	expediente := deriveExpedienteID(category)
	e.flow = flowState{
		state:        StateGenerating,
		category:     category,
		expedienteID: expediente,
	}
	e.lastExpediente = expediente
	e.mu.Unlock()

	e.sessions.AppendUserMessage(text)
	e.generate(ctx, expediente, text)
	return nil
}

// HandleTurn processes one submitted user turn. Every turn appends exactly
// one user message and one bot message to the transcript.
func (e *Engine) HandleTurn(ctx context.Context, text string) {
	e.sessions.AppendUserMessage(text)

	e.mu.Lock()
	switch e.flow.state {
	case StateAwaitID:
		id := NormalizeID(text)
		if verr := validation.ValidateExpedienteID("expediente_id", id); verr != nil {
			e.mu.Unlock()
			e.sessions.AppendBotMessage(
				"Ese identificador no parece válido. Usa letras, números y guiones, sin otros símbolos (ej: SER-2024-001).")
			return
		}
		e.flow.expedienteID = id
		e.flow.state = StateAwaitDescription
		e.mu.Unlock()
		e.sessions.AppendBotMessage(fmt.Sprintf(
			"Expediente <strong>%s</strong> registrado. Describe la necesidad a contratar con el máximo detalle posible.",
			id))

	case StateAwaitDescription:
		e.flow.state = StateGenerating
		expediente := e.flow.expedienteID
		e.lastExpediente = expediente
		e.mu.Unlock()
		e.generate(ctx, expediente, text)

	case StateGenerating:
		e.mu.Unlock()
		e.sessions.AppendBotMessage("Sigo generando el documento anterior. Espera un momento antes de pedir otro.")

	default:
		e.mu.Unlock()
		e.idleTurn(ctx, text)
	}
}

// generate issues exactly one generation call and resets the flow to IDLE
// regardless of outcome. Failures degrade to locally rendered fallback
// content; there is no automatic retry. The caller has already moved the
// flow to GENERATING and released the lock, so the gateway call never blocks
// State or the busy guard.
func (e *Engine) generate(ctx context.Context, expediente, description string) {
	defer func() {
		e.mu.Lock()
		e.flow = flowState{state: StateIdle}
		e.mu.Unlock()
	}()

	raw, err := e.generator.Generate(ctx, gateway.GenerateParams{
		ExpedienteID: expediente,
		Seccion:      guidedSectionCode,
		UserText:     description,
	})
	if err != nil {
		slog.Warn("generation failed, rendering fallback",
			"expediente_id", expediente, "error", err)
		content := offlineJN(expediente, e.sessions.State().Ctx)
		e.sessions.SetSectionContent(types.SectionJN, content, nil)
		e.sessions.AppendBotMessage(content)
		return
	}

	narrative, ok := normalizer.Extract(raw)
	if !ok {
		narrative = genericSuccess
	}
	content := renderGenerated(narrative)
	e.sessions.SetSectionContent(types.SectionJN, content, nil)
	e.sessions.AppendBotMessage(content)
}

// idleTurn handles free text with no guided flow active: missing-context
// guard first, then the keyword intent table, then free-form chat.
func (e *Engine) idleTurn(ctx context.Context, text string) {
	state := e.sessions.State()
	if missing := state.Ctx.MissingFields(); len(missing) > 0 {
		e.sessions.AppendBotMessage(fmt.Sprintf(
			"Me falta: %s. Complétalo arriba para afinar la redacción.",
			strings.Join(missing, ", ")))
		return
	}

	intent := classify(text)
	if id, ok := sectionForIntent(intent); ok {
		e.GenerateSection(ctx, id)
		return
	}

	switch intent {
	case IntentCompliance:
		result := e.validator.Compliance(ctx, e.sessions.SectionContents())
		e.sessions.UpdateCompliance(result)
		e.sessions.AppendBotMessage(complianceMessage(result))
	case IntentCoherence:
		result := e.validator.Coherence(ctx, e.sessions.SectionContents())
		e.sessions.UpdateCoherence(result)
		e.sessions.AppendBotMessage(coherenceMessage(result))
	case IntentComplete:
		e.sessions.AppendBotMessage("Para generar el expediente completo usa el orquestador (JN → PPT → CEC → CR) desde el panel de administración.")
	default:
		e.freeFormReply(ctx, text)
	}
}

// GenerateSection is the quick-action path: generate one section directly
// from the current context, bypassing the guided flow. Independent sections
// may generate concurrently; each writes a disjoint record.
func (e *Engine) GenerateSection(ctx context.Context, id types.SectionID) error {
	name := types.SectionName(id)
	e.sessions.AppendBotMessage(fmt.Sprintf("Generando %s...", name))

	expediente := e.ExpedienteID()
	if expediente == "" {
		expediente = "SIN_ID"
	}
	raw, err := e.generator.Generate(ctx, gateway.GenerateParams{
		ExpedienteID: expediente,
		Seccion:      fmt.Sprintf("%s.1", id),
		UserText:     e.sessions.State().Ctx.Proceso,
	})
	if err != nil {
		slog.Warn("quick generation failed, rendering fallback",
			"section", id, "error", err)
		content := offlineSection(id, e.sessions.State().Ctx)
		e.sessions.SetSectionContent(id, content, nil)
		e.sessions.AppendBotMessage(fmt.Sprintf(
			"%s generada en modo offline. Conecta el servicio de generación para contenido completo.", name))
		return nil
	}

	narrative, ok := normalizer.Extract(raw)
	if !ok {
		narrative = genericSuccess
	}
	e.sessions.SetSectionContent(id, renderGenerated(narrative), nil)
	e.sessions.AppendBotMessage(fmt.Sprintf("%s generada correctamente.", name))
	return nil
}

// GenerateAll orchestrates generation in canonical order.
func (e *Engine) GenerateAll(ctx context.Context) error {
	e.sessions.AppendBotMessage("Generando todas las secciones en orden...")
	for _, id := range types.CanonicalOrder {
		if err := e.GenerateSection(ctx, id); err != nil {
			return err
		}
	}
	e.sessions.AppendBotMessage("Se generaron JN, PPT, CEC y CR en orden. Valida y ajusta cada sección antes de exportar.")
	return nil
}

// freeFormReply asks the chat responder; transport failure degrades to the
// fixed clarifying prompt.
func (e *Engine) freeFormReply(ctx context.Context, text string) {
	if e.chat != nil {
		reply, err := e.chat.Respond(ctx, text)
		if err == nil {
			e.sessions.AppendBotMessage(normalizer.Format(reply))
			return
		}
		slog.Debug("chat responder unavailable", "error", err)
	}
	e.sessions.AppendBotMessage(clarifyingPrompt)
}

var idSeparators = regexp.MustCompile(`\s+`)

// NormalizeID turns raw identifier input into its canonical form: upper
// case with internal whitespace collapsed to a single separator.
func NormalizeID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return idSeparators.ReplaceAllString(strings.ToUpper(trimmed), "-")
}

// deriveExpedienteID builds the shortcut identifier: category prefix plus a
// short numeric suffix derived from the current time.
func deriveExpedienteID(category string) string {
	prefix := strings.ToUpper(category)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%04d", prefix, time.Now().Unix()%10000)
}

func complianceMessage(result types.ComplianceResult) string {
	if len(result.Missing) > 0 {
		return fmt.Sprintf("Cumplimiento: faltan referencias a %s.", strings.Join(result.Missing, ", "))
	}
	return "Cumplimiento: correcto en DNSH/PRTR, RGPD y no fraccionamiento."
}

func coherenceMessage(result types.CoherenceResult) string {
	if result.Ok {
		return "Coherencia: OK (lotes/pesos/plazos consistentes)."
	}
	return fmt.Sprintf("Coherencia: hallé observaciones: %s", strings.Join(result.Notes, ", "))
}
