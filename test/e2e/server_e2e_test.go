package e2e

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/minicelia/celia/pkg/celia"
)

func TestGuidedFlow_EndToEnd(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()

	resp, err := env.user.StartCategory(ctx, "servicios")
	if err != nil {
		t.Fatalf("StartCategory() error = %v", err)
	}
	if resp.Flow != "AWAIT_ID" {
		t.Fatalf("flow = %q, want AWAIT_ID", resp.Flow)
	}

	resp, err = env.user.Chat(ctx, "ser 2026 014")
	if err != nil {
		t.Fatalf("Chat(id) error = %v", err)
	}
	if resp.Flow != "AWAIT_DESCRIPTION" {
		t.Fatalf("flow = %q, want AWAIT_DESCRIPTION", resp.Flow)
	}
	if !strings.Contains(lastMessage(t, resp).Content, "SER-2026-014") {
		t.Errorf("bot did not echo the normalized identifier: %q", lastMessage(t, resp).Content)
	}

	resp, err = env.user.Chat(ctx, "Servicio de limpieza diaria para cinco edificios municipales")
	if err != nil {
		t.Fatalf("Chat(description) error = %v", err)
	}
	if resp.Flow != "IDLE" {
		t.Fatalf("flow = %q, want IDLE after generation", resp.Flow)
	}
	if got := env.backend.calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}

	state, err := env.user.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	jn := sectionByID(t, state.State.Steps, "JN")
	if jn.Status != celia.StatusGenerated {
		t.Errorf("JN status = %q, want %q", jn.Status, celia.StatusGenerated)
	}
	if !strings.Contains(jn.Content, "SER-2026-014") {
		t.Errorf("generated content does not carry the expediente id")
	}
}

func TestGenerateAll_AdminOnly(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()

	for field, value := range map[string]string{
		"proceso": "renovación del parque informático",
		"entidad": "Diputación Provincial",
		"fecha":   "2026-11-30",
	} {
		if _, err := env.user.SetContext(ctx, field, value); err != nil {
			t.Fatalf("SetContext(%s) error = %v", field, err)
		}
	}

	_, err := env.user.GenerateAll(ctx)
	var apiErr *celia.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("GenerateAll() with user key = %v, want 403", err)
	}

	state, err := env.admin.GenerateAll(ctx)
	if err != nil {
		t.Fatalf("GenerateAll() with admin key error = %v", err)
	}
	for _, id := range []string{"JN", "PPT", "CEC", "CR"} {
		s := sectionByID(t, state.State.Steps, id)
		if s.Status != celia.StatusGenerated {
			t.Errorf("%s status = %q, want %q", id, s.Status, celia.StatusGenerated)
		}
	}
	if state.Progress.Percent != 100 {
		t.Errorf("progress = %d%%, want 100%%", state.Progress.Percent)
	}
}

func TestValidation_RemoteBackend(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()

	compliance, err := env.user.ValidateCompliance(ctx)
	if err != nil {
		t.Fatalf("ValidateCompliance() error = %v", err)
	}
	if !compliance.DNSH || !compliance.PRTR || !compliance.RGPD || !compliance.Fracc {
		t.Errorf("remote compliance result = %+v", compliance)
	}

	coherence, err := env.user.ValidateCoherence(ctx)
	if err != nil {
		t.Fatalf("ValidateCoherence() error = %v", err)
	}
	if !coherence.Checked || !coherence.Ok {
		t.Errorf("remote coherence result = %+v", coherence)
	}
}

func TestValidation_FallsBackToLocalRules(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()
	env.backend.failing.Store(true)

	compliance, err := env.user.ValidateCompliance(ctx)
	if err != nil {
		t.Fatalf("ValidateCompliance() error = %v", err)
	}
	// Empty dossier: the local rules find no markers at all.
	if compliance.DNSH || len(compliance.Missing) == 0 {
		t.Errorf("local compliance result = %+v", compliance)
	}
}

func TestOfflineGeneration_Fallback(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()
	env.backend.failing.Store(true)

	resp, err := env.user.GenerateSection(ctx, "CEC")
	if err != nil {
		t.Fatalf("GenerateSection() error = %v", err)
	}
	if resp.Section.Status != celia.StatusGenerated {
		t.Errorf("status = %q, want %q", resp.Section.Status, celia.StatusGenerated)
	}
	if !strings.Contains(resp.Section.Content, "Total: 100%") {
		t.Errorf("offline CEC content missing weighting total: %q", resp.Section.Content)
	}
}

func TestExport_EndToEnd(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()

	if _, err := env.user.AddDraftSection(ctx, "JN", "Justificación aprobada para el expediente."); err != nil {
		t.Fatalf("AddDraftSection() error = %v", err)
	}

	_, err := env.user.Export(ctx, "md")
	var apiErr *celia.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("Export(md) with user key = %v, want 403", err)
	}

	md, err := env.admin.Export(ctx, "md")
	if err != nil {
		t.Fatalf("Export(md) with admin key error = %v", err)
	}
	if !strings.Contains(string(md.Content), "Justificación aprobada") {
		t.Errorf("markdown export missing draft content")
	}
	if !strings.HasSuffix(md.Name, ".md") {
		t.Errorf("file name = %q", md.Name)
	}

	pdf, err := env.user.Export(ctx, "pdf")
	if err != nil {
		t.Fatalf("Export(pdf) error = %v", err)
	}
	if !strings.HasPrefix(string(pdf.Content), "%PDF") {
		t.Errorf("pdf export does not start with the PDF magic")
	}
}

func TestSessionPersistence_EndToEnd(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()

	if _, err := env.user.SetContext(ctx, "proceso", "auditoría energética"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.user.SaveSession(ctx); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	// Overwrite, then restore the snapshot.
	if _, err := env.user.SetContext(ctx, "proceso", "otro proceso"); err != nil {
		t.Fatal(err)
	}

	loaded, err := env.user.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if !loaded.Loaded {
		t.Error("loaded = false")
	}
	if loaded.State.Ctx.Proceso != "auditoría energética" {
		t.Errorf("restored proceso = %q", loaded.State.Ctx.Proceso)
	}
}

func TestAuth_EndToEnd(t *testing.T) {
	env := setupServer(t)
	ctx := context.Background()
	anon := newClient(t, env.baseURL, "")

	if _, err := anon.Health(ctx); err != nil {
		t.Errorf("Health() should not require auth: %v", err)
	}

	_, err := anon.State(ctx)
	var apiErr *celia.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("State() without key = %v, want 401", err)
	}

	wrong := newClient(t, env.baseURL, "not-the-key")
	_, err = wrong.State(ctx)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("State() with wrong key = %v, want 401", err)
	}
}
