package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/minicelia/celia/internal/types"
)

func testSnapshot() types.Snapshot {
	state := types.NewSessionState()
	state.Ctx = types.Context{Proceso: "limpieza", Entidad: "Ayto", Fecha: "2026-12-31"}
	state.Steps[0].Content = "Justificación de la necesidad con redacción suficiente para el documento."
	state.Steps[0].Status = types.StatusGenerated
	state.Chat = []types.ChatMessage{
		{Role: types.RoleBot, Content: "Hola"},
		{Role: types.RoleUser, Content: "Genera la JN"},
	}
	return types.Snapshot{
		State: state,
		Draft: types.Draft{
			Sections: map[string]string{"JN": "contenido"},
			Order:    []string{"JN"},
		},
	}
}

func TestEngine_Render_PrivilegeGating(t *testing.T) {
	engine := NewEngine("EXP-1")
	snap := testSnapshot()

	for _, format := range []string{"md", "doc", "json"} {
		t.Run(format+" unprivileged", func(t *testing.T) {
			_, err := engine.Render(format, snap, false)
			if !errors.Is(err, ErrPrivilegeRequired) {
				t.Errorf("Render(%s, unprivileged) error = %v, want ErrPrivilegeRequired", format, err)
			}
		})
		t.Run(format+" privileged", func(t *testing.T) {
			file, err := engine.Render(format, snap, true)
			if err != nil {
				t.Fatalf("Render(%s, privileged) error = %v", format, err)
			}
			if len(file.Content) == 0 {
				t.Error("empty export content")
			}
		})
	}

	for _, format := range []string{"chat", "pdf"} {
		t.Run(format+" open", func(t *testing.T) {
			if _, err := engine.Render(format, snap, false); err != nil {
				t.Errorf("Render(%s, unprivileged) error = %v, want nil", format, err)
			}
		})
	}
}

func TestEngine_Render_UnknownFormat(t *testing.T) {
	engine := NewEngine("EXP-1")
	_, err := engine.Render("xlsx", testSnapshot(), true)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(xlsx) error = %v, want ErrUnknownFormat", err)
	}
}

func TestEngine_Render_FileNames(t *testing.T) {
	engine := NewEngine("EXP-1")
	snap := testSnapshot()

	tests := []struct {
		format string
		want   string
	}{
		{"md", "expediente.md"},
		{"doc", "expediente.doc"},
		{"json", "manifest.json"},
		{"chat", "chat.txt"},
	}
	for _, tt := range tests {
		file, err := engine.Render(tt.format, snap, true)
		if err != nil {
			t.Fatalf("Render(%s): %v", tt.format, err)
		}
		if file.Name != tt.want {
			t.Errorf("Render(%s).Name = %q, want %q", tt.format, file.Name, tt.want)
		}
	}
}

func TestBuildManifest_Shape(t *testing.T) {
	raw, err := BuildManifest(types.Context{Proceso: "obras"})
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}

	if m["name"] != "Mini-CELIA PoC" {
		t.Errorf("name = %v", m["name"])
	}
	if m["promptsVersion"] != "v0.1-canon" {
		t.Errorf("promptsVersion = %v", m["promptsVersion"])
	}
	if m["goldenRepoHash"] != "sim-hash-abc123" {
		t.Errorf("goldenRepoHash = %v", m["goldenRepoHash"])
	}
	if sections, ok := m["sections"].([]any); !ok || len(sections) != 0 {
		t.Errorf("sections = %v, want empty array", m["sections"])
	}
	if _, err := time.Parse(time.RFC3339, m["generatedAt"].(string)); err != nil {
		t.Errorf("generatedAt not RFC3339: %v", m["generatedAt"])
	}
}

func TestSectionsFromState(t *testing.T) {
	snap := testSnapshot()
	sections := SectionsFromState(snap.State)

	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}
	wantIDs := []string{"JN", "PPT", "CEC", "CR"}
	for i, s := range sections {
		if s.ID != wantIDs[i] {
			t.Errorf("sections[%d].ID = %q, want %q", i, s.ID, wantIDs[i])
		}
	}
	if sections[0].Content == "" {
		t.Error("generated JN content lost")
	}
}

func TestPDFFileName(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	if got := PDFFileName("EXP-7", now); got != "EXP-7_2026-08-29.pdf" {
		t.Errorf("PDFFileName = %q", got)
	}
	if got := PDFFileName("", now); got != "JN1_2026-08-29.pdf" {
		t.Errorf("PDFFileName(empty) = %q", got)
	}
}

func TestBuildPDF(t *testing.T) {
	sections := SectionsFromState(testSnapshot().State)

	raw, err := BuildPDF("EXP-7", sections)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic: %q", raw[:8])
	}
}

func TestBuildPDF_LongContentPaginates(t *testing.T) {
	long := strings.Repeat("Contenido extenso de la sección con redacción detallada. ", 200)
	sections := []PDFSection{
		{ID: "JN", Title: "Justificación de la Necesidad", Content: long},
		{ID: "PPT", Title: "Pliego Técnico", Content: long},
	}

	raw, err := BuildPDF("EXP-7", sections)
	if err != nil {
		t.Fatal(err)
	}

	// Each /Page object marks one rendered page.
	pages := bytes.Count(raw, []byte("/Type /Page"))
	if pages < 3 {
		t.Errorf("expected multi-page output, found %d page markers", pages)
	}
}
