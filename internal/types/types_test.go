package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSectionName(t *testing.T) {
	tests := []struct {
		id   SectionID
		want string
	}{
		{SectionJN, "Justificación de la Necesidad"},
		{SectionPPT, "Pliego Técnico"},
		{SectionCEC, "Presupuesto (CEC)"},
		{SectionCR, "Cuadro Resumen (CR)"},
		{SectionID("XX"), "XX"},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := SectionName(tt.id); got != tt.want {
				t.Errorf("SectionName(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestContext_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want []string
	}{
		{"all empty", Context{}, []string{"proceso", "entidad", "fecha límite"}},
		{"proceso set", Context{Proceso: "limpieza"}, []string{"entidad", "fecha límite"}},
		{"all set", Context{Proceso: "a", Entidad: "b", Fecha: "c"}, nil},
		{"only fecha missing", Context{Proceso: "a", Entidad: "b"}, []string{"fecha límite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ctx.MissingFields()
			if len(got) != len(tt.want) {
				t.Fatalf("MissingFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MissingFields()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewSessionState(t *testing.T) {
	state := NewSessionState()

	if len(state.Steps) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(state.Steps))
	}
	for i, id := range CanonicalOrder {
		step := state.Steps[i]
		if step.ID != id {
			t.Errorf("Steps[%d].ID = %q, want %q", i, step.ID, id)
		}
		if step.Status != StatusPending {
			t.Errorf("Steps[%d].Status = %q, want %q", i, step.Status, StatusPending)
		}
		if step.Content != "" {
			t.Errorf("Steps[%d].Content = %q, want empty", i, step.Content)
		}
		if step.Name != SectionName(id) {
			t.Errorf("Steps[%d].Name = %q, want %q", i, step.Name, SectionName(id))
		}
	}
	if len(state.Chat) != 0 {
		t.Errorf("expected empty transcript, got %d messages", len(state.Chat))
	}
}

func TestSection_MarshalJSON_NilCitations(t *testing.T) {
	raw, err := json.Marshal(Section{ID: SectionJN})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"citations":[]`) {
		t.Errorf("nil Citations should marshal as [], got %s", raw)
	}
}

func TestComplianceResult_MarshalJSON_NilMissing(t *testing.T) {
	raw, err := json.Marshal(ComplianceResult{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"Missing":[]`) {
		t.Errorf("nil Missing should marshal as [], got %s", raw)
	}
}

func TestDraft_MarshalJSON_NilFields(t *testing.T) {
	raw, err := json.Marshal(Draft{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"sections":{}`) {
		t.Errorf("nil Sections should marshal as {}, got %s", raw)
	}
	if !strings.Contains(string(raw), `"order":[]`) {
		t.Errorf("nil Order should marshal as [], got %s", raw)
	}
}
