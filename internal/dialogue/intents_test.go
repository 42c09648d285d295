package dialogue

import (
	"testing"

	"github.com/minicelia/celia/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"generar jn", IntentGenerateJN},
		{"Necesito la justificación del contrato", IntentGenerateJN},
		{"GENERAR PPT", IntentGeneratePPT},
		{"revisa el pliego técnico", IntentGeneratePPT},
		{"generar cec", IntentGenerateCEC},
		{"dame el presupuesto", IntentGenerateCEC},
		{"generar cr ahora", IntentGenerateCR},
		{"el cuadro resumen por favor", IntentGenerateCR},
		{"quiero el expediente completo", IntentComplete},
		{"ver cumplimiento normativo", IntentCompliance},
		{"validar coherencia", IntentCoherence},
		{"hola buenas tardes", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := classify(tt.text); got != tt.want {
				t.Errorf("classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Mentions both a JN keyword and a compliance keyword; the table order
	// decides.
	if got := classify("justificación y cumplimiento"); got != IntentGenerateJN {
		t.Errorf("classify = %q, want %q", got, IntentGenerateJN)
	}
}

func TestSectionForIntent(t *testing.T) {
	tests := []struct {
		intent Intent
		want   types.SectionID
		ok     bool
	}{
		{IntentGenerateJN, types.SectionJN, true},
		{IntentGeneratePPT, types.SectionPPT, true},
		{IntentGenerateCEC, types.SectionCEC, true},
		{IntentGenerateCR, types.SectionCR, true},
		{IntentCompliance, "", false},
		{IntentGeneral, "", false},
	}

	for _, tt := range tests {
		id, ok := sectionForIntent(tt.intent)
		if ok != tt.ok || id != tt.want {
			t.Errorf("sectionForIntent(%q) = (%q, %v), want (%q, %v)",
				tt.intent, id, ok, tt.want, tt.ok)
		}
	}
}
