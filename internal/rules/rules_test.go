package rules

import (
	"reflect"
	"testing"

	"github.com/minicelia/celia/internal/types"
)

func TestCompliance_AllPresent(t *testing.T) {
	contents := map[types.SectionID]string{
		types.SectionJN:  "Cumple DNSH y PRTR, sin fraccionamiento del objeto.",
		types.SectionPPT: "El tratamiento de datos se ajusta al RGPD.",
	}

	result := Compliance(contents)

	if !result.DNSH || !result.PRTR || !result.RGPD || !result.Fracc {
		t.Errorf("expected all checks passing, got %+v", result)
	}
	if len(result.Missing) != 0 {
		t.Errorf("Missing = %v, want empty", result.Missing)
	}
}

func TestCompliance_MissingIsComplement(t *testing.T) {
	result := Compliance(map[types.SectionID]string{})

	want := []string{"DNSH", "PRTR", "RGPD", "No fraccionamiento"}
	if !reflect.DeepEqual(result.Missing, want) {
		t.Errorf("Missing = %v, want %v", result.Missing, want)
	}
	if result.DNSH || result.PRTR || result.RGPD || result.Fracc {
		t.Errorf("expected all checks failing, got %+v", result)
	}
}

func TestCompliance_SectionScoping(t *testing.T) {
	tests := []struct {
		name     string
		contents map[types.SectionID]string
		check    func(types.ComplianceResult) bool
	}{
		{
			name:     "rgpd in JN does not count",
			contents: map[types.SectionID]string{types.SectionJN: "cumple rgpd"},
			check:    func(r types.ComplianceResult) bool { return !r.RGPD },
		},
		{
			name:     "rgpd in PPT counts",
			contents: map[types.SectionID]string{types.SectionPPT: "cumple rgpd"},
			check:    func(r types.ComplianceResult) bool { return r.RGPD },
		},
		{
			name:     "fraccionamiento only in JN",
			contents: map[types.SectionID]string{types.SectionPPT: "sin fraccionamiento"},
			check:    func(r types.ComplianceResult) bool { return !r.Fracc },
		},
		{
			name:     "dnsh in PPT counts",
			contents: map[types.SectionID]string{types.SectionPPT: "criterios DNSH"},
			check:    func(r types.ComplianceResult) bool { return r.DNSH },
		},
		{
			name:     "case insensitive",
			contents: map[types.SectionID]string{types.SectionJN: "Principio Dnsh aplicado"},
			check:    func(r types.ComplianceResult) bool { return r.DNSH },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Compliance(tt.contents); !tt.check(result) {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestCoherence(t *testing.T) {
	tests := []struct {
		name      string
		contents  map[types.SectionID]string
		wantOk    bool
		wantNotes []string
	}{
		{
			name: "both totals present",
			contents: map[types.SectionID]string{
				types.SectionCEC: "Distribución: Total 100%",
				types.SectionCR:  "Ponderación: Total 100%",
			},
			wantOk:    true,
			wantNotes: []string{},
		},
		{
			name: "missing in CEC",
			contents: map[types.SectionID]string{
				types.SectionCR: "Total 100%",
			},
			wantOk:    false,
			wantNotes: []string{"CEC sin total de pesos (=100%)"},
		},
		{
			name:     "missing in both",
			contents: map[types.SectionID]string{},
			wantOk:   false,
			wantNotes: []string{
				"CEC sin total de pesos (=100%)",
				"CR sin total de pesos (=100%)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Coherence(tt.contents)
			if !result.Checked {
				t.Error("Checked = false, want true after a run")
			}
			if result.Ok != tt.wantOk {
				t.Errorf("Ok = %v, want %v", result.Ok, tt.wantOk)
			}
			if !reflect.DeepEqual(result.Notes, tt.wantNotes) {
				t.Errorf("Notes = %v, want %v", result.Notes, tt.wantNotes)
			}
		})
	}
}

func TestCheckSection(t *testing.T) {
	tests := []struct {
		name     string
		id       types.SectionID
		content  string
		wantPass bool
	}{
		{"JN with necesidad", types.SectionJN, "Se identifica la necesidad del servicio.", true},
		{"JN without necesidad", types.SectionJN, "Texto sin el marcador requerido.", false},
		{"PPT with rgpd", types.SectionPPT, "Datos conforme a RGPD.", true},
		{"PPT without rgpd", types.SectionPPT, "Prescripciones técnicas.", false},
		{"CEC with total", types.SectionCEC, "Pesos: Total 100%.", true},
		{"CR without total", types.SectionCR, "Resumen ejecutivo.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, defects := CheckSection(tt.id, tt.content)
			if pass != tt.wantPass {
				t.Errorf("CheckSection(%s) pass = %v, want %v (defects: %v)",
					tt.id, pass, tt.wantPass, defects)
			}
			if !pass && len(defects) == 0 {
				t.Error("failing check must report defects")
			}
		})
	}
}
