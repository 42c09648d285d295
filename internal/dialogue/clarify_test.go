package dialogue

import "testing"

func TestClarify_ShortInputSkipped(t *testing.T) {
	if got := Clarify("poca cosa"); got != nil {
		t.Errorf("Clarify(short) = %v, want nil", got)
	}
}

func TestClarify_CapsAtTwo(t *testing.T) {
	// Mentions nothing the probes look for, so every probe would fire.
	got := Clarify("Contratar algo importante para la organización cuanto antes.")
	if len(got) != maxClarifications {
		t.Fatalf("Clarify() returned %d questions, want %d", len(got), maxClarifications)
	}
	// Probe order is fixed: quantity first, budget second.
	if got[0].Type != "quantity" || got[1].Type != "budget" {
		t.Errorf("types = [%s %s], want [quantity budget]", got[0].Type, got[1].Type)
	}
}

func TestClarify_SkipsCoveredTopics(t *testing.T) {
	text := "Suministro de 50 unidades con un presupuesto de 30.000 euros para oficinas."
	got := Clarify(text)

	for _, c := range got {
		if c.Type == "quantity" {
			t.Error("quantity already covered, should not be asked")
		}
		if c.Type == "budget" {
			t.Error("budget already covered, should not be asked")
		}
	}
	if len(got) != maxClarifications {
		t.Errorf("remaining probes should still fill the cap, got %d", len(got))
	}
}

func TestClarify_Suggestions(t *testing.T) {
	got := Clarify("Contratar algo importante para la organización cuanto antes.")
	for _, c := range got {
		if c.Question == "" {
			t.Error("clarification without question")
		}
		if len(c.Suggestions) == 0 {
			t.Errorf("clarification %q without suggestions", c.Type)
		}
	}
}
