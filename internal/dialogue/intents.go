package dialogue

import (
	"strings"

	"github.com/minicelia/celia/internal/types"
)

// Intent classifies a free-form user turn.
type Intent string

const (
	IntentGenerateJN  Intent = "jn"
	IntentGeneratePPT Intent = "ppt"
	IntentGenerateCEC Intent = "cec"
	IntentGenerateCR  Intent = "cr"
	IntentComplete    Intent = "complete"
	IntentCompliance  Intent = "compliance"
	IntentCoherence   Intent = "coherence"
	IntentGeneral     Intent = "general"
)

// intentRule maps keywords to an intent. Rules are evaluated in order;
// first match wins. This is keyword matching, not language understanding,
// and the table is the whole contract.
type intentRule struct {
	Intent   Intent
	Keywords []string
}

var intentRules = []intentRule{
	{Intent: IntentGenerateJN, Keywords: []string{"generar jn", "justificación"}},
	{Intent: IntentGeneratePPT, Keywords: []string{"generar ppt", "pliego"}},
	{Intent: IntentGenerateCEC, Keywords: []string{"generar cec", "presupuesto"}},
	{Intent: IntentGenerateCR, Keywords: []string{"generar cr", "cuadro resumen"}},
	{Intent: IntentComplete, Keywords: []string{"expediente completo"}},
	{Intent: IntentCompliance, Keywords: []string{"cumplimiento"}},
	{Intent: IntentCoherence, Keywords: []string{"coherencia"}},
}

// classify returns the first matching intent for a user turn, or
// IntentGeneral when nothing matches.
func classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Intent
			}
		}
	}
	return IntentGeneral
}

// sectionForIntent maps generation intents to their section.
func sectionForIntent(intent Intent) (types.SectionID, bool) {
	switch intent {
	case IntentGenerateJN:
		return types.SectionJN, true
	case IntentGeneratePPT:
		return types.SectionPPT, true
	case IntentGenerateCEC:
		return types.SectionCEC, true
	case IntentGenerateCR:
		return types.SectionCR, true
	}
	return "", false
}
