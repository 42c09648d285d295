package dialogue

import "regexp"

// Clarification is a targeted follow-up question for information a tender
// description is missing.
type Clarification struct {
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Suggestions []string `json:"suggestions"`
}

// minClarifyLen skips analysis of inputs too short to judge.
const minClarifyLen = 20

// maxClarifications caps the follow-up questions returned per analysis.
const maxClarifications = 2

// clarifyProbe detects one kind of missing information by pattern.
type clarifyProbe struct {
	Pattern     *regexp.Regexp
	Type        string
	Question    string
	Suggestions []string
}

var clarifyProbes = []clarifyProbe{
	{
		Pattern:     regexp.MustCompile(`(?i)\d+\s*(unidades?|equipos?|metros?|kilómetros?)`),
		Type:        "quantity",
		Question:    "¿Cuántas unidades o qué cantidad necesitas?",
		Suggestions: []string{"10 unidades", "50 equipos", "100 metros cuadrados"},
	},
	{
		Pattern:     regexp.MustCompile(`(?i)(€|euros?|presupuesto|coste|precio)`),
		Type:        "budget",
		Question:    "¿Tienes un presupuesto estimado?",
		Suggestions: []string{"Sin presupuesto definido", "Entre 10.000€ y 50.000€", "Más de 100.000€"},
	},
	{
		Pattern:     regexp.MustCompile(`(?i)(plazo|fecha|mes|año|días?)`),
		Type:        "timeline",
		Question:    "¿Cuál es el plazo de ejecución o entrega?",
		Suggestions: []string{"1 mes", "3 meses", "6 meses", "1 año"},
	},
	{
		Pattern:     regexp.MustCompile(`(?i)(ubicación|lugar|edificio|dirección|municipio)`),
		Type:        "location",
		Question:    "¿Dónde se realizará el servicio o entrega?",
		Suggestions: []string{"Edificio central", "Múltiples ubicaciones", "Toda la provincia"},
	},
	{
		Pattern:     regexp.MustCompile(`(?i)(requisitos?|características?|especificaciones?|técnic)`),
		Type:        "requirements",
		Question:    "¿Hay requisitos técnicos específicos?",
		Suggestions: []string{"Sin requisitos especiales", "Certificaciones necesarias", "Normativa específica"},
	},
}

// Clarify analyzes a tender description and returns at most two follow-up
// questions for the information kinds the text does not mention.
func Clarify(text string) []Clarification {
	if len(text) < minClarifyLen {
		return nil
	}
	var out []Clarification
	for _, probe := range clarifyProbes {
		if probe.Pattern.MatchString(text) {
			continue
		}
		out = append(out, Clarification{
			Type:        probe.Type,
			Question:    probe.Question,
			Suggestions: probe.Suggestions,
		})
		if len(out) == maxClarifications {
			break
		}
	}
	return out
}
