// Package normalizer extracts clean narrative text from the generation
// service's responses. The upstream response contract is not stable, so
// extraction is best-effort over a closed list of known shapes with a
// heuristic scan as the last resort. Extract never fails: it returns the
// formatted narrative or ok=false, and the caller maps ok=false to a fixed
// success message.
package normalizer

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Thresholds of the narrative heuristic. Empirically chosen in the original
// system; kept as constants rather than re-derived.
const (
	// MinNarrativeLen is the minimum length for a field to be considered.
	MinNarrativeLen = 50
	// LongTextLen lets a single keyword hit qualify longer texts.
	LongTextLen = 200
	// MinEmbeddedFieldLen filters string fields of an embedded object.
	MinEmbeddedFieldLen = 20
	// MinKeywordHits is the keyword count required for short candidates.
	MinKeywordHits = 2
)

// candidateFields are probed in order on the top-level response object.
// First match wins. "data.narrativa" is the one sanctioned nested path.
var candidateFields = []string{"narrativa", "response", "content", "text", "texto"}

// embeddedFields are preferred when a candidate string embeds a serialized
// JSON object.
var embeddedFields = []string{"narrativa", "texto", "contenido", "justificacion"}

// narrativeKeywords marks procurement-domain narrative text. The table is
// versioned alongside the thresholds above.
var narrativeKeywords = []string{
	"justificación", "necesidad", "objetivo", "contratación", "expediente",
	"administración", "servicio", "obra", "suministro", "procedimiento",
	"licitación", "adjudicación", "presupuesto", "económico", "normativa",
	"lcsp", "rgpd", "dnsh", "igualdad", "accesibilidad", "público",
	"mediante", "decreto", "artículo", "disposición", "establece",
}

// Extract pulls displayable narrative markup out of a raw generation
// response. The raw payload may be any JSON value; non-object payloads and
// objects without narrative yield ok=false.
func Extract(raw []byte) (string, bool) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", false
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	return ExtractObject(obj)
}

// ExtractObject runs the extraction over an already-decoded object.
func ExtractObject(obj map[string]any) (string, bool) {
	// Known shapes first: fixed field names on the top level.
	for _, field := range candidateFields {
		if s, ok := stringField(obj, field); ok {
			return clean(s), true
		}
		if field == "narrativa" {
			// data.narrativa is checked right after the direct field.
			if data, ok := obj["data"].(map[string]any); ok {
				if s, ok := stringField(data, "narrativa"); ok {
					return clean(s), true
				}
			}
		}
	}

	// One level of nesting: any object holding a narrativa field.
	for _, value := range obj {
		nested, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := stringField(nested, "narrativa"); ok {
			return clean(s), true
		}
	}

	// Heuristic scan over all own string fields.
	for _, value := range obj {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if LooksLikeNarrative(s) {
			return clean(s), true
		}
	}

	return "", false
}

// LooksLikeNarrative reports whether a string reads like procurement
// narrative: enough domain keywords for its length.
func LooksLikeNarrative(text string) bool {
	if len(text) < MinNarrativeLen {
		return false
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range narrativeKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= MinKeywordHits {
				return true
			}
		}
	}
	return hits >= 1 && len(text) > LongTextLen
}

var embeddedJSON = regexp.MustCompile(`\{[\s\S]*\}`)

// clean rescues narrative out of a candidate string that may embed a
// serialized object, then applies the markup conversion.
func clean(text string) string {
	if strings.Contains(text, "{") && strings.Contains(text, "}") {
		if span := embeddedJSON.FindString(text); span != "" {
			var obj map[string]any
			if err := json.Unmarshal([]byte(span), &obj); err == nil {
				if s, ok := narrativeFromEmbedded(obj); ok {
					return s
				}
			}
			// Unparseable or narrative-free object: strip it and keep the
			// surrounding prose.
			text = strings.TrimSpace(embeddedJSON.ReplaceAllString(text, ""))
		}
	}
	return Format(text)
}

// narrativeFromEmbedded prefers the known narrative fields of an embedded
// object, else recombines its qualifying string fields.
func narrativeFromEmbedded(obj map[string]any) (string, bool) {
	for _, field := range embeddedFields {
		if s, ok := stringField(obj, field); ok {
			return Format(s), true
		}
	}
	var parts []string
	for _, value := range obj {
		if s, ok := value.(string); ok && len(s) > MinEmbeddedFieldLen {
			parts = append(parts, Format(s))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "<br><br>"), true
}

var (
	paragraphBreak = regexp.MustCompile(`\n\n+`)
	boldMarkup     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkup   = regexp.MustCompile(`\*(.*?)\*`)
	headingMarkup  = regexp.MustCompile(`#{1,6}\s*(.*)`)
)

// Format converts the lightweight markup conventions of generated text into
// display markup: double newlines become paragraph breaks, single newlines
// line breaks, bold/italic delimiters and heading markers their semantic
// equivalents.
func Format(text string) string {
	out := strings.TrimSpace(text)
	out = paragraphBreak.ReplaceAllString(out, "<br><br>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	out = boldMarkup.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicMarkup.ReplaceAllString(out, "<em>$1</em>")
	out = headingMarkup.ReplaceAllString(out, "<strong>$1</strong>")
	return out
}

func stringField(obj map[string]any, field string) (string, bool) {
	s, ok := obj[field].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
