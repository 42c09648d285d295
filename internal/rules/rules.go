// Package rules implements the compliance, coherence and per-section content
// checks as explicit keyword rule tables. These are deliberate pattern
// matches, not semantic analysis; the tables and thresholds are fixed so the
// checks stay exactly reproducible.
package rules

import (
	"fmt"
	"strings"

	"github.com/minicelia/celia/internal/types"
)

// complianceRule ties a regulatory marker to the sections it is looked for
// in and the label reported when it is missing.
type complianceRule struct {
	Marker   string
	Sections []types.SectionID
	Label    string
}

// complianceRules is the fixed regulatory marker table: environmental
// do-no-harm and recovery-fund markers in JN or PPT, data protection in PPT,
// no improper splitting in JN.
var complianceRules = []complianceRule{
	{Marker: "dnsh", Sections: []types.SectionID{types.SectionJN, types.SectionPPT}, Label: "DNSH"},
	{Marker: "prtr", Sections: []types.SectionID{types.SectionJN, types.SectionPPT}, Label: "PRTR"},
	{Marker: "rgpd", Sections: []types.SectionID{types.SectionPPT}, Label: "RGPD"},
	{Marker: "fraccionam", Sections: []types.SectionID{types.SectionJN}, Label: "No fraccionamiento"},
}

// weightMarker is the literal total-weights marker required in every
// weight-bearing section.
const weightMarker = "100%"

// weightBearing are the sections whose weighted totals must sum to 100%.
var weightBearing = []types.SectionID{types.SectionCEC, types.SectionCR}

// Compliance scans the section texts for the regulatory markers and reports
// which are missing. Missing is always the complement of the passing checks.
func Compliance(contents map[types.SectionID]string) types.ComplianceResult {
	result := types.ComplianceResult{Missing: []string{}}
	for _, rule := range complianceRules {
		found := false
		for _, id := range rule.Sections {
			if containsMarker(contents[id], rule.Marker) {
				found = true
				break
			}
		}
		switch rule.Label {
		case "DNSH":
			result.DNSH = found
		case "PRTR":
			result.PRTR = found
		case "RGPD":
			result.RGPD = found
		case "No fraccionamiento":
			result.Fracc = found
		}
		if !found {
			result.Missing = append(result.Missing, rule.Label)
		}
	}
	return result
}

// Coherence verifies that every weight-bearing section carries the 100%
// total marker. Ok holds iff no notes were produced.
func Coherence(contents map[types.SectionID]string) types.CoherenceResult {
	result := types.CoherenceResult{Checked: true, Notes: []string{}}
	for _, id := range weightBearing {
		if !strings.Contains(contents[id], weightMarker) {
			result.Notes = append(result.Notes,
				fmt.Sprintf("%s sin total de pesos (=100%%)", id))
		}
	}
	result.Ok = len(result.Notes) == 0
	return result
}

// sectionRule is one required marker for a section's content check.
type sectionRule struct {
	Marker string
	Defect string
}

// sectionRules maps each canonical section to its required content markers.
var sectionRules = map[types.SectionID][]sectionRule{
	types.SectionJN: {
		{Marker: "necesidad", Defect: "la JN no identifica la necesidad"},
	},
	types.SectionPPT: {
		{Marker: "rgpd", Defect: "el PPT no menciona RGPD"},
	},
	types.SectionCEC: {
		{Marker: "100%", Defect: "el CEC no totaliza pesos al 100%"},
	},
	types.SectionCR: {
		{Marker: "100%", Defect: "el CR no totaliza pesos al 100%"},
	},
}

// CheckSection validates one section's content against its marker table.
// It returns pass/fail plus ordered defect descriptions and never mutates
// section state; the caller decides whether to advance the status.
func CheckSection(id types.SectionID, content string) (bool, []string) {
	var defects []string
	for _, rule := range sectionRules[id] {
		if !containsMarker(content, rule.Marker) {
			defects = append(defects, rule.Defect)
		}
	}
	return len(defects) == 0, defects
}

func containsMarker(content, marker string) bool {
	return strings.Contains(strings.ToLower(content), strings.ToLower(marker))
}
