package structure

import (
	"fmt"
	"strings"
)

// Template identifiers for the guideline rule table.
const (
	TemplateDivisions = "divisions"
	TemplateVendor    = "vendor"
	TemplateEquipment = "equipment"
	TemplateSafety    = "safety"
	TemplateDefault   = "default"
)

// DefaultTemplate is the fixed reference layout. It doubles as the fallback
// when a gateway response fails validation.
const DefaultTemplate = `📁 Engineering Documentation/
  📁 Electrical/
    📁 Switchgear/
    📁 UPS/
    📁 Vendors/
    📄 single-line-diagram.pdf
  📁 Mechanical/
    📁 HVAC/
    📁 Chillers/
    📁 Maintenance Records/
  📁 Procedures/
    📁 SOPs/
    📁 Emergency Response/
    📄 escalation-contacts.md
  📁 Safety/
    📁 LOTO/
    📄 site-safety-plan.pdf`

const divisionsTemplate = `📁 Mechanical/
  📁 HVAC/
  📁 Chillers/
  📁 Maintenance Records/
📁 Electrical/
  📁 Switchgear/
  📁 UPS/
  📁 Generators/
📁 Shared/
  📁 Procedures/
  📄 escalation-contacts.md`

const vendorTemplate = `📁 Vendors/
  📁 Electrical Vendors/
    📁 Contracts/
    📁 Service Reports/
  📁 Mechanical Vendors/
    📁 Contracts/
    📁 Service Reports/
  📄 vendor-contact-list.md
📁 Internal Documentation/
  📁 Procedures/
  📁 Drawings/`

const equipmentTemplate = `📁 Equipment/
  📁 Generators/
    📁 Manuals/
    📁 Maintenance Logs/
  📁 UPS Systems/
    📁 Manuals/
    📁 Battery Records/
  📁 CRAH Units/
    📁 Manuals/
    📁 Filter Schedules/
📁 Reference/
  📄 equipment-register.xlsx`

const safetyTemplate = `📁 Safety/
  📁 LOTO/
    📄 loto-procedures.pdf
  📁 Arc Flash/
    📄 arc-flash-study.pdf
  📁 Permits/
    📁 Hot Work/
    📁 Confined Space/
📁 Procedures/
  📁 Emergency Response/
  📁 SOPs/`

// templateRule maps a keyword set to a template. Every keyword must appear in
// the feedback for the rule to fire; rules are checked in order.
type templateRule struct {
	keywords []string
	id       string
	text     string
}

var templateRules = []templateRule{
	{keywords: []string{"mechanical", "electrical"}, id: TemplateDivisions, text: divisionsTemplate},
	{keywords: []string{"vendor"}, id: TemplateVendor, text: vendorTemplate},
	{keywords: []string{"equipment"}, id: TemplateEquipment, text: equipmentTemplate},
	{keywords: []string{"safety"}, id: TemplateSafety, text: safetyTemplate},
}

// SelectTemplate picks a deterministic layout for free-text guideline
// feedback. Unmatched feedback gets the default layout with a note recording
// that the guidelines were applied.
func SelectTemplate(feedback string) (string, string) {
	lower := strings.ToLower(feedback)

	for _, rule := range templateRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(lower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.id, rule.text
		}
	}

	annotated := fmt.Sprintf("%s\n\n# Guidelines applied: %s", DefaultTemplate, Truncate(feedback, 80))
	return TemplateDefault, annotated
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
