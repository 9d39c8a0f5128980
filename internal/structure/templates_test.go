package structure

import (
	"strings"
	"testing"
)

func TestSelectTemplate_RuleTable(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		id       string
	}{
		{"divisions", "organize by Mechanical and Electrical divisions", TemplateDivisions},
		{"divisions case insensitive", "split MECHANICAL from ELECTRICAL please", TemplateDivisions},
		{"vendor", "group everything by vendor", TemplateVendor},
		{"equipment", "I want folders per equipment type", TemplateEquipment},
		{"safety", "safety documents should come first", TemplateSafety},
		{"unmatched", "just make it simpler", TemplateDefault},
		{"empty", "", TemplateDefault},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, text := SelectTemplate(tc.feedback)
			if id != tc.id {
				t.Errorf("Expected template %q, got %q", tc.id, id)
			}
			if text == "" {
				t.Error("Expected non-empty template text")
			}
		})
	}
}

func TestSelectTemplate_DivisionsHasTopLevelNodes(t *testing.T) {
	_, text := SelectTemplate("organize by Mechanical and Electrical divisions")

	nodes := Parse(text)

	var mechanical, electrical bool
	for _, n := range nodes {
		if n.Level != 0 || !n.IsFolder {
			continue
		}
		switch n.Name {
		case "Mechanical":
			mechanical = true
		case "Electrical":
			electrical = true
		}
	}
	if !mechanical || !electrical {
		t.Errorf("Expected top-level Mechanical and Electrical folders, got %+v", nodes)
	}
}

func TestSelectTemplate_UnmatchedAnnotatesDefault(t *testing.T) {
	feedback := "keep it flat and boring"

	id, text := SelectTemplate(feedback)

	if id != TemplateDefault {
		t.Fatalf("Expected default template, got %q", id)
	}
	if !strings.HasPrefix(text, DefaultTemplate) {
		t.Error("Expected annotated text to start with the default template")
	}
	if !strings.Contains(text, "Guidelines applied") || !strings.Contains(text, feedback) {
		t.Error("Expected annotation echoing the feedback")
	}
}

func TestSelectTemplate_TemplatesAllValidate(t *testing.T) {
	for _, rule := range templateRules {
		valid, reason := Validate(rule.text)
		if !valid {
			t.Errorf("Template %q fails validation: %s", rule.id, reason)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"short kept", "hello", 10, "hello"},
		{"exact kept", "hello", 5, "hello"},
		{"long cut", "hello world", 5, "hello..."},
		{"trims whitespace", "  hi  ", 10, "hi"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Truncate(tc.input, tc.n)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
