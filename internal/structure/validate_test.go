package structure

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"generated layout", "📁 Electrical/\n  📁 Vendors/", true},
		{"plain path layout", "Electrical/Vendors/contracts\nElectrical/Manuals", true},
		{"default template", DefaultTemplate, true},
		{"empty", "", false},
		{"too short", "📁 A/", false},
		{"clarifying question", "I'm not sure, can you clarify what you mean by folders?", false},
		{"apology", "I'm sorry, there was an error processing your request right now.", false},
		{"no markers", "The weather is nice today and everything is fine over here.", false},
		{"question dominated", "folders? files? vendors? equipment?", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			valid, reason := Validate(tc.text)
			if valid != tc.valid {
				t.Errorf("Expected valid=%v, got %v (reason %q)", tc.valid, valid, reason)
			}
			if !valid && reason == "" {
				t.Error("Expected a reason for invalid text")
			}
		})
	}
}

func TestValidate_AcceptedTextIsNeverFallback(t *testing.T) {
	candidate := "📁 Electrical/\n  📁 Vendors/\n  📁 Switchgear/"

	valid, _ := Validate(candidate)
	if !valid {
		t.Fatal("Expected candidate to validate")
	}
	if candidate == DefaultTemplate {
		t.Error("Accepted candidate must not be the fallback template")
	}
}

func TestValidate_FailurePhrasesCaseInsensitive(t *testing.T) {
	text := "I'M SORRY, the folder structure could not be generated for this conversation."

	valid, _ := Validate(text)
	if valid {
		t.Error("Expected uppercase failure phrase to be rejected")
	}
}

func TestDefaultTemplate_ContainsNoFailurePhrases(t *testing.T) {
	lower := strings.ToLower(DefaultTemplate)
	for _, phrase := range failurePhrases {
		if strings.Contains(lower, phrase) {
			t.Errorf("Fallback template contains failure phrase %q", phrase)
		}
	}
}
