package structure

import "strings"

// MinStructureLength is the minimum trimmed length for a candidate structure
// to be taken seriously.
const MinStructureLength = 20

// failurePhrases mark responses that are apologies or clarifying questions
// rather than generated layouts.
var failurePhrases = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"i'm not sure",
	"i am not sure",
	"can you clarify",
	"could you clarify",
	"what do you mean",
	"i don't understand",
	"i do not understand",
	"there was an error",
	"unable to generate",
	"please try again",
}

// Validate reports whether text is a genuine structure. When it is not, the
// caller substitutes DefaultTemplate and records the returned reason as a
// warning.
func Validate(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinStructureLength {
		return false, "response too short to be a structure"
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range failurePhrases {
		if strings.Contains(lower, phrase) {
			return false, "response looks like an apology or clarifying question"
		}
	}

	if !hasStructuralMarker(trimmed, lower) {
		return false, "response has no folder or file markers"
	}

	if strings.Count(trimmed, "?") > len(nonEmptyLines(trimmed)) {
		return false, "response is dominated by questions"
	}

	return true, ""
}

func hasStructuralMarker(text, lower string) bool {
	if strings.ContainsAny(text, "/\\") {
		return true
	}
	for _, g := range folderGlyphs {
		if strings.Contains(text, g) {
			return true
		}
	}
	if strings.Contains(text, fileGlyph) {
		return true
	}
	return strings.Contains(lower, "folder") || strings.Contains(lower, "file")
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
