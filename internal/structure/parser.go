package structure

import (
	"strings"
	"unicode"

	"dceo-backend/internal/models"
)

// Glyphs the assistant uses to mark folders and files in generated layouts.
var folderGlyphs = []string{"📁", "📂", "🗂"}

const fileGlyph = "📄"

// Parse converts indentation-based structure text into an ordered node list
// for rendering. It is a heuristic, not a grammar: malformed input never
// produces an error, and text with no qualifying line yields a single
// placeholder node. Parsing the same text twice yields identical nodes.
func Parse(text string) []models.TreeNode {
	var nodes []models.TreeNode

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isMarkupLine(trimmed) || isLabelLine(trimmed) {
			continue
		}

		level := leadingWhitespace(line) / 2
		name := cleanName(trimmed)
		if name == "" {
			continue
		}

		nodes = append(nodes, models.TreeNode{
			Name:     name,
			Level:    level,
			IsFolder: isFolder(trimmed, name, level),
		})
	}

	if len(nodes) == 0 {
		return []models.TreeNode{{Name: "No structure available", Level: 0, IsFolder: false}}
	}
	return nodes
}

// isMarkupLine reports whether the line is a pure header or markdown
// decoration rather than a tree entry.
func isMarkupLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "```") ||
		strings.HasPrefix(trimmed, "---") ||
		(strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**")) ||
		(strings.HasPrefix(trimmed, "__") && strings.HasSuffix(trimmed, "__"))
}

// isLabelLine reports whether the line looks like a "label: value" pair with
// no path segment, e.g. "Topic: vendor folders".
func isLabelLine(trimmed string) bool {
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return false
	}
	if strings.ContainsAny(trimmed, "/\\") {
		return false
	}
	for _, g := range folderGlyphs {
		if strings.Contains(trimmed, g) {
			return false
		}
	}
	return !strings.Contains(trimmed, fileGlyph)
}

func leadingWhitespace(line string) int {
	count := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			count++
			continue
		}
		break
	}
	return count
}

func isFolder(trimmed, name string, level int) bool {
	if strings.HasSuffix(trimmed, "/") || strings.HasSuffix(trimmed, "\\") {
		return true
	}
	for _, g := range folderGlyphs {
		if strings.Contains(trimmed, g) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(trimmed), "folder") {
		return true
	}
	if level == 0 {
		return true
	}
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// cleanName strips bullets, marker glyphs and trailing separators from the
// display name.
func cleanName(trimmed string) string {
	name := trimmed
	for _, prefix := range []string{"- ", "* ", "+ ", "• "} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	for _, g := range folderGlyphs {
		name = strings.ReplaceAll(name, g, "")
	}
	name = strings.ReplaceAll(name, fileGlyph, "")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "/\\")
	return strings.TrimSpace(name)
}
