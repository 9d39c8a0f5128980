package structure

import (
	"reflect"
	"testing"

	"dceo-backend/internal/models"
)

func TestParse_SimpleTree(t *testing.T) {
	text := "📁 Electrical/\n  📁 Vendors/\n    📄 schneider-contract.pdf"

	nodes := Parse(text)

	expected := []models.TreeNode{
		{Name: "Electrical", Level: 0, IsFolder: true},
		{Name: "Vendors", Level: 1, IsFolder: true},
		{Name: "schneider-contract.pdf", Level: 2, IsFolder: false},
	}
	if !reflect.DeepEqual(nodes, expected) {
		t.Errorf("Expected %+v, got %+v", expected, nodes)
	}
}

func TestParse_Classification(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		isFolder bool
		nodeName string
	}{
		{"trailing slash is folder", "  Electrical/", true, "Electrical"},
		{"folder glyph is folder", "  📁 UPS", true, "UPS"},
		{"folder keyword is folder", "  vendor folders", true, "vendor folders"},
		{"level zero is folder", "Electrical", true, "Electrical"},
		{"uppercase nested line is folder", "  Manuals", true, "Manuals"},
		{"lowercase nested file", "  readme.md", false, "readme.md"},
		{"file glyph stripped", "  📄 checklist.md", false, "checklist.md"},
		{"bullet stripped", "  - 📄 notes.txt", false, "notes.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nodes := Parse(tc.line)
			if len(nodes) != 1 {
				t.Fatalf("Expected 1 node, got %d", len(nodes))
			}
			if nodes[0].IsFolder != tc.isFolder {
				t.Errorf("Expected IsFolder=%v, got %v", tc.isFolder, nodes[0].IsFolder)
			}
			if nodes[0].Name != tc.nodeName {
				t.Errorf("Expected name %q, got %q", tc.nodeName, nodes[0].Name)
			}
		})
	}
}

func TestParse_Levels(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		level int
	}{
		{"no indent", "📁 Root/", 0},
		{"two spaces", "  📁 Child/", 1},
		{"three spaces floors to one", "   📁 Child/", 1},
		{"four spaces", "    📁 Grandchild/", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nodes := Parse(tc.line)
			if len(nodes) != 1 {
				t.Fatalf("Expected 1 node, got %d", len(nodes))
			}
			if nodes[0].Level != tc.level {
				t.Errorf("Expected level %d, got %d", tc.level, nodes[0].Level)
			}
		})
	}
}

func TestParse_SkipsMarkupAndLabels(t *testing.T) {
	text := "# Recommended Layout\n**Generated for you**\nTopic: file organization\n📁 Electrical/\n---\n```"

	nodes := Parse(text)

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 node, got %d: %+v", len(nodes), nodes)
	}
	if nodes[0].Name != "Electrical" {
		t.Errorf("Expected 'Electrical', got %q", nodes[0].Name)
	}
}

func TestParse_EmptyYieldsPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t\n  "},
		{"markup only", "# Header\n**bold**"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nodes := Parse(tc.text)
			if len(nodes) != 1 {
				t.Fatalf("Expected single placeholder node, got %d", len(nodes))
			}
			if nodes[0].Name != "No structure available" || nodes[0].IsFolder {
				t.Errorf("Unexpected placeholder node: %+v", nodes[0])
			}
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	texts := []string{
		DefaultTemplate,
		divisionsTemplate,
		"📁 Electrical/\n  📁 Vendors/",
		"random text without any markers?",
		"",
	}

	for _, text := range texts {
		first := Parse(text)
		second := Parse(text)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Parse not idempotent for %q", text)
		}
	}
}

func TestParse_DefaultTemplate(t *testing.T) {
	nodes := Parse(DefaultTemplate)

	if nodes[0].Name != "Engineering Documentation" || !nodes[0].IsFolder || nodes[0].Level != 0 {
		t.Errorf("Unexpected root node: %+v", nodes[0])
	}

	var files, folders int
	for _, n := range nodes {
		if n.IsFolder {
			folders++
		} else {
			files++
		}
	}
	if folders == 0 || files == 0 {
		t.Errorf("Expected both folders and files, got %d folders %d files", folders, files)
	}
}
