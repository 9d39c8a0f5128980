package models

import (
	"time"

	"github.com/google/uuid"
)

// StructureVersion is one historical snapshot of a proposed folder layout.
// Versions are append-only; refinement never mutates a prior version. At most
// one version per session is confirmed, and confirmation is terminal.
type StructureVersion struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"session_id"`
	VersionNo     int       `json:"version_no"`
	StructureText string    `json:"structure_text"`
	Description   string    `json:"description"`
	Confirmed     bool      `json:"confirmed"`
	CreatedAt     time.Time `json:"created_at"`
}

// TreeNode is derived from a version's text on every render and is never
// stored independently of its source.
type TreeNode struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	IsFolder bool   `json:"is_folder"`
}

type GuidelinesRequest struct {
	Feedback string `json:"feedback"`
}

type StructureView struct {
	Current  *StructureVersion  `json:"current"`
	Tree     []TreeNode         `json:"tree"`
	Versions []StructureVersion `json:"versions"`
	Warning  *string            `json:"warning,omitempty"`
}
