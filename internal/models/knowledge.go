package models

import (
	"time"

	"github.com/google/uuid"
)

// Knowledge collection categories match the question bank seed.
var KnowledgeCategories = []string{"procedures", "equipment", "safety", "maintenance"}

type KnowledgeQuestion struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Question    string    `json:"question"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	KnowledgePending  = "pending"
	KnowledgeIngested = "ingested"
	KnowledgeFailed   = "failed"
)

type KnowledgeResponse struct {
	ID         uuid.UUID  `json:"id"`
	QuestionID uuid.UUID  `json:"question_id"`
	EngineerID uuid.UUID  `json:"engineer_id"`
	Response   string     `json:"response"`
	Status     string     `json:"status"` // "pending" | "ingested" | "failed"
	CreatedAt  time.Time  `json:"created_at"`
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}

type SubmitKnowledgeRequest struct {
	QuestionID uuid.UUID `json:"question_id"`
	Response   string    `json:"response"`
}
