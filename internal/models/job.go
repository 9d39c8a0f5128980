package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobKnowledgeIngestion = "knowledge-ingestion"
	JobStructureExport    = "structure-export"
)

// QueueJob is the payload pushed onto the Redis work queues.
type QueueJob struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"` // "knowledge-ingestion" | "structure-export"
	EngineerID  uuid.UUID `json:"engineer_id"`
	ReferenceID uuid.UUID `json:"reference_id"`
	RetryCount  int       `json:"retry_count"`
	CreatedAt   time.Time `json:"created_at"`
}
