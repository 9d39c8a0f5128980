package models

import "github.com/google/uuid"

// API error response envelope.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket event envelope published over Redis pub/sub.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type MessageEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   Message   `json:"message"`
}

type StructureVersionEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	VersionNo int       `json:"version_no"`
}

type StructureConfirmedEvent struct {
	SessionID      uuid.UUID `json:"session_id"`
	ConversationID string    `json:"conversation_id"`
	VersionNo      int       `json:"version_no"`
}

type KnowledgeIngestedEvent struct {
	ResponseID uuid.UUID `json:"response_id"`
	Status     string    `json:"status"`
}
