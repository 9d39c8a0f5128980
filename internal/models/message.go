package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one transcript entry. Messages are append-only for the lifetime
// of a session and are deleted wholesale on reset.
type Message struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Sender      string    `json:"sender"` // "user" | "assistant"
	Body        string    `json:"body"`
	IsStructure bool      `json:"is_structure"`
	CreatedAt   time.Time `json:"created_at"`
}
