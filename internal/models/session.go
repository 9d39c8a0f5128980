package models

import (
	"time"

	"github.com/google/uuid"
)

// Interview session states. The pre-session "start" screen has no session row;
// "analyzing" is a client display state and is never persisted.
const (
	SessionActive    = "active"
	SessionFeedback  = "feedback"
	SessionConfirmed = "confirmed"
)

type InterviewSession struct {
	ID               uuid.UUID `json:"id"`
	EngineerID       uuid.UUID `json:"engineer_id"`
	ConversationID   string    `json:"conversation_id"`
	EngineerAlias    string    `json:"engineer_alias"`
	Topic            string    `json:"topic"`
	State            string    `json:"state"`
	QuestionIndex    int       `json:"question_index"`
	CurrentQuestion  string    `json:"current_question"`
	StructureWarning *string   `json:"structure_warning,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// InterviewTopic is one of the fixed topics an engineer can pick on the start
// screen.
type InterviewTopic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var InterviewTopics = []InterviewTopic{
	{
		ID:          "file_organization",
		Title:       "File Organization Structure",
		Description: "How engineering documents and folders should be organized",
	},
	{
		ID:          "vendor_folders",
		Title:       "Vendor Document Organization",
		Description: "How vendor documents should be structured",
	},
	{
		ID:          "equipment_docs",
		Title:       "Equipment Documentation",
		Description: "How equipment manuals and specs should be organized",
	},
	{
		ID:          "procedures",
		Title:       "Procedures and SOPs",
		Description: "Best way to organize standard operating procedures",
	},
}

// ValidTopic reports whether id names one of the fixed interview topics.
func ValidTopic(id string) bool {
	for _, t := range InterviewTopics {
		if t.ID == id {
			return true
		}
	}
	return false
}

type StartInterviewRequest struct {
	Alias string `json:"alias"`
	Topic string `json:"topic"`
}

type SubmitAnswerRequest struct {
	Text string `json:"text"`
}
