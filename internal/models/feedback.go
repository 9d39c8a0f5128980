package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeedbackPendingReview = "pending_review"
	FeedbackApproved      = "approved"
	FeedbackRejected      = "rejected"
)

// Feedback is a knowledge-base contribution awaiting admin review.
type Feedback struct {
	ID             uuid.UUID `json:"id"`
	EngineerID     uuid.UUID `json:"engineer_id"`
	Category       string    `json:"category"`
	Question       string    `json:"question"`
	Context        *string   `json:"context"`
	ExpectedAnswer string    `json:"expected_answer"`
	Site           *string   `json:"site"`
	Team           *string   `json:"team"`
	Priority       string    `json:"priority"` // "low" | "medium" | "high" | "critical"
	Tags           []string  `json:"tags"`
	Status         string    `json:"status"`
	AdminNotes     *string   `json:"admin_notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SubmitFeedbackRequest struct {
	Category       string   `json:"category"`
	Question       string   `json:"question"`
	Context        *string  `json:"context"`
	ExpectedAnswer string   `json:"expected_answer"`
	Site           *string  `json:"site"`
	Team           *string  `json:"team"`
	Priority       string   `json:"priority"`
	Tags           []string `json:"tags"`
}

type UpdateFeedbackRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes"`
}
