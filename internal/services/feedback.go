package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dceo-backend/internal/models"
	"dceo-backend/internal/repository"
)

var feedbackPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

// FeedbackService records knowledge-base contributions for admin review.
type FeedbackService struct {
	repo *repository.FeedbackRepo
}

func NewFeedbackService(repo *repository.FeedbackRepo) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Submit(ctx context.Context, engineerID uuid.UUID, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	fieldErrors := make(map[string]string)
	if req.Category == "" {
		fieldErrors["category"] = "Category is required"
	}
	if req.Question == "" {
		fieldErrors["question"] = "Question is required"
	}
	if req.ExpectedAnswer == "" {
		fieldErrors["expected_answer"] = "Expected answer is required"
	}
	if req.Priority != "" && !feedbackPriorities[req.Priority] {
		fieldErrors["priority"] = "Priority must be low, medium, high or critical"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	feedback := &models.Feedback{
		EngineerID:     engineerID,
		Category:       req.Category,
		Question:       req.Question,
		Context:        req.Context,
		ExpectedAnswer: req.ExpectedAnswer,
		Site:           req.Site,
		Team:           req.Team,
		Priority:       priority,
		Tags:           tags,
		Status:         models.FeedbackPendingReview,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) List(ctx context.Context, status string, limit, offset int) ([]models.Feedback, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Review applies an admin decision. Only pending feedback can be reviewed;
// decisions are final.
func (s *FeedbackService) Review(ctx context.Context, id uuid.UUID, req models.UpdateFeedbackRequest) (*models.Feedback, error) {
	if req.Status != models.FeedbackApproved && req.Status != models.FeedbackRejected {
		return nil, &ValidationError{Fields: map[string]string{"status": "Status must be approved or rejected"}}
	}

	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Feedback not found"}
		}
		return nil, err
	}
	if feedback.Status != models.FeedbackPendingReview {
		return nil, &ConflictError{Message: "Feedback has already been reviewed"}
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.AdminNotes); err != nil {
		return nil, err
	}

	feedback.Status = req.Status
	feedback.AdminNotes = req.AdminNotes
	return feedback, nil
}
