package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dceo-backend/internal/models"
)

type knowledgeStore interface {
	RandomQuestionByCategory(ctx context.Context, category string) (*models.KnowledgeQuestion, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.KnowledgeQuestion, error)
	CreateResponse(ctx context.Context, resp *models.KnowledgeResponse) error
	GetResponse(ctx context.Context, id uuid.UUID) (*models.KnowledgeResponse, error)
	UpdateResponseStatus(ctx context.Context, id uuid.UUID, status string) error
}

// KnowledgeService serves questions from the bank and queues submitted
// responses for ingestion into the knowledge base.
type KnowledgeService struct {
	store knowledgeStore
	queue jobQueue
}

func NewKnowledgeService(store knowledgeStore, queue jobQueue) *KnowledgeService {
	return &KnowledgeService{store: store, queue: queue}
}

func validCategory(category string) bool {
	for _, c := range models.KnowledgeCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (s *KnowledgeService) Question(ctx context.Context, category string) (*models.KnowledgeQuestion, error) {
	if !validCategory(category) {
		return nil, &ValidationError{Fields: map[string]string{"category": "Unknown category"}}
	}

	question, err := s.store.RandomQuestionByCategory(ctx, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No questions in this category"}
		}
		return nil, err
	}
	return question, nil
}

func (s *KnowledgeService) SubmitResponse(ctx context.Context, engineerID uuid.UUID, req models.SubmitKnowledgeRequest) (*models.KnowledgeResponse, error) {
	if strings.TrimSpace(req.Response) == "" {
		return nil, &ValidationError{Fields: map[string]string{"response": "Response must not be empty"}}
	}

	if _, err := s.store.GetQuestion(ctx, req.QuestionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Question not found"}
		}
		return nil, err
	}

	response := &models.KnowledgeResponse{
		QuestionID: req.QuestionID,
		EngineerID: engineerID,
		Response:   strings.TrimSpace(req.Response),
		Status:     models.KnowledgePending,
	}
	if err := s.store.CreateResponse(ctx, response); err != nil {
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, models.QueueJob{
			Type:        models.JobKnowledgeIngestion,
			EngineerID:  engineerID,
			ReferenceID: response.ID,
		}); err != nil {
			return nil, err
		}
	}
	return response, nil
}
