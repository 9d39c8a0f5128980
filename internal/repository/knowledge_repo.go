package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type KnowledgeRepo struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepo(pool *pgxpool.Pool) *KnowledgeRepo {
	return &KnowledgeRepo{pool: pool}
}

// RandomQuestionByCategory picks one question from the bank. The bank is
// small, so ORDER BY RANDOM() is fine here.
func (r *KnowledgeRepo) RandomQuestionByCategory(ctx context.Context, category string) (*models.KnowledgeQuestion, error) {
	q := &models.KnowledgeQuestion{}
	query := `SELECT id, category, subcategory, question, created_at
		FROM knowledge_questions WHERE category = $1
		ORDER BY RANDOM() LIMIT 1`

	err := r.pool.QueryRow(ctx, query, category).Scan(
		&q.ID, &q.Category, &q.Subcategory, &q.Question, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *KnowledgeRepo) GetQuestion(ctx context.Context, id uuid.UUID) (*models.KnowledgeQuestion, error) {
	q := &models.KnowledgeQuestion{}
	query := `SELECT id, category, subcategory, question, created_at
		FROM knowledge_questions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.Category, &q.Subcategory, &q.Question, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *KnowledgeRepo) CreateResponse(ctx context.Context, resp *models.KnowledgeResponse) error {
	resp.ID = uuid.New()
	query := `INSERT INTO knowledge_responses (id, question_id, engineer_id, response, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		resp.ID, resp.QuestionID, resp.EngineerID, resp.Response, resp.Status,
	).Scan(&resp.CreatedAt)
}

func (r *KnowledgeRepo) GetResponse(ctx context.Context, id uuid.UUID) (*models.KnowledgeResponse, error) {
	resp := &models.KnowledgeResponse{}
	query := `SELECT id, question_id, engineer_id, response, status, created_at, ingested_at
		FROM knowledge_responses WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&resp.ID, &resp.QuestionID, &resp.EngineerID, &resp.Response, &resp.Status,
		&resp.CreatedAt, &resp.IngestedAt,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *KnowledgeRepo) UpdateResponseStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == models.KnowledgeIngested {
		_, err := r.pool.Exec(ctx,
			"UPDATE knowledge_responses SET status = $1, ingested_at = NOW() WHERE id = $2", status, id)
		return err
	}
	_, err := r.pool.Exec(ctx,
		"UPDATE knowledge_responses SET status = $1 WHERE id = $2", status, id)
	return err
}
