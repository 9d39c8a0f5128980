package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.InterviewSession) error {
	s.ID = uuid.New()
	query := `INSERT INTO interview_sessions
		(id, engineer_id, conversation_id, engineer_alias, topic, state, question_index, current_question)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.EngineerID, s.ConversationID, s.EngineerAlias, s.Topic,
		s.State, s.QuestionIndex, s.CurrentQuestion,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewSession, error) {
	s := &models.InterviewSession{}
	query := `SELECT id, engineer_id, conversation_id, engineer_alias, topic, state,
		question_index, current_question, structure_warning, created_at, updated_at
		FROM interview_sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.EngineerID, &s.ConversationID, &s.EngineerAlias, &s.Topic, &s.State,
		&s.QuestionIndex, &s.CurrentQuestion, &s.StructureWarning, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetLatestByEngineer returns the engineer's most recent session so a reloaded
// client can resume where it left off.
func (r *SessionRepo) GetLatestByEngineer(ctx context.Context, engineerID uuid.UUID) (*models.InterviewSession, error) {
	s := &models.InterviewSession{}
	query := `SELECT id, engineer_id, conversation_id, engineer_alias, topic, state,
		question_index, current_question, structure_warning, created_at, updated_at
		FROM interview_sessions WHERE engineer_id = $1
		ORDER BY created_at DESC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, engineerID).Scan(
		&s.ID, &s.EngineerID, &s.ConversationID, &s.EngineerAlias, &s.Topic, &s.State,
		&s.QuestionIndex, &s.CurrentQuestion, &s.StructureWarning, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) UpdateProgress(ctx context.Context, id uuid.UUID, questionIndex int, currentQuestion string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE interview_sessions SET question_index = $1, current_question = $2, updated_at = NOW() WHERE id = $3",
		questionIndex, currentQuestion, id,
	)
	return err
}

func (r *SessionRepo) UpdateState(ctx context.Context, id uuid.UUID, state string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE interview_sessions SET state = $1, updated_at = NOW() WHERE id = $2",
		state, id,
	)
	return err
}

func (r *SessionRepo) SetWarning(ctx context.Context, id uuid.UUID, warning *string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE interview_sessions SET structure_warning = $1, updated_at = NOW() WHERE id = $2",
		warning, id,
	)
	return err
}

// Delete removes the session along with its transcript and structure versions.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM interview_sessions WHERE id = $1", id)
	return err
}
