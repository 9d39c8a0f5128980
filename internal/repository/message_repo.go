package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, m *models.Message) error {
	m.ID = uuid.New()
	query := `INSERT INTO interview_messages (id, session_id, sender, body, is_structure)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		m.ID, m.SessionID, m.Sender, m.Body, m.IsStructure,
	).Scan(&m.CreatedAt)
}

func (r *MessageRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	query := `SELECT id, session_id, sender, body, is_structure, created_at
		FROM interview_messages WHERE session_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Body, &m.IsStructure, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
