package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

func (r *FeedbackRepo) Create(ctx context.Context, f *models.Feedback) error {
	f.ID = uuid.New()
	query := `INSERT INTO feedback
		(id, engineer_id, category, question, context, expected_answer, site, team, priority, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		f.ID, f.EngineerID, f.Category, f.Question, f.Context, f.ExpectedAnswer,
		f.Site, f.Team, f.Priority, f.Tags, f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	f := &models.Feedback{}
	query := `SELECT id, engineer_id, category, question, context, expected_answer,
		site, team, priority, tags, status, admin_notes, created_at, updated_at
		FROM feedback WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.EngineerID, &f.Category, &f.Question, &f.Context, &f.ExpectedAnswer,
		&f.Site, &f.Team, &f.Priority, &f.Tags, &f.Status, &f.AdminNotes,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FeedbackRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Feedback, int, error) {
	var args []interface{}
	where := ""
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM feedback "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT id, engineer_id, category, question, context, expected_answer,
		site, team, priority, tags, status, admin_notes, created_at, updated_at
		FROM feedback ` + where + ` ORDER BY created_at DESC`
	if where == "" {
		query += " LIMIT $1 OFFSET $2"
	} else {
		query += " LIMIT $2 OFFSET $3"
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		err := rows.Scan(
			&f.ID, &f.EngineerID, &f.Category, &f.Question, &f.Context, &f.ExpectedAnswer,
			&f.Site, &f.Team, &f.Priority, &f.Tags, &f.Status, &f.AdminNotes,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

func (r *FeedbackRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, adminNotes *string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE feedback SET status = $1, admin_notes = $2, updated_at = NOW() WHERE id = $3",
		status, adminNotes, id,
	)
	return err
}
