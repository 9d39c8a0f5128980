package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type EngineerRepo struct {
	pool *pgxpool.Pool
}

func NewEngineerRepo(pool *pgxpool.Pool) *EngineerRepo {
	return &EngineerRepo{pool: pool}
}

func (r *EngineerRepo) Create(ctx context.Context, e *models.Engineer) error {
	e.ID = uuid.New()
	query := `INSERT INTO engineers (id, email, password_hash, alias, site, team)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		e.ID, e.Email, e.PasswordHash, e.Alias, e.Site, e.Team,
	).Scan(&e.CreatedAt)
}

func (r *EngineerRepo) GetByEmail(ctx context.Context, email string) (*models.Engineer, error) {
	e := &models.Engineer{}
	query := `SELECT id, email, password_hash, alias, site, team, created_at, last_login_at
		FROM engineers WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&e.ID, &e.Email, &e.PasswordHash, &e.Alias, &e.Site, &e.Team,
		&e.CreatedAt, &e.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EngineerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Engineer, error) {
	e := &models.Engineer{}
	query := `SELECT id, email, password_hash, alias, site, team, created_at, last_login_at
		FROM engineers WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Email, &e.PasswordHash, &e.Alias, &e.Site, &e.Team,
		&e.CreatedAt, &e.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EngineerRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE engineers SET last_login_at = NOW() WHERE id = $1", id)
	return err
}
