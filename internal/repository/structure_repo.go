package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dceo-backend/internal/models"
)

type StructureRepo struct {
	pool *pgxpool.Pool
}

func NewStructureRepo(pool *pgxpool.Pool) *StructureRepo {
	return &StructureRepo{pool: pool}
}

// Create appends a new version for the session. The version number is
// assigned in the insert so concurrent writers cannot collide.
func (r *StructureRepo) Create(ctx context.Context, v *models.StructureVersion) error {
	v.ID = uuid.New()
	query := `INSERT INTO structure_versions (id, session_id, version_no, structure_text, description)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(version_no), 0) + 1 FROM structure_versions WHERE session_id = $2),
			$3, $4)
		RETURNING version_no, created_at`

	return r.pool.QueryRow(ctx, query,
		v.ID, v.SessionID, v.StructureText, v.Description,
	).Scan(&v.VersionNo, &v.CreatedAt)
}

func (r *StructureRepo) Latest(ctx context.Context, sessionID uuid.UUID) (*models.StructureVersion, error) {
	v := &models.StructureVersion{}
	query := `SELECT id, session_id, version_no, structure_text, description, confirmed, created_at
		FROM structure_versions WHERE session_id = $1
		ORDER BY version_no DESC LIMIT 1`

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&v.ID, &v.SessionID, &v.VersionNo, &v.StructureText, &v.Description, &v.Confirmed, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *StructureRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.StructureVersion, error) {
	query := `SELECT id, session_id, version_no, structure_text, description, confirmed, created_at
		FROM structure_versions WHERE session_id = $1 ORDER BY version_no ASC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []models.StructureVersion
	for rows.Next() {
		var v models.StructureVersion
		err := rows.Scan(&v.ID, &v.SessionID, &v.VersionNo, &v.StructureText, &v.Description, &v.Confirmed, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (r *StructureRepo) Confirm(ctx context.Context, versionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE structure_versions SET confirmed = TRUE WHERE id = $1", versionID)
	return err
}

// SaveExport records the parsed tree of a confirmed structure for downstream
// consumers. Exports survive session deletion, so there is no foreign key.
func (r *StructureRepo) SaveExport(ctx context.Context, sessionID uuid.UUID, conversationID string, nodeCount int, treeJSON []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO structure_exports (id, session_id, conversation_id, node_count, tree_json)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), sessionID, conversationID, nodeCount, treeJSON,
	)
	return err
}
