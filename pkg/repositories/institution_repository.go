package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/database"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
)

// InstitutionRepository defines the interface for institution data access.
type InstitutionRepository interface {
	Create(ctx context.Context, institution *models.Institution) error
	Get(ctx context.Context, id uuid.UUID) (*models.Institution, error)
}

type institutionRepository struct {
	db *database.DB
}

// NewInstitutionRepository creates a new institution repository.
func NewInstitutionRepository(db *database.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

var _ InstitutionRepository = (*institutionRepository)(nil)

// Create inserts a new institution.
func (r *institutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == uuid.Nil {
		institution.ID = uuid.New()
	}
	now := time.Now()
	institution.CreatedAt = now
	institution.UpdatedAt = now

	query := `
		INSERT INTO institutions (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		institution.ID,
		institution.Name,
		institution.Email,
		institution.CreatedAt,
		institution.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create institution: %w", err)
	}

	return nil
}

// Get retrieves an institution by ID.
func (r *institutionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	query := `SELECT id, name, email, created_at, updated_at FROM institutions WHERE id = $1`

	var inst models.Institution
	err := r.db.QueryRow(ctx, query, id).Scan(
		&inst.ID,
		&inst.Name,
		&inst.Email,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get institution: %w", err)
	}

	return &inst, nil
}
