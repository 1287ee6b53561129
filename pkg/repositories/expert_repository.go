// Package repositories implements data access for skillbridge-engine
// against PostgreSQL.
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

// ExpertRepository defines the interface for expert data access.
type ExpertRepository interface {
	Create(ctx context.Context, expert *models.Expert) error
	Get(ctx context.Context, id uuid.UUID) (*models.Expert, error)
	ListVerified(ctx context.Context) ([]*models.Expert, error)
}

type expertRepository struct {
	db *database.DB
}

// NewExpertRepository creates a new expert repository.
func NewExpertRepository(db *database.DB) ExpertRepository {
	return &expertRepository{db: db}
}

var _ ExpertRepository = (*expertRepository)(nil)

const expertColumns = `id, full_name, email, domain_expertise, subskills, general_skills,
	hourly_rate, rating, total_ratings, is_verified, created_at, updated_at`

func scanExpert(row pgx.Row) (*models.Expert, error) {
	var e models.Expert
	err := row.Scan(
		&e.ID,
		&e.FullName,
		&e.Email,
		&e.DomainExpertise,
		&e.Subskills,
		&e.GeneralSkills,
		&e.HourlyRate,
		&e.Rating,
		&e.TotalRatings,
		&e.IsVerified,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new expert.
func (r *expertRepository) Create(ctx context.Context, expert *models.Expert) error {
	if expert.ID == uuid.Nil {
		expert.ID = uuid.New()
	}
	now := time.Now()
	expert.CreatedAt = now
	expert.UpdatedAt = now

	query := `
		INSERT INTO experts (id, full_name, email, domain_expertise, subskills, general_skills,
			hourly_rate, rating, total_ratings, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		expert.ID,
		expert.FullName,
		expert.Email,
		expert.DomainExpertise,
		expert.Subskills,
		expert.GeneralSkills,
		expert.HourlyRate,
		expert.Rating,
		expert.TotalRatings,
		expert.IsVerified,
		expert.CreatedAt,
		expert.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create expert: %w", err)
	}

	return nil
}

// Get retrieves an expert by ID.
func (r *expertRepository) Get(ctx context.Context, id uuid.UUID) (*models.Expert, error) {
	query := `SELECT ` + expertColumns + ` FROM experts WHERE id = $1`

	expert, err := scanExpert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expert: %w", err)
	}

	return expert, nil
}

// ListVerified returns all verified experts, the candidate pool for
// expert recommendations.
func (r *expertRepository) ListVerified(ctx context.Context) ([]*models.Expert, error) {
	query := `SELECT ` + expertColumns + ` FROM experts WHERE is_verified = TRUE ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified experts: %w", err)
	}
	defer rows.Close()

	var experts []*models.Expert
	for rows.Next() {
		expert, err := scanExpert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expert: %w", err)
		}
		experts = append(experts, expert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read experts: %w", err)
	}

	return experts, nil
}
