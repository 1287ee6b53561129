package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/database"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// ListOpen returns open projects, excluding the given project ids.
	// Exclusion is exact id membership; pass nil to exclude nothing.
	ListOpen(ctx context.Context, excludeIDs []uuid.UUID) ([]*models.Project, error)
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

var _ ProjectRepository = (*projectRepository)(nil)

const projectColumns = `id, institution_id, title, description, domain_expertise, subskills,
	general_skills, hourly_rate, status, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.InstitutionID,
		&p.Title,
		&p.Description,
		&p.DomainExpertise,
		&p.Subskills,
		&p.GeneralSkills,
		&p.HourlyRate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusOpen
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, institution_id, title, description, domain_expertise,
			subskills, general_skills, hourly_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.InstitutionID,
		project.Title,
		project.Description,
		project.DomainExpertise,
		project.Subskills,
		project.GeneralSkills,
		project.HourlyRate,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListOpen returns open projects excluding the given ids.
func (r *projectRepository) ListOpen(ctx context.Context, excludeIDs []uuid.UUID) ([]*models.Project, error) {
	if excludeIDs == nil {
		excludeIDs = []uuid.UUID{}
	}

	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE status = $1 AND NOT (id = ANY($2))
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, models.ProjectStatusOpen, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list open projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	return projects, nil
}
