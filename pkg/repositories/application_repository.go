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

// ApplicationRepository defines the interface for application data access.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByExpertAndProject(ctx context.Context, expertID, projectID uuid.UUID) (*models.Application, error)
	// ListProjectIDsByExpert returns ids of all projects the expert has
	// applied to, regardless of application status.
	ListProjectIDsByExpert(ctx context.Context, expertID uuid.UUID) ([]uuid.UUID, error)
	// TransitionStatus moves an application from one status to another.
	// The update is conditional on the stored status still matching from,
	// so concurrent transitions cannot both win. Returns false when the
	// row exists but its status no longer matches.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ApplicationStatus, interviewAt *time.Time) (bool, error)
	// SetStatus writes the status unconditionally. Reserved for the
	// booking-cancellation side effect, which overrides the accepted
	// terminal state; every caller-driven move goes through
	// TransitionStatus instead.
	SetStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	// CountsByProjects groups application totals for the given project ids.
	CountsByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]models.ApplicationCounts, error)
}

type applicationRepository struct {
	db *database.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *database.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

var _ ApplicationRepository = (*applicationRepository)(nil)

const applicationColumns = `id, expert_id, project_id, status, proposed_rate, cover_note,
	applied_at, reviewed_at, interview_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID,
		&a.ExpertID,
		&a.ProjectID,
		&a.Status,
		&a.ProposedRate,
		&a.CoverNote,
		&a.AppliedAt,
		&a.ReviewedAt,
		&a.InterviewAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new application. A second application for the same
// (expert, project) pair hits the unique constraint and maps to ErrConflict.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}

	query := `
		INSERT INTO applications (id, expert_id, project_id, status, proposed_rate,
			cover_note, applied_at, reviewed_at, interview_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.ExpertID,
		app.ProjectID,
		app.Status,
		app.ProposedRate,
		app.CoverNote,
		app.AppliedAt,
		app.ReviewedAt,
		app.InterviewAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// Get retrieves an application by ID.
func (r *applicationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByExpertAndProject retrieves the application for an (expert, project) pair.
func (r *applicationRepository) GetByExpertAndProject(ctx context.Context, expertID, projectID uuid.UUID) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE expert_id = $1 AND project_id = $2`

	app, err := scanApplication(r.db.QueryRow(ctx, query, expertID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ListProjectIDsByExpert returns the project ids the expert has applied to.
func (r *applicationRepository) ListProjectIDsByExpert(ctx context.Context, expertID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT project_id FROM applications WHERE expert_id = $1`

	rows, err := r.db.Query(ctx, query, expertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applied projects: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project ids: %w", err)
	}

	return ids, nil
}

// TransitionStatus conditionally moves the application status.
func (r *applicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ApplicationStatus, interviewAt *time.Time) (bool, error) {
	query := `
		UPDATE applications
		SET status = $3,
		    reviewed_at = NOW(),
		    interview_at = COALESCE($4, interview_at)
		WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, query, id, from, to, interviewAt)
	if err != nil {
		return false, fmt.Errorf("failed to transition application: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetStatus writes the application status unconditionally.
func (r *applicationRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	query := `UPDATE applications SET status = $2, reviewed_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountsByProjects returns total and pending application counts per project.
func (r *applicationRepository) CountsByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]models.ApplicationCounts, error) {
	counts := make(map[uuid.UUID]models.ApplicationCounts, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT project_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2)
		FROM applications
		WHERE project_id = ANY($1)
		GROUP BY project_id`

	rows, err := r.db.Query(ctx, query, projectIDs, models.ApplicationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.ApplicationCounts
		if err := rows.Scan(&c.ProjectID, &c.Total, &c.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan application counts: %w", err)
		}
		counts[c.ProjectID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read application counts: %w", err)
	}

	return counts, nil
}
