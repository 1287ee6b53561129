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

// BookingRepository defines the interface for booking data access.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// TransitionStatus moves a booking from one status to another,
	// conditional on the stored status still matching from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (bool, error)
	// Delete removes a booking row outright. Cancelled bookings are not
	// archived.
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db *database.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *database.DB) BookingRepository {
	return &bookingRepository{db: db}
}

var _ BookingRepository = (*bookingRepository)(nil)

const bookingColumns = `id, expert_id, institution_id, project_id, application_id, amount,
	hours_booked, status, start_date, end_date, created_at, updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.ExpertID,
		&b.InstitutionID,
		&b.ProjectID,
		&b.ApplicationID,
		&b.Amount,
		&b.HoursBooked,
		&b.Status,
		&b.StartDate,
		&b.EndDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new booking.
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusInProgress
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := `
		INSERT INTO bookings (id, expert_id, institution_id, project_id, application_id,
			amount, hours_booked, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.ExpertID,
		booking.InstitutionID,
		booking.ProjectID,
		booking.ApplicationID,
		booking.Amount,
		booking.HoursBooked,
		booking.Status,
		booking.StartDate,
		booking.EndDate,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// Get retrieves a booking by ID.
func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// TransitionStatus conditionally moves the booking status.
func (r *bookingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition booking: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a booking row.
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
