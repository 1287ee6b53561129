package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/database"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
)

// RatingRepository defines the interface for rating data access.
type RatingRepository interface {
	// Create inserts the rating and folds it into the expert's
	// denormalized (rating, total_ratings) pair in the same transaction.
	// Returns the expert's new average and count.
	Create(ctx context.Context, rating *models.Rating) (newAverage float64, newCount int, err error)
}

type ratingRepository struct {
	db *database.DB
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *database.DB) RatingRepository {
	return &ratingRepository{db: db}
}

var _ RatingRepository = (*ratingRepository)(nil)

// Create inserts a rating and updates the expert aggregate atomically.
// The aggregate is recomputed in a single UPDATE using the incremental
// mean formula, so concurrent rating inserts cannot lose updates.
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) (float64, int, error) {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	rating.CreatedAt = time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO ratings (id, booking_id, expert_id, institution_id, score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insertQuery,
		rating.ID,
		rating.BookingID,
		rating.ExpertID,
		rating.InstitutionID,
		rating.Score,
		rating.Feedback,
		rating.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// booking already rated
			return 0, 0, apperrors.ErrConflict
		}
		return 0, 0, fmt.Errorf("failed to insert rating: %w", err)
	}

	// new_avg = (old_avg*old_count + score) / (old_count + 1), rounded to
	// one decimal, computed inside the row update itself.
	updateQuery := `
		UPDATE experts
		SET rating = ROUND((rating * total_ratings + $2) / (total_ratings + 1), 1),
		    total_ratings = total_ratings + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING rating, total_ratings`

	var newAverage float64
	var newCount int
	if err := tx.QueryRow(ctx, updateQuery, rating.ExpertID, rating.Score).Scan(&newAverage, &newCount); err != nil {
		return 0, 0, fmt.Errorf("failed to update expert rating aggregate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit rating: %w", err)
	}

	return newAverage, newCount, nil
}
