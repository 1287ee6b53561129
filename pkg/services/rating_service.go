package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/repositories"
)

// RatingService records ratings against completed bookings and keeps the
// expert's denormalized aggregate consistent.
type RatingService interface {
	RecordRating(ctx context.Context, bookingID uuid.UUID, score int, feedback *string) (*models.Rating, error)
}

type ratingService struct {
	ratings  repositories.RatingRepository
	bookings repositories.BookingRepository
	logger   *zap.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(
	ratings repositories.RatingRepository,
	bookings repositories.BookingRepository,
	logger *zap.Logger,
) RatingService {
	return &ratingService{
		ratings:  ratings,
		bookings: bookings,
		logger:   logger.Named("rating-service"),
	}
}

var _ RatingService = (*ratingService)(nil)

// RecordRating validates the score, checks the booking is completed and
// inserts the rating together with the expert aggregate update in one
// transaction.
func (s *ratingService) RecordRating(ctx context.Context, bookingID uuid.UUID, score int, feedback *string) (*models.Rating, error) {
	if !models.ValidRatingScore(score) {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", apperrors.ErrValidation)
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: booking must be completed before rating", apperrors.ErrValidation)
	}

	rating := &models.Rating{
		BookingID:     booking.ID,
		ExpertID:      booking.ExpertID,
		InstitutionID: booking.InstitutionID,
		Score:         score,
		Feedback:      feedback,
	}

	newAverage, newCount, err := s.ratings.Create(ctx, rating)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recorded rating",
		zap.String("expert_id", booking.ExpertID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int("score", score),
		zap.Float64("new_average", newAverage),
		zap.Int("total_ratings", newCount))

	return rating, nil
}
