package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/notifications"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/repositories"
)

// BookingService drives the booking lifecycle. Completing a booking
// unlocks rating; cancelling deletes the row outright and pushes the
// linked application to rejected.
type BookingService interface {
	Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	// Start moves a pending booking into progress.
	Start(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) error
	// Transition requests a bare status move by name, mapping onto the
	// operations above. Undeclared targets fail with ErrInvalidTransition.
	Transition(ctx context.Context, bookingID uuid.UUID, target models.BookingStatus) error
}

type bookingService struct {
	bookings     repositories.BookingRepository
	applications repositories.ApplicationRepository
	dispatcher   notifications.Dispatcher
	logger       *zap.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(
	bookings repositories.BookingRepository,
	applications repositories.ApplicationRepository,
	dispatcher notifications.Dispatcher,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		bookings:     bookings,
		applications: applications,
		dispatcher:   dispatcher,
		logger:       logger.Named("booking-service"),
	}
}

var _ BookingService = (*bookingService)(nil)

// Get retrieves a booking.
func (s *bookingService) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.bookings.Get(ctx, bookingID)
}

// Start moves a pending booking into progress.
func (s *bookingService) Start(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingStatusInProgress)
}

// Complete marks the engagement finished and raises BookingCompleted,
// which unlocks the rate-this-expert action for the institution.
func (s *bookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, models.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.raise(ctx, notifications.Event{
		Type:          notifications.EventBookingCompleted,
		ExpertID:      booking.ExpertID,
		InstitutionID: booking.InstitutionID,
		ProjectID:     booking.ProjectID,
		BookingID:     booking.ID,
	})

	return booking, nil
}

// Cancel deletes the booking row and rejects the linked application.
func (s *bookingService) Cancel(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.Status.CanTransitionTo(models.BookingStatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, booking.Status, models.BookingStatusCancelled)
	}

	if err := s.bookings.Delete(ctx, booking.ID); err != nil {
		return err
	}

	if booking.ApplicationID != nil {
		if err := s.applications.SetStatus(ctx, *booking.ApplicationID, models.ApplicationStatusRejected); err != nil {
			return fmt.Errorf("booking deleted but failed to reject linked application: %w", err)
		}
	}

	return nil
}

// Transition maps a bare status target onto the lifecycle operations.
func (s *bookingService) Transition(ctx context.Context, bookingID uuid.UUID, target models.BookingStatus) error {
	switch target {
	case models.BookingStatusInProgress:
		_, err := s.Start(ctx, bookingID)
		return err
	case models.BookingStatusCompleted:
		_, err := s.Complete(ctx, bookingID)
		return err
	case models.BookingStatusCancelled:
		return s.Cancel(ctx, bookingID)
	default:
		return fmt.Errorf("%w: unknown target status %q", apperrors.ErrInvalidTransition, target)
	}
}

// transition performs a table-checked, compare-and-swap status move.
func (s *bookingService) transition(ctx context.Context, bookingID uuid.UUID, target models.BookingStatus) (*models.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, booking.Status, target)
	}

	moved, err := s.bookings.TransitionStatus(ctx, booking.ID, booking.Status, target)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: booking status changed concurrently", apperrors.ErrInvalidTransition)
	}

	booking.Status = target
	return booking, nil
}

func (s *bookingService) raise(ctx context.Context, event notifications.Event) {
	if err := s.dispatcher.Raise(ctx, event); err != nil {
		s.logger.Warn("Failed to dispatch notification event",
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
