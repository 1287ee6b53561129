package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/notifications"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/repositories"
)

// BookingTerms carries the commercial terms fixed when a booking is
// created. Amount and hours are set once and never recomputed.
type BookingTerms struct {
	Amount      float64    `json:"amount"`
	HoursBooked float64    `json:"hours_booked"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// ApplicationService drives the application lifecycle. Every status move
// goes through the transition table in models; the store update is
// conditional on the previous status, so racing institution actions cannot
// both win. Notification dispatch happens after the transition commits and
// never fails the operation.
type ApplicationService interface {
	// Apply creates a pending application from an expert to an open project.
	Apply(ctx context.Context, expertID, projectID uuid.UUID, proposedRate *float64, coverNote *string) (*models.Application, error)
	// ScheduleInterview moves a pending application to the interview stage.
	ScheduleInterview(ctx context.Context, applicationID uuid.UUID, interviewAt *time.Time) (*models.Application, error)
	// Accept moves an application to accepted and creates the booking.
	Accept(ctx context.Context, applicationID uuid.UUID, terms BookingTerms) (*models.Booking, error)
	// Reject moves an application to rejected. The expert is notified only
	// when the rejection happens at the interview stage; a plain pending
	// rejection stays silent.
	Reject(ctx context.Context, applicationID uuid.UUID) error
	// SelectExpert is the direct shortcut: the institution books an expert
	// who may never have applied. A missing application is back-filled in
	// the accepted state so every booking stays reachable from one.
	SelectExpert(ctx context.Context, expertID, projectID uuid.UUID, terms BookingTerms) (*models.Booking, error)
	// Transition requests a bare status move by name, mapping onto the
	// operations above. Undeclared targets fail with ErrInvalidTransition.
	Transition(ctx context.Context, applicationID uuid.UUID, target models.ApplicationStatus) error
}

type applicationService struct {
	applications repositories.ApplicationRepository
	bookings     repositories.BookingRepository
	experts      repositories.ExpertRepository
	projects     repositories.ProjectRepository
	dispatcher   notifications.Dispatcher
	logger       *zap.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(
	applications repositories.ApplicationRepository,
	bookings repositories.BookingRepository,
	experts repositories.ExpertRepository,
	projects repositories.ProjectRepository,
	dispatcher notifications.Dispatcher,
	logger *zap.Logger,
) ApplicationService {
	return &applicationService{
		applications: applications,
		bookings:     bookings,
		experts:      experts,
		projects:     projects,
		dispatcher:   dispatcher,
		logger:       logger.Named("application-service"),
	}
}

var _ ApplicationService = (*applicationService)(nil)

// Apply creates a pending application.
func (s *applicationService) Apply(ctx context.Context, expertID, projectID uuid.UUID, proposedRate *float64, coverNote *string) (*models.Application, error) {
	if proposedRate != nil && *proposedRate <= 0 {
		return nil, fmt.Errorf("%w: proposed rate must be positive", apperrors.ErrValidation)
	}

	expert, err := s.experts.Get(ctx, expertID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is not open for applications", apperrors.ErrValidation)
	}

	app := &models.Application{
		ExpertID:     expert.ID,
		ProjectID:    project.ID,
		Status:       models.ApplicationStatusPending,
		ProposedRate: proposedRate,
		CoverNote:    coverNote,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}

	s.raise(ctx, notifications.Event{
		Type:          notifications.EventExpertInterestShown,
		ExpertID:      expert.ID,
		InstitutionID: project.InstitutionID,
		ProjectID:     project.ID,
		ApplicationID: app.ID,
	})

	return app, nil
}

// ScheduleInterview moves a pending application to interview.
func (s *applicationService) ScheduleInterview(ctx context.Context, applicationID uuid.UUID, interviewAt *time.Time) (*models.Application, error) {
	app, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(models.ApplicationStatusInterview) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, app.Status, models.ApplicationStatusInterview)
	}

	moved, err := s.applications.TransitionStatus(ctx, app.ID, app.Status, models.ApplicationStatusInterview, interviewAt)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: application status changed concurrently", apperrors.ErrInvalidTransition)
	}

	app.Status = models.ApplicationStatusInterview
	if interviewAt != nil {
		app.InterviewAt = interviewAt
	}

	s.raise(ctx, notifications.Event{
		Type:          notifications.EventMovedToInterview,
		ExpertID:      app.ExpertID,
		ProjectID:     app.ProjectID,
		ApplicationID: app.ID,
	})

	return app, nil
}

// Accept moves the application to accepted and creates the linked booking.
func (s *applicationService) Accept(ctx context.Context, applicationID uuid.UUID, terms BookingTerms) (*models.Booking, error) {
	if terms.Amount < 0 || terms.HoursBooked < 0 {
		return nil, fmt.Errorf("%w: booking amount and hours must not be negative", apperrors.ErrValidation)
	}

	app, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(models.ApplicationStatusAccepted) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, app.Status, models.ApplicationStatusAccepted)
	}

	project, err := s.projects.Get(ctx, app.ProjectID)
	if err != nil {
		return nil, err
	}

	moved, err := s.applications.TransitionStatus(ctx, app.ID, app.Status, models.ApplicationStatusAccepted, nil)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: application status changed concurrently", apperrors.ErrInvalidTransition)
	}

	booking, err := s.createBooking(ctx, app.ExpertID, project, &app.ID, terms)
	if err != nil {
		return nil, err
	}

	s.raise(ctx, notifications.Event{
		Type:          notifications.EventApplicationAccepted,
		ExpertID:      app.ExpertID,
		InstitutionID: project.InstitutionID,
		ProjectID:     project.ID,
		ApplicationID: app.ID,
		BookingID:     booking.ID,
	})
	s.raise(ctx, notifications.Event{
		Type:          notifications.EventBookingCreated,
		ExpertID:      booking.ExpertID,
		InstitutionID: booking.InstitutionID,
		ProjectID:     booking.ProjectID,
		ApplicationID: app.ID,
		BookingID:     booking.ID,
	})

	return booking, nil
}

// Reject moves the application to rejected.
func (s *applicationService) Reject(ctx context.Context, applicationID uuid.UUID) error {
	app, err := s.applications.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if !app.Status.CanTransitionTo(models.ApplicationStatusRejected) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, app.Status, models.ApplicationStatusRejected)
	}

	rejectedFromInterview := app.Status == models.ApplicationStatusInterview

	moved, err := s.applications.TransitionStatus(ctx, app.ID, app.Status, models.ApplicationStatusRejected, nil)
	if err != nil {
		return err
	}
	if !moved {
		return fmt.Errorf("%w: application status changed concurrently", apperrors.ErrInvalidTransition)
	}

	// Product decision: a rejection before any interview stays silent.
	if rejectedFromInterview {
		s.raise(ctx, notifications.Event{
			Type:          notifications.EventApplicationRejected,
			ExpertID:      app.ExpertID,
			ProjectID:     app.ProjectID,
			ApplicationID: app.ID,
		})
	}

	return nil
}

// SelectExpert books an expert directly, back-filling the application if
// none exists yet.
func (s *applicationService) SelectExpert(ctx context.Context, expertID, projectID uuid.UUID, terms BookingTerms) (*models.Booking, error) {
	if terms.Amount < 0 || terms.HoursBooked < 0 {
		return nil, fmt.Errorf("%w: booking amount and hours must not be negative", apperrors.ErrValidation)
	}

	expert, err := s.experts.Get(ctx, expertID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	app, err := s.applications.GetByExpertAndProject(ctx, expertID, projectID)
	switch {
	case err == nil:
		if app.Status == models.ApplicationStatusAccepted {
			return nil, fmt.Errorf("%w: expert already booked for this project", apperrors.ErrConflict)
		}
		if !app.Status.CanTransitionTo(models.ApplicationStatusAccepted) {
			return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, app.Status, models.ApplicationStatusAccepted)
		}
		moved, err := s.applications.TransitionStatus(ctx, app.ID, app.Status, models.ApplicationStatusAccepted, nil)
		if err != nil {
			return nil, err
		}
		if !moved {
			return nil, fmt.Errorf("%w: application status changed concurrently", apperrors.ErrInvalidTransition)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		now := time.Now()
		app = &models.Application{
			ExpertID:   expert.ID,
			ProjectID:  project.ID,
			Status:     models.ApplicationStatusAccepted,
			AppliedAt:  now,
			ReviewedAt: &now,
		}
		if err := s.applications.Create(ctx, app); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	booking, err := s.createBooking(ctx, expert.ID, project, &app.ID, terms)
	if err != nil {
		return nil, err
	}

	s.raise(ctx, notifications.Event{
		Type:          notifications.EventExpertSelected,
		ExpertID:      expert.ID,
		InstitutionID: project.InstitutionID,
		ProjectID:     project.ID,
		ApplicationID: app.ID,
		BookingID:     booking.ID,
	})
	s.raise(ctx, notifications.Event{
		Type:          notifications.EventBookingCreated,
		ExpertID:      booking.ExpertID,
		InstitutionID: booking.InstitutionID,
		ProjectID:     booking.ProjectID,
		ApplicationID: app.ID,
		BookingID:     booking.ID,
	})

	return booking, nil
}

// Transition maps a bare status target onto the lifecycle operations.
func (s *applicationService) Transition(ctx context.Context, applicationID uuid.UUID, target models.ApplicationStatus) error {
	switch target {
	case models.ApplicationStatusInterview:
		_, err := s.ScheduleInterview(ctx, applicationID, nil)
		return err
	case models.ApplicationStatusAccepted:
		_, err := s.Accept(ctx, applicationID, BookingTerms{})
		return err
	case models.ApplicationStatusRejected:
		return s.Reject(ctx, applicationID)
	default:
		return fmt.Errorf("%w: unknown target status %q", apperrors.ErrInvalidTransition, target)
	}
}

// createBooking creates the booking row linked to an application.
func (s *applicationService) createBooking(ctx context.Context, expertID uuid.UUID, project *models.Project, applicationID *uuid.UUID, terms BookingTerms) (*models.Booking, error) {
	booking := &models.Booking{
		ExpertID:      expertID,
		InstitutionID: project.InstitutionID,
		ProjectID:     project.ID,
		ApplicationID: applicationID,
		Amount:        terms.Amount,
		HoursBooked:   terms.HoursBooked,
		Status:        models.BookingStatusInProgress,
		StartDate:     terms.StartDate,
		EndDate:       terms.EndDate,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking for accepted application: %w", err)
	}
	return booking, nil
}

// raise dispatches a lifecycle event. Dispatch failures are logged and
// swallowed: the state transition has already committed and notifications
// are at-most-once.
func (s *applicationService) raise(ctx context.Context, event notifications.Event) {
	if err := s.dispatcher.Raise(ctx, event); err != nil {
		s.logger.Warn("Failed to dispatch notification event",
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
