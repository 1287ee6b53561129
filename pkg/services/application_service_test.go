package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/notifications"
)

type applicationFixture struct {
	experts      *mockExpertRepo
	projects     *mockProjectRepo
	applications *mockApplicationRepo
	bookings     *mockBookingRepo
	dispatcher   *captureDispatcher
	svc          ApplicationService

	expert  *models.Expert
	project *models.Project
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()

	f := &applicationFixture{
		experts:      newMockExpertRepo(),
		projects:     newMockProjectRepo(),
		applications: newMockApplicationRepo(),
		bookings:     newMockBookingRepo(),
		dispatcher:   &captureDispatcher{},
	}
	f.svc = NewApplicationService(f.applications, f.bookings, f.experts, f.projects, f.dispatcher, zap.NewNop())

	ctx := context.Background()
	f.expert = financeExpert(1000)
	require.NoError(t, f.experts.Create(ctx, f.expert))
	f.project = financeProject(uuid.New(), 1100)
	require.NoError(t, f.projects.Create(ctx, f.project))

	return f
}

func (f *applicationFixture) apply(t *testing.T) *models.Application {
	t.Helper()
	app, err := f.svc.Apply(context.Background(), f.expert.ID, f.project.ID, nil, nil)
	require.NoError(t, err)
	return app
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	f := newApplicationFixture(t)

	app := f.apply(t)

	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, f.expert.ID, app.ExpertID)
	assert.Equal(t, f.project.ID, app.ProjectID)
	assert.Equal(t, []notifications.EventType{notifications.EventExpertInterestShown}, f.dispatcher.types())
}

func TestApply_UnknownExpert(t *testing.T) {
	f := newApplicationFixture(t)

	_, err := f.svc.Apply(context.Background(), uuid.New(), f.project.ID, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApply_ClosedProject(t *testing.T) {
	f := newApplicationFixture(t)
	f.project.Status = models.ProjectStatusCompleted

	_, err := f.svc.Apply(context.Background(), f.expert.ID, f.project.ID, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApply_NegativeProposedRate(t *testing.T) {
	f := newApplicationFixture(t)
	rate := -50.0

	_, err := f.svc.Apply(context.Background(), f.expert.ID, f.project.ID, &rate, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApply_DuplicateApplicationConflicts(t *testing.T) {
	f := newApplicationFixture(t)
	f.apply(t)

	_, err := f.svc.Apply(context.Background(), f.expert.ID, f.project.ID, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestScheduleInterview_MovesAndNotifies(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	interviewAt := time.Now().Add(48 * time.Hour)

	updated, err := f.svc.ScheduleInterview(context.Background(), app.ID, &interviewAt)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusInterview, updated.Status)
	require.NotNil(t, updated.InterviewAt)
	assert.Contains(t, f.dispatcher.types(), notifications.EventMovedToInterview)
}

func TestScheduleInterview_UnknownApplication(t *testing.T) {
	f := newApplicationFixture(t)

	_, err := f.svc.ScheduleInterview(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScheduleInterview_FromTerminalState(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	require.NoError(t, f.svc.Reject(context.Background(), app.ID))

	_, err := f.svc.ScheduleInterview(context.Background(), app.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestAccept_CreatesLinkedBooking(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)

	booking, err := f.svc.Accept(context.Background(), app.ID, BookingTerms{Amount: 8800, HoursBooked: 8})
	require.NoError(t, err)

	assert.Equal(t, f.expert.ID, booking.ExpertID)
	assert.Equal(t, f.project.InstitutionID, booking.InstitutionID)
	assert.Equal(t, f.project.ID, booking.ProjectID)
	require.NotNil(t, booking.ApplicationID)
	assert.Equal(t, app.ID, *booking.ApplicationID)
	assert.Equal(t, models.BookingStatusInProgress, booking.Status)
	assert.Equal(t, 8800.0, booking.Amount)

	// Exactly one booking exists for the accepted application.
	assert.Len(t, f.bookings.bookings, 1)
	assert.Contains(t, f.dispatcher.types(), notifications.EventApplicationAccepted)
	assert.Contains(t, f.dispatcher.types(), notifications.EventBookingCreated)
}

func TestAccept_FromInterviewStage(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	_, err := f.svc.ScheduleInterview(context.Background(), app.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), app.ID, BookingTerms{Amount: 1000, HoursBooked: 1})
	assert.NoError(t, err)
}

func TestAccept_FromRejectedFails(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	require.NoError(t, f.svc.Reject(context.Background(), app.ID))

	_, err := f.svc.Accept(context.Background(), app.ID, BookingTerms{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, f.bookings.bookings)
}

func TestReject_FromPendingStaysSilent(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	f.dispatcher.events = nil

	require.NoError(t, f.svc.Reject(context.Background(), app.ID))

	assert.NotContains(t, f.dispatcher.types(), notifications.EventApplicationRejected)
}

func TestReject_FromInterviewNotifies(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	_, err := f.svc.ScheduleInterview(context.Background(), app.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reject(context.Background(), app.ID))

	assert.Contains(t, f.dispatcher.types(), notifications.EventApplicationRejected)
}

func TestReject_Twice(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)
	require.NoError(t, f.svc.Reject(context.Background(), app.ID))

	err := f.svc.Reject(context.Background(), app.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestTransition_UndeclaredTarget(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)

	err := f.svc.Transition(context.Background(), app.ID, models.ApplicationStatus("completed"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	err = f.svc.Transition(context.Background(), app.ID, models.ApplicationStatusPending)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestTransition_MapsToOperations(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)

	require.NoError(t, f.svc.Transition(context.Background(), app.ID, models.ApplicationStatusInterview))
	require.NoError(t, f.svc.Transition(context.Background(), app.ID, models.ApplicationStatusAccepted))

	stored, err := f.applications.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, stored.Status)
	assert.Len(t, f.bookings.bookings, 1)
}

func TestSelectExpert_BackfillsApplication(t *testing.T) {
	f := newApplicationFixture(t)

	booking, err := f.svc.SelectExpert(context.Background(), f.expert.ID, f.project.ID, BookingTerms{Amount: 5000, HoursBooked: 5})
	require.NoError(t, err)

	// The synthesized application exists and is accepted, so the booking
	// remains reachable from an application.
	require.NotNil(t, booking.ApplicationID)
	app, err := f.applications.Get(context.Background(), *booking.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, app.Status)
	assert.Equal(t, f.expert.ID, app.ExpertID)

	assert.Contains(t, f.dispatcher.types(), notifications.EventExpertSelected)
	assert.Contains(t, f.dispatcher.types(), notifications.EventBookingCreated)
}

func TestSelectExpert_PromotesExistingApplication(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.apply(t)

	booking, err := f.svc.SelectExpert(context.Background(), f.expert.ID, f.project.ID, BookingTerms{Amount: 5000, HoursBooked: 5})
	require.NoError(t, err)

	require.NotNil(t, booking.ApplicationID)
	assert.Equal(t, app.ID, *booking.ApplicationID)

	stored, err := f.applications.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, stored.Status)
}

func TestSelectExpert_AlreadyBooked(t *testing.T) {
	f := newApplicationFixture(t)
	_, err := f.svc.SelectExpert(context.Background(), f.expert.ID, f.project.ID, BookingTerms{})
	require.NoError(t, err)

	_, err = f.svc.SelectExpert(context.Background(), f.expert.ID, f.project.ID, BookingTerms{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	f := newApplicationFixture(t)
	f.dispatcher.err = assert.AnError

	app, err := f.svc.Apply(context.Background(), f.expert.ID, f.project.ID, nil, nil)
	require.NoError(t, err)

	_, err = f.svc.ScheduleInterview(context.Background(), app.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), app.ID, BookingTerms{Amount: 100, HoursBooked: 1})
	require.NoError(t, err)

	stored, err := f.applications.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, stored.Status)
}
