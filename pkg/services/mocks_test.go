package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/apperrors"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/notifications"
)

// mockExpertRepo implements repositories.ExpertRepository in memory.
type mockExpertRepo struct {
	experts map[uuid.UUID]*models.Expert
	listErr error
}

func newMockExpertRepo() *mockExpertRepo {
	return &mockExpertRepo{experts: make(map[uuid.UUID]*models.Expert)}
}

func (m *mockExpertRepo) Create(_ context.Context, expert *models.Expert) error {
	if expert.ID == uuid.Nil {
		expert.ID = uuid.New()
	}
	m.experts[expert.ID] = expert
	return nil
}

func (m *mockExpertRepo) Get(_ context.Context, id uuid.UUID) (*models.Expert, error) {
	expert, ok := m.experts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return expert, nil
}

func (m *mockExpertRepo) ListVerified(_ context.Context) ([]*models.Expert, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]uuid.UUID, 0, len(m.experts))
	for id := range m.experts {
		ids = append(ids, id)
	}
	sortUUIDs(ids)
	var result []*models.Expert
	for _, id := range ids {
		if m.experts[id].IsVerified {
			result = append(result, m.experts[id])
		}
	}
	return result, nil
}

// mockProjectRepo implements repositories.ProjectRepository in memory.
type mockProjectRepo struct {
	projects map[uuid.UUID]*models.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusOpen
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return project, nil
}

func (m *mockProjectRepo) ListOpen(_ context.Context, excludeIDs []uuid.UUID) ([]*models.Project, error) {
	excluded := make(map[uuid.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sortUUIDs(ids)
	var result []*models.Project
	for _, id := range ids {
		if _, skip := excluded[id]; skip {
			continue
		}
		if m.projects[id].Status == models.ProjectStatusOpen {
			result = append(result, m.projects[id])
		}
	}
	return result, nil
}

// mockApplicationRepo implements repositories.ApplicationRepository in memory.
type mockApplicationRepo struct {
	applications map[uuid.UUID]*models.Application
	countsErr    error
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{applications: make(map[uuid.UUID]*models.Application)}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *models.Application) error {
	for _, existing := range m.applications {
		if existing.ExpertID == app.ExpertID && existing.ProjectID == app.ProjectID {
			return apperrors.ErrConflict
		}
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}
	m.applications[app.ID] = app
	return nil
}

func (m *mockApplicationRepo) Get(_ context.Context, id uuid.UUID) (*models.Application, error) {
	app, ok := m.applications[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *mockApplicationRepo) GetByExpertAndProject(_ context.Context, expertID, projectID uuid.UUID) (*models.Application, error) {
	for _, app := range m.applications {
		if app.ExpertID == expertID && app.ProjectID == projectID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockApplicationRepo) ListProjectIDsByExpert(_ context.Context, expertID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, app := range m.applications {
		if app.ExpertID == expertID {
			ids = append(ids, app.ProjectID)
		}
	}
	return ids, nil
}

func (m *mockApplicationRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.ApplicationStatus, interviewAt *time.Time) (bool, error) {
	app, ok := m.applications[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	now := time.Now()
	app.ReviewedAt = &now
	if interviewAt != nil {
		app.InterviewAt = interviewAt
	}
	return true, nil
}

func (m *mockApplicationRepo) SetStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	app, ok := m.applications[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	app.Status = status
	return nil
}

func (m *mockApplicationRepo) CountsByProjects(_ context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]models.ApplicationCounts, error) {
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	counts := make(map[uuid.UUID]models.ApplicationCounts)
	for _, projectID := range projectIDs {
		for _, app := range m.applications {
			if app.ProjectID != projectID {
				continue
			}
			c := counts[projectID]
			c.ProjectID = projectID
			c.Total++
			if app.Status == models.ApplicationStatusPending {
				c.Pending++
			}
			counts[projectID] = c
		}
	}
	return counts, nil
}

// mockBookingRepo implements repositories.BookingRepository in memory.
type mockBookingRepo struct {
	bookings  map[uuid.UUID]*models.Booking
	createErr error
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusInProgress
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) Get(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.BookingStatus) (bool, error) {
	booking, ok := m.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	return true, nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.bookings[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

// mockRatingRepo implements repositories.RatingRepository in memory,
// applying the same incremental mean formula as the SQL implementation.
type mockRatingRepo struct {
	experts map[uuid.UUID]*models.Expert
	rated   map[uuid.UUID]bool
}

func newMockRatingRepo(experts *mockExpertRepo) *mockRatingRepo {
	return &mockRatingRepo{experts: experts.experts, rated: make(map[uuid.UUID]bool)}
}

func (m *mockRatingRepo) Create(_ context.Context, rating *models.Rating) (float64, int, error) {
	if m.rated[rating.BookingID] {
		return 0, 0, apperrors.ErrConflict
	}
	expert, ok := m.experts[rating.ExpertID]
	if !ok {
		return 0, 0, apperrors.ErrNotFound
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	m.rated[rating.BookingID] = true
	newAvg := (expert.Rating*float64(expert.TotalRatings) + float64(rating.Score)) / float64(expert.TotalRatings+1)
	expert.Rating = math.Round(newAvg*10) / 10
	expert.TotalRatings++
	return expert.Rating, expert.TotalRatings, nil
}

// captureDispatcher records raised events.
type captureDispatcher struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (d *captureDispatcher) Raise(_ context.Context, event notifications.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) types() []notifications.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]notifications.EventType, len(d.events))
	for i, e := range d.events {
		types[i] = e.Type
	}
	return types
}

// sortUUIDs orders ids so map iteration cannot leak into results.
func sortUUIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
