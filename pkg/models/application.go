package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

// Application lifecycle states.
const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// applicationTransitions is the full set of legal application status moves.
// Accepted and rejected are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:   {ApplicationStatusInterview, ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusInterview: {ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusAccepted:  {},
	ApplicationStatusRejected:  {},
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a declared
// transition. Unknown statuses never transition anywhere.
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, t := range applicationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s ApplicationStatus) Terminal() bool {
	return s.Valid() && len(applicationTransitions[s]) == 0
}

// Application links one expert to one project. At most one application
// exists per (expert, project) pair, enforced by a unique constraint.
type Application struct {
	ID           uuid.UUID         `json:"id"`
	ExpertID     uuid.UUID         `json:"expert_id"`
	ProjectID    uuid.UUID         `json:"project_id"`
	Status       ApplicationStatus `json:"status"`
	ProposedRate *float64          `json:"proposed_rate,omitempty"`
	CoverNote    *string           `json:"cover_note,omitempty"`
	AppliedAt    time.Time         `json:"applied_at"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	InterviewAt  *time.Time        `json:"interview_at,omitempty"`
}

// ApplicationCounts summarizes applications for one project.
type ApplicationCounts struct {
	ProjectID uuid.UUID `json:"project_id"`
	Total     int       `json:"total"`
	Pending   int       `json:"pending"`
}
