package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status values.
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// Project represents an institution's posting that experts apply to.
type Project struct {
	ID            uuid.UUID `json:"id"`
	InstitutionID uuid.UUID `json:"institution_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`

	// DomainExpertise is a single domain tag; matching against an expert's
	// domain set is by membership.
	DomainExpertise string   `json:"domain_expertise"`
	Subskills       []string `json:"subskills"`
	GeneralSkills   []string `json:"general_skills"`
	HourlyRate      float64  `json:"hourly_rate"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
