// Package models contains domain types for skillbridge-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Expert represents a domain expert offering project-based collaboration.
type Expert struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	DomainExpertise []string  `json:"domain_expertise"`
	Subskills       []string  `json:"subskills"`
	GeneralSkills   []string  `json:"general_skills"`
	HourlyRate      float64   `json:"hourly_rate"`

	// Rating and TotalRatings are derived from the ratings table and must
	// always equal the mean (rounded to one decimal) and count of that
	// expert's rating rows. They are updated atomically on rating insert.
	Rating       float64 `json:"rating"`
	TotalRatings int     `json:"total_ratings"`

	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasDomain reports whether the expert lists the given domain expertise.
func (e *Expert) HasDomain(domain string) bool {
	for _, d := range e.DomainExpertise {
		if d == domain {
			return true
		}
	}
	return false
}
