package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating scores a completed booking from 1 to 5. One rating per booking.
type Rating struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	ExpertID      uuid.UUID `json:"expert_id"`
	InstitutionID uuid.UUID `json:"institution_id"`
	Score         int       `json:"score"`
	Feedback      *string   `json:"feedback,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ValidRatingScore reports whether score is in the accepted 1-5 range.
func ValidRatingScore(score int) bool {
	return score >= 1 && score <= 5
}
