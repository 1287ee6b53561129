package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking lifecycle states. Bookings are created in progress; completed is
// terminal and cancelled bookings are deleted outright rather than archived.
const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a declared
// transition.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(bookingTransitions[s]) == 0
}

// Booking is an engagement between an expert and an institution on a
// project. Every booking is reachable from an application, real or
// back-filled by the select-expert shortcut.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	ExpertID      uuid.UUID     `json:"expert_id"`
	InstitutionID uuid.UUID     `json:"institution_id"`
	ProjectID     uuid.UUID     `json:"project_id"`
	ApplicationID *uuid.UUID    `json:"application_id,omitempty"`
	Amount        float64       `json:"amount"`
	HoursBooked   float64       `json:"hours_booked"`
	Status        BookingStatus `json:"status"`
	StartDate     *time.Time    `json:"start_date,omitempty"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
