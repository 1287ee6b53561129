package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{ApplicationStatusPending, ApplicationStatusInterview, true},
		{ApplicationStatusPending, ApplicationStatusAccepted, true},
		{ApplicationStatusPending, ApplicationStatusRejected, true},
		{ApplicationStatusInterview, ApplicationStatusAccepted, true},
		{ApplicationStatusInterview, ApplicationStatusRejected, true},
		{ApplicationStatusInterview, ApplicationStatusPending, false},
		{ApplicationStatusAccepted, ApplicationStatusRejected, false},
		{ApplicationStatusRejected, ApplicationStatusAccepted, false},
		{ApplicationStatusAccepted, ApplicationStatusInterview, false},
		{ApplicationStatusPending, ApplicationStatusPending, false},
		{ApplicationStatusPending, ApplicationStatus("completed"), false},
		{ApplicationStatus("bogus"), ApplicationStatusAccepted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestApplicationStatus_Terminal(t *testing.T) {
	assert.True(t, ApplicationStatusAccepted.Terminal())
	assert.True(t, ApplicationStatusRejected.Terminal())
	assert.False(t, ApplicationStatusPending.Terminal())
	assert.False(t, ApplicationStatusInterview.Terminal())
	assert.False(t, ApplicationStatus("bogus").Terminal())
}

func TestApplicationStatus_Valid(t *testing.T) {
	assert.True(t, ApplicationStatusPending.Valid())
	assert.False(t, ApplicationStatus("completed").Valid())
}
