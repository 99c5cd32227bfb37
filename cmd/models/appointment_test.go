package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusCompleted, false}, // must pass confirmed and in-progress
		{StatusScheduled, StatusInProgress, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusNoShow, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, AppointmentStatus("bogus").IsTerminal())
}

func TestPaymentTransitions(t *testing.T) {
	tests := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentPending, PaymentCompleted, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentRefunded, false},
		{PaymentCompleted, PaymentRefunded, true},
		{PaymentCompleted, PaymentPending, false},
		{PaymentFailed, PaymentPending, true},
		{PaymentFailed, PaymentCompleted, false},
		{PaymentRefunded, PaymentPending, false},
		{PaymentRefunded, PaymentCompleted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}

	assert.True(t, PaymentRefunded.IsTerminal())
	assert.False(t, PaymentFailed.IsTerminal())
}

func TestConsultationModeValid(t *testing.T) {
	assert.True(t, ModeVideo.Valid())
	assert.True(t, ModePhone.Valid())
	assert.True(t, ModeInPerson.Valid())
	assert.False(t, ConsultationMode("email").Valid())
}

func TestSlotDurationMinutes(t *testing.T) {
	slot := AvailabilitySlot{StartTime: "09:00", EndTime: "10:00"}
	minutes, err := slot.DurationMinutes()
	assert.NoError(t, err)
	assert.Equal(t, 60, minutes)

	slot = AvailabilitySlot{StartTime: "14:30", EndTime: "15:15"}
	minutes, err = slot.DurationMinutes()
	assert.NoError(t, err)
	assert.Equal(t, 45, minutes)

	slot = AvailabilitySlot{StartTime: "bad", EndTime: "10:00"}
	_, err = slot.DurationMinutes()
	assert.Error(t, err)

	slot = AvailabilitySlot{StartTime: "09:00", EndTime: "bad"}
	_, err = slot.DurationMinutes()
	assert.Error(t, err)
}

func TestLawyerProfileSupportsMode(t *testing.T) {
	profile := LawyerProfile{Modes: []string{"video", "phone"}}
	assert.True(t, profile.SupportsMode(ModeVideo))
	assert.True(t, profile.SupportsMode(ModePhone))
	assert.False(t, profile.SupportsMode(ModeInPerson))
}
