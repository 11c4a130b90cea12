package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		allowed  bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusCheckedIn, true},
		{AppointmentStatusCheckedIn, AppointmentStatusInProgress, true},
		{AppointmentStatusInProgress, AppointmentStatusCompleted, true},
		{AppointmentStatusCompleted, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusInProgress, AppointmentStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusNoShow.Terminal())
	assert.False(t, AppointmentStatusPending.Terminal())
	assert.False(t, AppointmentStatus("archived").Terminal())
}

func TestAppointmentStamp(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	var a Appointment
	a.Stamp(AppointmentStatusCheckedIn, at)
	a.Stamp(AppointmentStatusNoShow, at)

	assert.Equal(t, &at, a.CheckedInAt)
	assert.Nil(t, a.ConfirmedAt)
	assert.Nil(t, a.CancelledAt)
}

func TestDoctorServiceEffectiveValues(t *testing.T) {
	price := 80.0
	duration := 45
	s := DoctorService{Service: Service{DurationMinutes: 30, BasePrice: 50}}
	assert.Equal(t, 30, s.EffectiveDuration())
	assert.Equal(t, 50.0, s.EffectivePrice())

	s.CustomPrice = &price
	s.CustomDuration = &duration
	assert.Equal(t, 45, s.EffectiveDuration())
	assert.Equal(t, 80.0, s.EffectivePrice())
}
