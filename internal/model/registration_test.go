package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionStatus(t *testing.T) {
	// Fits exactly into the remaining capacity.
	assert.Equal(t, StatusConfirmed, AdmissionStatus(0, 10, 10))
	assert.Equal(t, StatusConfirmed, AdmissionStatus(9, 10, 1))

	// One guest over the line waitlists the whole request.
	assert.Equal(t, StatusWaiting, AdmissionStatus(10, 10, 1))
	assert.Equal(t, StatusWaiting, AdmissionStatus(9, 10, 2))

	// Capacity zero sends everything to the waitlist.
	assert.Equal(t, StatusWaiting, AdmissionStatus(0, 0, 1))

	// A huge guest count must not wrap around and look admitted.
	assert.Equal(t, StatusWaiting, AdmissionStatus(1<<40, 100, ^uint32(0)))
}

func TestValidGuestCount(t *testing.T) {
	assert.False(t, ValidGuestCount(0))
	assert.True(t, ValidGuestCount(1))
	assert.True(t, ValidGuestCount(250))
}

func TestRegistrationActive(t *testing.T) {
	r := Registration{Status: StatusConfirmed}
	assert.True(t, r.Active())

	r.Status = StatusWaiting
	assert.True(t, r.Active())

	r.Status = StatusCancelled
	assert.False(t, r.Active())
}
