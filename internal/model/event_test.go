package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventStartedAndClosed(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	e := Event{StartsAt: start, EndsAt: end}

	assert.False(t, e.Started(start.Add(-time.Minute)))
	assert.True(t, e.Started(start)) // check-in opens exactly at start
	assert.True(t, e.Started(start.Add(time.Minute)))

	assert.False(t, e.Closed(end.Add(-time.Minute)))
	assert.True(t, e.Closed(end)) // RSVPs close exactly at end
	assert.True(t, e.Closed(end.Add(time.Hour)))
}
