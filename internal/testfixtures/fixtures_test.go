package testfixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	assert.True(t, clock.Now().Equal(ReferenceTime()))

	advanced := clock.Advance(90 * time.Minute)
	assert.True(t, advanced.Equal(ReferenceTime().Add(90*time.Minute)))
	assert.True(t, clock.Now().Equal(advanced))
}

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("")
	assert.Equal(t, "id-1", gen.Next())
	assert.Equal(t, "id-2", gen.Next())

	prefixed := NewIDGenerator("session")
	assert.Equal(t, "session-1", prefixed.Next())
}
