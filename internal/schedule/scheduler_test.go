package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDailyAcceptsClockTime(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	id, err := s.ScheduleDaily("09:30", func() {})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestScheduleDailyRejectsBadTime(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	_, err := s.ScheduleDaily("25:99", func() {})
	assert.Error(t, err)

	_, err = s.ScheduleDaily("noon", func() {})
	assert.Error(t, err)
}
