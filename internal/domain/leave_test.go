package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(day("2024-01-10"), day("2024-01-10")))
	assert.Equal(t, 3, InclusiveDays(day("2024-01-10"), day("2024-01-12")))
	assert.Equal(t, 2, InclusiveDays(day("2024-02-28"), day("2024-02-29")))
}

func TestParseDateNormalizesRFC3339(t *testing.T) {
	got, err := ParseDate("2024-01-10T18:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestWeight(t *testing.T) {
	half := LeaveRequest{LeaveType: LeaveHalfDay, StartDate: day("2024-01-10"), EndDate: day("2024-01-10")}
	assert.Equal(t, 0.5, half.Weight())

	full := LeaveRequest{LeaveType: LeaveSick, StartDate: day("2024-01-10"), EndDate: day("2024-01-12")}
	assert.Equal(t, 3.0, full.Weight())
}

func TestBalanceAdjustment(t *testing.T) {
	cases := []struct {
		from, to LeaveStatus
		want     float64
		err      error
	}{
		{StatusPending, StatusApproved, -2, nil},
		{StatusPending, StatusRejected, 0, nil},
		{StatusApproved, StatusRejected, 2, nil},
		{StatusRejected, StatusApproved, -2, nil},
		{StatusApproved, StatusApproved, 0, ErrNoopTransition},
		{StatusApproved, StatusPending, 0, ErrInvalidTransition},
	}
	for _, c := range cases {
		got, err := BalanceAdjustment(2, c.from, c.to)
		if c.err != nil {
			assert.ErrorIs(t, err, c.err, "%s->%s", c.from, c.to)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s->%s", c.from, c.to)
	}
}

func TestAcademicYear(t *testing.T) {
	assert.Equal(t, "2023-2024", AcademicYear(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-2025", AcademicYear(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
}
