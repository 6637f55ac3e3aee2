package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 10, 14, hour, min, sec, 0, time.UTC)
}

func TestResolve_DayShift(t *testing.T) {
	status := Resolve(at(10, 0, 0), DefaultShifts)

	assert.Equal(t, 0, status.ActiveIndex)
	assert.Equal(t, "SUHAIL", status.ShiftName)
	assert.Equal(t, "9:00 AM – 6:00 PM", status.ShiftLabel)
	assert.InDelta(t, 1.0/9.0, status.Progress, 1e-9)
	assert.Equal(t, int64(8*time.Hour/time.Millisecond), status.RemainingMs)
	assert.Equal(t, 3, status.TotalShifts)
}

func TestResolve_WrapAfterMidnight(t *testing.T) {
	status := Resolve(at(1, 0, 0), DefaultShifts)

	assert.Equal(t, 1, status.ActiveIndex)
	assert.Equal(t, "AZEEZ", status.ShiftName)
	assert.InDelta(t, 0.875, status.Progress, 1e-9)
	assert.Equal(t, int64(time.Hour/time.Millisecond), status.RemainingMs)
}

func TestResolve_WrapBoundaries(t *testing.T) {
	night := []models.ShiftDefinition{{EmployeeName: "AZEEZ", StartHour: 18, EndHour: 26}}

	_, ok := Contains(night[0], 0.5)
	assert.True(t, ok, "active half an hour after midnight")

	_, ok = Contains(night[0], DecimalHour(at(17, 59, 59)))
	assert.False(t, ok, "inactive just before start")

	normalized, ok := Contains(night[0], 18.0)
	assert.True(t, ok, "active exactly at start")
	assert.Equal(t, 18.0, normalized)

	_, ok = Contains(night[0], 2.0)
	assert.False(t, ok, "end is exclusive")

	status := Resolve(at(18, 0, 0), night)
	assert.Equal(t, 0.0, status.Progress)
	assert.Equal(t, int64(8*time.Hour/time.Millisecond), status.RemainingMs)
}

func TestResolve_ExactlyOneActiveAndMonotonic(t *testing.T) {
	start := at(0, 0, 0)
	lastName := ""
	lastProgress := -1.0

	for m := 0; m < 24*60; m++ {
		now := start.Add(time.Duration(m) * time.Minute)
		h := DecimalHour(now)

		matches := 0
		for _, def := range DefaultShifts {
			if _, ok := Contains(def, h); ok {
				matches++
			}
		}
		require.Equal(t, 1, matches, "minute %d", m)

		status := Resolve(now, DefaultShifts)
		if status.ShiftName == lastName {
			assert.GreaterOrEqual(t, status.Progress, lastProgress, "minute %d", m)
		}
		lastName = status.ShiftName
		lastProgress = status.Progress
	}
}

func TestResolve_GapFallsBackToFirst(t *testing.T) {
	defs := []models.ShiftDefinition{
		{EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18, Label: "day"},
		{EmployeeName: "IQBAL", StartHour: 2, EndHour: 9, Label: "early"},
	}

	status := Resolve(at(20, 0, 0), defs)

	assert.Equal(t, 0, status.ActiveIndex)
	assert.Equal(t, "SUHAIL", status.ShiftName)
	assert.Equal(t, "day", status.ShiftLabel)
	assert.Equal(t, 0.0, status.Progress)
	assert.Equal(t, int64(0), status.RemainingMs)
	assert.Equal(t, 2, status.TotalShifts)
}

func TestResolve_InvertedWrapNoProgress(t *testing.T) {
	inverted := []models.ShiftDefinition{{EmployeeName: "Z", StartHour: 30, EndHour: 26}}

	status := Resolve(at(1, 0, 0), inverted)

	assert.Equal(t, "Z", status.ShiftName)
	assert.Equal(t, 0.0, status.Progress)
	assert.Equal(t, int64(0), status.RemainingMs)
}

func TestResolve_ZeroDurationNeverMatches(t *testing.T) {
	defs := []models.ShiftDefinition{
		{EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18, Label: "day"},
		{EmployeeName: "Z", StartHour: 5, EndHour: 5},
	}

	status := Resolve(at(5, 0, 0), defs)

	assert.Equal(t, 0, status.ActiveIndex)
	assert.Equal(t, "SUHAIL", status.ShiftName)
	assert.Equal(t, 0.0, status.Progress)
	assert.Equal(t, int64(0), status.RemainingMs)

	alone := Resolve(at(5, 0, 0), defs[1:])
	assert.Equal(t, "Z", alone.ShiftName)
	assert.Equal(t, 0.0, alone.Progress)
	assert.Equal(t, int64(0), alone.RemainingMs)
}

func TestResolve_EmptySchedule(t *testing.T) {
	status := Resolve(at(12, 0, 0), nil)

	assert.Equal(t, UnknownShift, status.ShiftName)
	assert.Equal(t, 0, status.TotalShifts)
	assert.Equal(t, 0.0, status.Progress)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	defs := []models.ShiftDefinition{
		{EmployeeName: "A", StartHour: 8, EndHour: 16},
		{EmployeeName: "B", StartHour: 10, EndHour: 12},
	}

	status := Resolve(at(11, 0, 0), defs)
	assert.Equal(t, "A", status.ShiftName)
}

func TestResolve_GeneratedLabel(t *testing.T) {
	defs := []models.ShiftDefinition{{EmployeeName: "A", StartHour: 9.5, EndHour: 17}}

	status := Resolve(at(10, 0, 0), defs)
	assert.Equal(t, "9:30 AM – 5:00 PM", status.ShiftLabel)
}

func TestUpcomingNotification(t *testing.T) {
	n := UpcomingNotification(at(8, 45, 0), 30, DefaultShifts)
	require.NotNil(t, n)
	assert.Equal(t, "SUHAIL", n.Name)
	assert.Equal(t, "9:00 AM – 6:00 PM", n.Shift)
	assert.Equal(t, 15, n.MinutesUntil)

	assert.Nil(t, UpcomingNotification(at(8, 0, 0), 30, DefaultShifts))
	assert.Nil(t, UpcomingNotification(at(9, 0, 0), 30, DefaultShifts), "already started")
}

func TestUpcomingNotification_AcrossMidnight(t *testing.T) {
	defs := []models.ShiftDefinition{{EmployeeName: "NIGHT", StartHour: 0, EndHour: 8}}

	n := UpcomingNotification(at(23, 50, 0), 30, defs)
	require.NotNil(t, n)
	assert.Equal(t, 10, n.MinutesUntil)
}

func TestUpcomingNotification_FirstMatchNotClosest(t *testing.T) {
	defs := []models.ShiftDefinition{
		{EmployeeName: "LATER", StartHour: 9.4, EndHour: 12},
		{EmployeeName: "SOONER", StartHour: 9.1, EndHour: 12},
	}

	n := UpcomingNotification(at(9, 0, 0), 30, defs)
	require.NotNil(t, n)
	assert.Equal(t, "LATER", n.Name)
	assert.Equal(t, 24, n.MinutesUntil)
}
