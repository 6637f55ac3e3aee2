package schedule

import (
	"math"
	"time"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

const msPerHour = 3600 * 1000

// UnknownShift is the shift name reported for an empty schedule
const UnknownShift = "UNKNOWN"

// DefaultShifts is used by display clients when no schedule can be fetched
var DefaultShifts = []models.ShiftDefinition{
	{ID: 1, EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18, Label: "9:00 AM – 6:00 PM", Order: 0},
	{ID: 2, EmployeeName: "AZEEZ", StartHour: 18, EndHour: 26, Label: "6:00 PM – 2:00 AM", Order: 1},
	{ID: 3, EmployeeName: "IQBAL", StartHour: 2, EndHour: 9, Label: "2:00 AM – 9:00 AM", Order: 2},
}

// DecimalHour converts t to an hour-of-day value in t's location,
// e.g. 13:30:00 -> 13.5. Sub-second precision is dropped.
func DecimalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// Contains reports whether h falls inside the shift window. The returned
// value is h shifted onto the shift's continuous timeline: for the early
// half of a midnight-crossing shift it is h+24.
func Contains(def models.ShiftDefinition, h float64) (float64, bool) {
	if def.Wraps() {
		if h >= def.StartHour {
			return h, true
		}
		if h < def.EndHour-24 {
			return h + 24, true
		}
		return h, false
	}
	if h >= def.StartHour && h < def.EndHour {
		return h, true
	}
	return h, false
}

// Resolve finds the active shift at now. The schedule must already be in
// display order; the first matching definition wins. When nothing matches
// the first definition is reported with zero progress.
func Resolve(now time.Time, schedule []models.ShiftDefinition) models.ActiveShiftStatus {
	status := models.ActiveShiftStatus{TotalShifts: len(schedule)}
	if len(schedule) == 0 {
		status.ShiftName = UnknownShift
		return status
	}

	h := DecimalHour(now)
	for i, def := range schedule {
		normalized, ok := Contains(def, h)
		if !ok {
			continue
		}
		status.ActiveIndex = i
		status.ShiftName = def.EmployeeName
		status.ShiftLabel = LabelOf(def)
		status.Progress, status.RemainingMs = progress(def, normalized)
		return status
	}

	first := schedule[0]
	status.ShiftName = first.EmployeeName
	status.ShiftLabel = LabelOf(first)
	return status
}

// progress returns the completion fraction and time left for a shift.
// Zero-length or inverted shifts report no progress and no time left.
func progress(def models.ShiftDefinition, normalized float64) (float64, int64) {
	duration := def.EndHour - def.StartHour
	if duration <= 0 {
		return 0, 0
	}
	elapsed := normalized - def.StartHour
	p := math.Max(0, math.Min(1, elapsed/duration))
	remaining := math.Max(0, (duration-elapsed)*msPerHour)
	return p, int64(math.Round(remaining))
}

// UpcomingNotification returns the first shift in schedule order that
// starts within minutesBefore minutes of now, or nil.
func UpcomingNotification(now time.Time, minutesBefore int, schedule []models.ShiftDefinition) *models.UpcomingShift {
	h := DecimalHour(now)
	threshold := float64(minutesBefore) / 60

	for _, def := range schedule {
		diff := def.StartHour - h
		if diff < -12 {
			diff += 24
		}
		if diff > 12 {
			diff -= 24
		}
		if diff > 0 && diff <= threshold {
			return &models.UpcomingShift{
				Name:         def.EmployeeName,
				Shift:        LabelOf(def),
				MinutesUntil: int(math.Round(diff * 60)),
			}
		}
	}
	return nil
}

// LabelOf returns the definition's label, or one built from its hours
// when the label is empty.
func LabelOf(def models.ShiftDefinition) string {
	if def.Label != "" {
		return def.Label
	}
	return BuildShiftLabel(def.StartHour, def.EndHour)
}
