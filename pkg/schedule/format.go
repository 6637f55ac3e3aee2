package schedule

import (
	"fmt"
	"math"
)

// Remaining is a countdown split for display
type Remaining struct {
	Hours   string `json:"hours"`
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
	Display string `json:"display"`
}

// FormatRemaining renders milliseconds as an HH:MM:SS countdown
func FormatRemaining(ms int64) Remaining {
	totalSec := ms / 1000
	if totalSec < 0 {
		totalSec = 0
	}
	r := Remaining{
		Hours:   fmt.Sprintf("%02d", totalSec/3600),
		Minutes: fmt.Sprintf("%02d", (totalSec%3600)/60),
		Seconds: fmt.Sprintf("%02d", totalSec%60),
	}
	r.Display = r.Hours + ":" + r.Minutes + ":" + r.Seconds
	return r
}

// FormatDuration renders an absence gap, e.g. "45 min" or "2h 5m"
func FormatDuration(ms int64) string {
	totalMin := ms / 60000
	if totalMin < 1 {
		return "less than a minute"
	}
	if totalMin < 60 {
		return fmt.Sprintf("%d min", totalMin)
	}
	hours := totalMin / 60
	mins := totalMin % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}

// HourToLabel converts a decimal hour (9, 18.5, 26) to a 12-hour clock label
func HourToLabel(hour float64) string {
	h := hour
	if h > 24 {
		h -= 24
	}
	whole := math.Floor(h)
	minutes := int(math.Round((h - whole) * 60))
	if minutes == 60 {
		whole++
		minutes = 0
	}

	period := "AM"
	if whole >= 12 && whole < 24 {
		period = "PM"
	}
	display := int(whole)
	switch {
	case display > 12:
		display -= 12
	case display == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minutes, period)
}

// BuildShiftLabel builds the default label for a shift window
func BuildShiftLabel(startHour, endHour float64) string {
	return HourToLabel(startHour) + " – " + HourToLabel(endHour)
}
