package models

import "strings"

// Role is the access level of an employee account
type Role string

const (
	RoleEmployee Role = "employee"
	RoleMaster   Role = "master"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleMaster
}

// DateLayout is the layout of ShiftDefinition effective dates
const DateLayout = "2006-01-02"

// Employee is a stored employee or master account
type Employee struct {
	Name     string `json:"name" gorm:"primaryKey"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role" gorm:"not null;default:employee"`
}

// Public is the employee without credentials, as returned by the API
type Public struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public strips the password
func (e Employee) Public() Public {
	return Public{Name: e.Name, Email: e.Email, Role: e.Role}
}

// NormalizeName upper-cases and trims an employee name
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ShiftDefinition is one recurring daily shift owned by an employee.
// EndHour may exceed 24 for a shift crossing midnight (26 = 02:00 next day).
type ShiftDefinition struct {
	ID             int     `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeName   string  `json:"name" gorm:"index;not null"`
	StartHour      float64 `json:"startHour"`
	EndHour        float64 `json:"endHour"`
	Label          string  `json:"label"`
	Order          int     `json:"order" gorm:"column:sort_order"`
	EffectiveFrom  string  `json:"effectiveFrom"`
	EffectiveUntil *string `json:"effectiveUntil"`
}

// Wraps reports whether the shift crosses midnight
func (s ShiftDefinition) Wraps() bool {
	return s.EndHour > 24
}

// ActiveShiftStatus is the resolver output for a single instant
type ActiveShiftStatus struct {
	ActiveIndex int     `json:"activeIndex"`
	Progress    float64 `json:"progress"`
	RemainingMs int64   `json:"remainingMs"`
	ShiftName   string  `json:"shiftName"`
	ShiftLabel  string  `json:"shiftLabel"`
	TotalShifts int     `json:"totalShifts"`
}

// PauseRecord is the progress snapshot captured when the active
// shift-holder disconnects.
type PauseRecord struct {
	PausedAtTime   int64   `json:"pausedAtTime"`
	PausedProgress float64 `json:"pausedProgress"`
}

// ResumeEvent is handed out once when a paused employee logs back in
type ResumeEvent struct {
	Name           string  `json:"name"`
	GapMs          int64   `json:"gapMs"`
	PausedProgress float64 `json:"pausedProgress"`
}

// UpcomingShift announces a shift starting soon
type UpcomingShift struct {
	Name         string `json:"name"`
	Shift        string `json:"shift"`
	MinutesUntil int    `json:"minutesUntil"`
}

// RunnerStatus is the presence classification of the active shift-holder
type RunnerStatus string

const (
	StatusRunning RunnerStatus = "running"
	StatusPaused  RunnerStatus = "paused"
	StatusWaiting RunnerStatus = "waiting"
)
