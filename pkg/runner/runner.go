package runner

import (
	"time"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

// Result is the classification of the active shift-holder
type Result struct {
	Name            string              `json:"name"`
	Status          models.RunnerStatus `json:"status"`
	DisplayProgress float64             `json:"displayProgress"`
	PausedAtTime    int64               `json:"pausedAtTime,omitempty"`
}

// PausedFor returns how long the runner has been paused at now
func (r Result) PausedFor(now time.Time) time.Duration {
	if r.Status != models.StatusPaused {
		return 0
	}
	gap := now.UnixMilli() - r.PausedAtTime
	if gap < 0 {
		return 0
	}
	return time.Duration(gap) * time.Millisecond
}

// Classify decides whether the active shift-holder is running, paused
// or still waiting for their first login.
func Classify(active models.ActiveShiftStatus, snap presence.Snapshot) Result {
	name := active.ShiftName
	if snap.IsLoggedIn(name) {
		return Result{Name: name, Status: models.StatusRunning, DisplayProgress: active.Progress}
	}
	if rec, ok := snap.Pause(name); ok {
		return Result{
			Name:            name,
			Status:          models.StatusPaused,
			DisplayProgress: rec.PausedProgress,
			PausedAtTime:    rec.PausedAtTime,
		}
	}
	return Result{Name: name, Status: models.StatusWaiting}
}

// Row is one employee line on the master board
type Row struct {
	Name    string              `json:"name"`
	Label   string              `json:"label"`
	Current bool                `json:"current"`
	Online  bool                `json:"online"`
	Status  models.RunnerStatus `json:"status"`
}

// Board builds the per-shift overview shown to the master account.
// Status is computed the same way as Classify for every row.
func Board(active models.ActiveShiftStatus, sched []models.ShiftDefinition, snap presence.Snapshot) []Row {
	rows := make([]Row, 0, len(sched))
	for i, def := range sched {
		res := Classify(models.ActiveShiftStatus{ShiftName: def.EmployeeName}, snap)
		rows = append(rows, Row{
			Name:    def.EmployeeName,
			Label:   schedule.LabelOf(def),
			Current: i == active.ActiveIndex && def.EmployeeName == active.ShiftName,
			Online:  res.Status == models.StatusRunning,
			Status:  res.Status,
		})
	}
	return rows
}
