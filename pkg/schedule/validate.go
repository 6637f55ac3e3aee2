package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

// Window is a span of the 24h cycle, in decimal hours
type Window struct {
	StartHour float64  `json:"startHour"`
	EndHour   float64  `json:"endHour"`
	Names     []string `json:"names,omitempty"`
}

// Issue describes a definition that can never resolve sensibly
type Issue struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Coverage reports how a schedule tiles the day
type Coverage struct {
	Valid    bool     `json:"valid"`
	Gaps     []Window `json:"gaps"`
	Overlaps []Window `json:"overlaps"`
	Invalid  []Issue  `json:"invalid"`
}

// ValidateDefinition checks the fields of a single definition
func ValidateDefinition(def models.ShiftDefinition) error {
	if def.EmployeeName == "" {
		return errors.New("name is required")
	}
	if !finite(def.StartHour) || !finite(def.EndHour) {
		return fmt.Errorf("hours %v-%v must be finite numbers", def.StartHour, def.EndHour)
	}
	if def.StartHour < 0 || def.StartHour >= 24 {
		return fmt.Errorf("startHour %v must be in [0,24)", def.StartHour)
	}
	if def.EndHour <= def.StartHour {
		return fmt.Errorf("endHour %v must be after startHour %v; use endHour > 24 for shifts crossing midnight", def.EndHour, def.StartHour)
	}
	if def.EndHour-def.StartHour > 24 {
		return fmt.Errorf("shift %v-%v is longer than 24 hours", def.StartHour, def.EndHour)
	}

	var from time.Time
	if def.EffectiveFrom != "" {
		t, err := time.Parse(models.DateLayout, def.EffectiveFrom)
		if err != nil {
			return fmt.Errorf("invalid effectiveFrom %q: %w", def.EffectiveFrom, err)
		}
		from = t
	}
	if def.EffectiveUntil != nil && *def.EffectiveUntil != "" {
		until, err := time.Parse(models.DateLayout, *def.EffectiveUntil)
		if err != nil {
			return fmt.Errorf("invalid effectiveUntil %q: %w", *def.EffectiveUntil, err)
		}
		if !from.IsZero() && until.Before(from) {
			return fmt.Errorf("effectiveUntil %s is before effectiveFrom %s", *def.EffectiveUntil, def.EffectiveFrom)
		}
	}
	return nil
}

func finite(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0)
}

// Validate samples every minute of the day and reports gaps (no shift
// active) and overlaps (more than one shift active). Overlaps are
// resolved first-match at runtime, so they are reported, not rejected.
func Validate(schedule []models.ShiftDefinition) Coverage {
	var cov Coverage
	for _, def := range schedule {
		if !finite(def.StartHour) || !finite(def.EndHour) {
			cov.Invalid = append(cov.Invalid, Issue{
				ID:     def.ID,
				Name:   def.EmployeeName,
				Reason: "hours must be finite numbers",
			})
			continue
		}
		if def.EndHour-def.StartHour <= 0 {
			cov.Invalid = append(cov.Invalid, Issue{
				ID:     def.ID,
				Name:   def.EmployeeName,
				Reason: "zero or negative duration",
			})
		}
	}

	const minutesPerDay = 24 * 60
	var (
		open    *Window
		openKey string
		kind    int
	)
	flush := func(end int) {
		if open == nil {
			return
		}
		open.EndHour = float64(end) / 60
		switch kind {
		case 0:
			cov.Gaps = append(cov.Gaps, *open)
		case 2:
			cov.Overlaps = append(cov.Overlaps, *open)
		}
		open = nil
	}

	for m := 0; m < minutesPerDay; m++ {
		h := float64(m) / 60
		var names []string
		for _, def := range schedule {
			if _, ok := Contains(def, h); ok {
				names = append(names, def.EmployeeName)
			}
		}

		k := len(names)
		if k > 2 {
			k = 2
		}
		key := fmt.Sprint(k, names)
		if k == 1 {
			flush(m)
			openKey = ""
			continue
		}
		if open != nil && key == openKey {
			continue
		}
		flush(m)
		open = &Window{StartHour: h}
		if k == 2 {
			open.Names = names
		}
		openKey = key
		kind = k
	}
	flush(minutesPerDay)

	cov.Valid = len(cov.Gaps) == 0 && len(cov.Overlaps) == 0 && len(cov.Invalid) == 0
	return cov
}
