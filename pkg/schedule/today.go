package schedule

import (
	"sort"
	"time"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

// EffectiveOn reports whether the definition's effective window contains
// the calendar date of day. Both bounds are inclusive; an empty
// EffectiveFrom means "always", a nil EffectiveUntil means open-ended.
func EffectiveOn(def models.ShiftDefinition, day time.Time) bool {
	date := day.Format(models.DateLayout)
	if def.EffectiveFrom != "" && date < def.EffectiveFrom {
		return false
	}
	if def.EffectiveUntil != nil && *def.EffectiveUntil != "" && date > *def.EffectiveUntil {
		return false
	}
	return true
}

// Today returns the definitions effective on now's date, sorted by Order.
// Definitions sharing an Order keep their input order.
func Today(now time.Time, defs []models.ShiftDefinition) []models.ShiftDefinition {
	out := make([]models.ShiftDefinition, 0, len(defs))
	for _, def := range defs {
		if EffectiveOn(def, now) {
			out = append(out, def)
		}
	}
	SortByOrder(out)
	return out
}

// SortByOrder stable-sorts definitions by Order
func SortByOrder(defs []models.ShiftDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].Order < defs[j].Order
	})
}
