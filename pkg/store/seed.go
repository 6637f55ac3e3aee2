package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

// SeedOptions controls the records created in an empty store
type SeedOptions struct {
	AdminName       string
	AdminEmail      string
	AdminPassword   string
	DefaultPassword string
	Now             time.Time
}

const seedDomain = "shift-relay.local"

// Seed fills an empty store with the default relay team and makes sure
// at least one master account exists.
func Seed(ctx context.Context, s Store, opts SeedOptions, logger *zap.Logger) error {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	if len(employees) == 0 {
		for _, def := range schedule.DefaultShifts {
			e := models.Employee{
				Name:     def.EmployeeName,
				Email:    strings.ToLower(def.EmployeeName) + "@" + seedDomain,
				Password: opts.DefaultPassword,
				Role:     models.RoleEmployee,
			}
			if _, err := s.CreateEmployee(ctx, e); err != nil {
				return fmt.Errorf("failed to seed employee %s: %w", e.Name, err)
			}
		}
		logger.Info("Seeded default employees", zap.Int("count", len(schedule.DefaultShifts)))
	}

	hasMaster := false
	for _, e := range employees {
		if e.Role == models.RoleMaster {
			hasMaster = true
			break
		}
	}
	if !hasMaster {
		admin := models.Employee{
			Name:     opts.AdminName,
			Email:    opts.AdminEmail,
			Password: opts.AdminPassword,
			Role:     models.RoleMaster,
		}
		if _, err := s.CreateEmployee(ctx, admin); err != nil {
			return fmt.Errorf("failed to seed master account: %w", err)
		}
		logger.Info("Default master account created", zap.String("name", models.NormalizeName(admin.Name)))
	}

	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list shifts: %w", err)
	}
	if len(shifts) == 0 {
		from := opts.Now.Format(models.DateLayout)
		for _, def := range schedule.DefaultShifts {
			def.ID = 0
			def.EffectiveFrom = from
			if _, err := s.CreateShift(ctx, def); err != nil {
				return fmt.Errorf("failed to seed shift for %s: %w", def.EmployeeName, err)
			}
		}
		logger.Info("Seeded default shifts", zap.String("effectiveFrom", from))
	}
	return nil
}
