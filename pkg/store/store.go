package store

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrInvalid   = errors.New("invalid record")
)

// Store is the durable record of employees and shift definitions
type Store interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, name string) (models.Employee, error)
	CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error)
	// UpdateEmployee replaces the employee stored under name; e.Name may differ to rename
	UpdateEmployee(ctx context.Context, name string, e models.Employee) (models.Employee, error)
	DeleteEmployee(ctx context.Context, name string) error

	// ListShifts returns every definition sorted by Order
	ListShifts(ctx context.Context) ([]models.ShiftDefinition, error)
	GetShift(ctx context.Context, id int) (models.ShiftDefinition, error)
	// CreateShift assigns the next sequential ID
	CreateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error)
	// CreateShifts adds every definition or none of them
	CreateShifts(ctx context.Context, defs []models.ShiftDefinition) ([]models.ShiftDefinition, error)
	UpdateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error)
	DeleteShift(ctx context.Context, id int) error

	Close() error
}

// Today returns the schedule effective on now's date, sorted by Order
func Today(ctx context.Context, s Store, now time.Time) ([]models.ShiftDefinition, error) {
	defs, err := s.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.Today(now, defs), nil
}

// PrepareEmployee normalises and validates an employee before it is written
func PrepareEmployee(e *models.Employee) error {
	e.Name = models.NormalizeName(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if e.Role == "" {
		e.Role = models.RoleEmployee
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, e.Role)
	}
	if e.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalid)
	}
	if e.Email != "" {
		if _, err := mail.ParseAddress(e.Email); err != nil {
			return fmt.Errorf("%w: email %q: %v", ErrInvalid, e.Email, err)
		}
	}
	return nil
}

// PrepareShift normalises and validates a definition before it is written.
// An empty label is derived from the hours.
func PrepareShift(def *models.ShiftDefinition) error {
	def.EmployeeName = models.NormalizeName(def.EmployeeName)
	if def.EffectiveUntil != nil && *def.EffectiveUntil == "" {
		def.EffectiveUntil = nil
	}
	if err := schedule.ValidateDefinition(*def); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if def.Label == "" {
		def.Label = schedule.BuildShiftLabel(def.StartHour, def.EndHour)
	}
	return nil
}

// PrepareShifts runs PrepareShift over a batch in place. The error names
// the zero-based index of the first bad definition.
func PrepareShifts(defs []models.ShiftDefinition) error {
	for i := range defs {
		if err := PrepareShift(&defs[i]); err != nil {
			return &BatchError{Index: i, Err: err}
		}
	}
	return nil
}

// BatchError locates the definition that failed a batch write
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("definition %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
