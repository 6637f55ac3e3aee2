// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// Factory opens a fresh, empty store
type Factory func(t *testing.T) store.Store

// Run exercises a backend against the store contract
func Run(t *testing.T, open Factory) {
	t.Run("EmployeeCRUD", func(t *testing.T) { testEmployeeCRUD(t, open(t)) })
	t.Run("EmployeeRename", func(t *testing.T) { testEmployeeRename(t, open(t)) })
	t.Run("EmployeeValidation", func(t *testing.T) { testEmployeeValidation(t, open(t)) })
	t.Run("ShiftCRUD", func(t *testing.T) { testShiftCRUD(t, open(t)) })
	t.Run("ShiftValidation", func(t *testing.T) { testShiftValidation(t, open(t)) })
	t.Run("ShiftBatch", func(t *testing.T) { testShiftBatch(t, open(t)) })
	t.Run("Today", func(t *testing.T) { testToday(t, open(t)) })
	t.Run("Seed", func(t *testing.T) { testSeed(t, open(t)) })
}

func testEmployeeCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.CreateEmployee(ctx, models.Employee{Name: " suhail ", Email: "suhail@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "SUHAIL", created.Name)
	assert.Equal(t, models.RoleEmployee, created.Role)

	_, err = s.CreateEmployee(ctx, models.Employee{Name: "SUHAIL", Password: "pw"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := s.GetEmployee(ctx, "suhail")
	require.NoError(t, err)
	assert.Equal(t, "suhail@example.com", got.Email)

	got.Email = "new@example.com"
	updated, err := s.UpdateEmployee(ctx, "SUHAIL", got)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = s.UpdateEmployee(ctx, "NOBODY", models.Employee{Name: "NOBODY", Password: "pw"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteEmployee(ctx, "SUHAIL"))
	assert.ErrorIs(t, s.DeleteEmployee(ctx, "SUHAIL"), store.ErrNotFound)

	_, err = s.GetEmployee(ctx, "SUHAIL")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testEmployeeRename(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.CreateEmployee(ctx, models.Employee{Name: "AZEEZ", Password: "pw"})
	require.NoError(t, err)
	_, err = s.CreateEmployee(ctx, models.Employee{Name: "IQBAL", Password: "pw"})
	require.NoError(t, err)

	_, err = s.UpdateEmployee(ctx, "AZEEZ", models.Employee{Name: "IQBAL", Password: "pw"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	renamed, err := s.UpdateEmployee(ctx, "AZEEZ", models.Employee{Name: "aziz", Password: "pw2"})
	require.NoError(t, err)
	assert.Equal(t, "AZIZ", renamed.Name)

	_, err = s.GetEmployee(ctx, "AZEEZ")
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err := s.GetEmployee(ctx, "AZIZ")
	require.NoError(t, err)
	assert.Equal(t, "pw2", got.Password)
}

func testEmployeeValidation(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateEmployee(ctx, models.Employee{Name: "", Password: "pw"})
	assert.ErrorIs(t, err, store.ErrInvalid)
	_, err = s.CreateEmployee(ctx, models.Employee{Name: "A", Password: "pw", Role: "boss"})
	assert.ErrorIs(t, err, store.ErrInvalid)
	_, err = s.CreateEmployee(ctx, models.Employee{Name: "A"})
	assert.ErrorIs(t, err, store.ErrInvalid)
	_, err = s.CreateEmployee(ctx, models.Employee{Name: "A", Password: "pw", Email: "not-an-email"})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func testShiftCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	night, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "azeez", StartHour: 18, EndHour: 26, Order: 1})
	require.NoError(t, err)
	day, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18, Order: 0})
	require.NoError(t, err)

	assert.Greater(t, day.ID, night.ID, "ids are sequential")
	assert.Equal(t, "AZEEZ", night.EmployeeName)
	assert.Equal(t, "6:00 PM – 2:00 AM", night.Label)

	list, err := s.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SUHAIL", list[0].EmployeeName)

	until := "2026-12-31"
	day.EffectiveUntil = &until
	day.Label = "Day"
	updated, err := s.UpdateShift(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "Day", updated.Label)

	got, err := s.GetShift(ctx, day.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EffectiveUntil)
	assert.Equal(t, until, *got.EffectiveUntil)

	_, err = s.UpdateShift(ctx, models.ShiftDefinition{ID: 999, EmployeeName: "X", StartHour: 1, EndHour: 2})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteShift(ctx, night.ID))
	assert.ErrorIs(t, s.DeleteShift(ctx, night.ID), store.ErrNotFound)

	third, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "IQBAL", StartHour: 2, EndHour: 9, Order: 2})
	require.NoError(t, err)
	assert.Greater(t, third.ID, day.ID, "ids are not reused")
}

func testShiftValidation(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "A", StartHour: 18, EndHour: 2})
	assert.ErrorIs(t, err, store.ErrInvalid)

	list, err := s.ListShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "no partial write on invalid input")
}

func testShiftBatch(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateShifts(ctx, []models.ShiftDefinition{
		{EmployeeName: "AZEEZ", StartHour: 6, EndHour: 9},
		{EmployeeName: "IQBAL", StartHour: math.NaN(), EndHour: 9},
	})
	require.ErrorIs(t, err, store.ErrInvalid)
	var batchErr *store.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)

	list, err := s.ListShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a bad definition writes nothing")

	input := []models.ShiftDefinition{
		{EmployeeName: "suhail", StartHour: 9, EndHour: 18},
		{EmployeeName: "azeez", StartHour: 18, EndHour: 26, Order: 1},
	}
	created, err := s.CreateShifts(ctx, input)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "SUHAIL", created[0].EmployeeName)
	assert.Greater(t, created[1].ID, created[0].ID)
	assert.Equal(t, "9:00 AM – 6:00 PM", created[0].Label)
	assert.Equal(t, "suhail", input[0].EmployeeName, "input is not modified")

	list, err = s.ListShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testToday(t *testing.T, s store.Store) {
	ctx := context.Background()
	past := "2026-10-01"

	_, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "OLD", StartHour: 9, EndHour: 18, EffectiveFrom: "2026-01-01", EffectiveUntil: &past})
	require.NoError(t, err)
	_, err = s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "NEW", StartHour: 9, EndHour: 18, EffectiveFrom: "2026-10-02"})
	require.NoError(t, err)

	today, err := store.Today(ctx, s, time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "NEW", today[0].EmployeeName)
}

func testSeed(t *testing.T, s store.Store) {
	ctx := context.Background()
	opts := store.SeedOptions{
		AdminName:       "admin",
		AdminEmail:      "admin@example.com",
		AdminPassword:   "admin123",
		DefaultPassword: "shift123",
		Now:             time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.Seed(ctx, s, opts, zap.NewNop()))
	require.NoError(t, store.Seed(ctx, s, opts, zap.NewNop()), "seeding twice is a no-op")

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 4)

	admin, err := s.GetEmployee(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, admin.Role)

	shifts, err := s.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, "SUHAIL", shifts[0].EmployeeName)
	assert.Equal(t, "2026-10-14", shifts[0].EffectiveFrom)
}
