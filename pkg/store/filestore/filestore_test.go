package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
	"github.com/arnavshah/shift-relay-go/pkg/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "relay.json"))
		require.NoError(t, err)
		return s
	})
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relay.json")

	_, err := Open(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "relay.json")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateEmployee(ctx, models.Employee{Name: "SUHAIL", Password: "pw"})
	require.NoError(t, err)
	first, err := s.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	e, err := reopened.GetEmployee(ctx, "SUHAIL")
	require.NoError(t, err)
	assert.Equal(t, "pw", e.Password)

	second, err := reopened.CreateShift(ctx, models.ShiftDefinition{EmployeeName: "AZEEZ", StartHour: 18, EndHour: 26})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
