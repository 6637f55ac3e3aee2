package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-relay-go/pkg/store"
	"github.com/arnavshah/shift-relay-go/pkg/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := InitDB("sqlite", filepath.Join(t.TempDir(), "relay.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := InitDB("mysql", "whatever")
	assert.Error(t, err)
}
