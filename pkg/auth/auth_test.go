package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

type lookup map[string]models.Employee

func (l lookup) GetEmployee(ctx context.Context, name string) (models.Employee, error) {
	e, ok := l[models.NormalizeName(name)]
	if !ok {
		return models.Employee{}, store.ErrNotFound
	}
	return e, nil
}

func TestAuthenticate(t *testing.T) {
	l := lookup{"SUHAIL": {Name: "SUHAIL", Password: "pw", Role: models.RoleEmployee}}
	ctx := context.Background()

	e, err := Authenticate(ctx, l, "suhail", "pw")
	require.NoError(t, err)
	assert.Equal(t, "SUHAIL", e.Name)

	_, err = Authenticate(ctx, l, "SUHAIL", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Authenticate(ctx, l, "NOBODY", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("secret")

	token, err := s.CreateToken(models.Employee{Name: "ADMIN", Role: models.RoleMaster})
	require.NoError(t, err)

	claims, err := s.VerifyMaster(token)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Username)
}

func TestSigner_RejectsEmployeeRole(t *testing.T) {
	s := NewSigner("secret")

	token, err := s.CreateToken(models.Employee{Name: "SUHAIL", Role: models.RoleEmployee})
	require.NoError(t, err)

	_, err = s.VerifyMaster(token)
	assert.ErrorIs(t, err, ErrNotMaster)
}

func TestSigner_RejectsOtherSecretAndExpired(t *testing.T) {
	s := NewSigner("secret")
	token, err := s.CreateToken(models.Employee{Name: "ADMIN", Role: models.RoleMaster})
	require.NoError(t, err)

	_, err = NewSigner("other").VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	old := NewSigner("secret")
	old.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }
	expired, err := old.CreateToken(models.Employee{Name: "ADMIN", Role: models.RoleMaster})
	require.NoError(t, err)

	_, err = s.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
