package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/auth"
	"github.com/arnavshah/shift-relay-go/pkg/handlers"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/store"
	"github.com/arnavshah/shift-relay-go/pkg/store/filestore"
)

func newTestService(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := filestore.Open(filepath.Join(t.TempDir(), "relay.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Seed(context.Background(), s, store.SeedOptions{
		AdminName:       "ADMIN",
		AdminPassword:   "admin123",
		DefaultPassword: "shift123",
		Now:             now,
	}, zap.NewNop()))

	h := &handlers.Handler{
		Store:    s,
		Tracker:  presence.NewTracker(),
		Signer:   auth.NewSigner("test-secret"),
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}
	srv := httptest.NewServer(h.NewRouter())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginLogoutResume(t *testing.T) {
	srv := newTestService(t)
	c := New(srv.URL + "/api/")
	ctx := context.Background()

	res, err := c.Login(ctx, "suhail", "shift123")
	require.NoError(t, err)
	assert.Equal(t, "SUHAIL", res.User.Name)
	assert.Equal(t, []string{"SUHAIL"}, res.State.LoggedInEmployees)
	assert.Nil(t, res.ResumeInfo)

	p := 0.25
	snap, err := c.Logout(ctx, "SUHAIL", &p, true)
	require.NoError(t, err)
	assert.Empty(t, snap.LoggedInEmployees)
	assert.Equal(t, 0.25, snap.PauseState["SUHAIL"].PausedProgress)

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, state)

	res, err = c.Login(ctx, "SUHAIL", "shift123")
	require.NoError(t, err)
	require.NotNil(t, res.ResumeInfo)
	assert.Equal(t, 0.25, res.ResumeInfo.PausedProgress)
}

func TestClient_LoginRejected(t *testing.T) {
	srv := newTestService(t)
	c := New(srv.URL + "/api")

	_, err := c.Login(context.Background(), "SUHAIL", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, errors.Is(err, ErrServerUnreachable))
}

func TestClient_ScheduleAndEmployees(t *testing.T) {
	srv := newTestService(t)
	c := New(srv.URL + "/api")
	ctx := context.Background()

	sched, err := c.Schedule(ctx)
	require.NoError(t, err)
	assert.Len(t, sched, 3)

	emps, err := c.Employees(ctx)
	require.NoError(t, err)
	assert.Len(t, emps, 4)
}

func TestClient_AdminDeleteEmployee(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()

	err := New(srv.URL + "/api").DeleteEmployee(ctx, "IQBAL")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	token, err := New(srv.URL+"/api").AdminLogin(ctx, "ADMIN", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, New(srv.URL+"/api", WithToken(token)).DeleteEmployee(ctx, "IQBAL"))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url + "/api")
	snap, err := c.State(context.Background())
	assert.ErrorIs(t, err, ErrServerUnreachable)
	assert.Equal(t, presence.EmptySnapshot(), snap)

	_, err = c.Login(context.Background(), "SUHAIL", "shift123")
	assert.ErrorIs(t, err, ErrServerUnreachable)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.State(context.Background())
	assert.ErrorIs(t, err, ErrServerUnreachable)
}

func TestClient_WithTimeoutKeepsSharedClient(t *testing.T) {
	shared := &http.Client{Timeout: 10 * time.Second}

	c := New("http://localhost:8000/api", WithHTTPClient(shared), WithTimeout(50*time.Millisecond))

	assert.Equal(t, 10*time.Second, shared.Timeout)
	assert.Equal(t, 50*time.Millisecond, c.http.Timeout)
	assert.NotSame(t, shared, c.http)
}

func TestClient_NotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Schedule(context.Background())
	assert.ErrorIs(t, err, ErrServerUnreachable)
}
