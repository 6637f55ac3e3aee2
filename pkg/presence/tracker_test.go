package presence

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestTracker() (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
	return NewTracker(WithClock(clock.Now)), clock
}

func progress(p float64) *float64 { return &p }

func TestTracker_LoginAddsOnce(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Login("SUHAIL", models.RoleEmployee)
	snap, resume := tr.Login("SUHAIL", models.RoleEmployee)

	assert.Equal(t, []string{"SUHAIL"}, snap.LoggedInEmployees)
	assert.Nil(t, resume)
}

func TestTracker_MasterNotTracked(t *testing.T) {
	tr, _ := newTestTracker()

	snap, _ := tr.Login("ADMIN", models.RoleMaster)

	assert.Empty(t, snap.LoggedInEmployees)
	assert.NotNil(t, snap.LoggedInEmployees, "serialises as []")
}

func TestTracker_LoginOrderPreserved(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Login("AZEEZ", models.RoleEmployee)
	tr.Login("SUHAIL", models.RoleEmployee)
	snap, _ := tr.Login("IQBAL", models.RoleEmployee)

	assert.Equal(t, []string{"AZEEZ", "SUHAIL", "IQBAL"}, snap.LoggedInEmployees)
}

func TestTracker_PauseRoundTrip(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Login("SUHAIL", models.RoleEmployee)
	snap := tr.Logout("SUHAIL", progress(0.5), true)

	assert.False(t, snap.IsLoggedIn("SUHAIL"))
	rec, ok := snap.Pause("SUHAIL")
	require.True(t, ok)
	assert.Equal(t, 0.5, rec.PausedProgress)
	assert.Equal(t, clock.Now().UnixMilli(), rec.PausedAtTime)

	clock.Advance(45 * time.Minute)
	snap, resume := tr.Login("SUHAIL", models.RoleEmployee)
	require.NotNil(t, resume)
	assert.Equal(t, 0.5, resume.PausedProgress)
	assert.Empty(t, snap.PauseState)
	assert.True(t, snap.IsLoggedIn("SUHAIL"))

	event := NewResumeEvent("SUHAIL", *resume, clock.Now())
	assert.Equal(t, int64(45*time.Minute/time.Millisecond), event.GapMs)

	_, again := tr.Login("SUHAIL", models.RoleEmployee)
	assert.Nil(t, again, "resume info is handed out once")
}

func TestTracker_LogoutNotActiveDoesNotPause(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Login("AZEEZ", models.RoleEmployee)
	snap := tr.Logout("AZEEZ", progress(0.3), false)
	assert.Empty(t, snap.PauseState)

	tr.Login("AZEEZ", models.RoleEmployee)
	snap = tr.Logout("AZEEZ", nil, true)
	assert.Empty(t, snap.PauseState)
}

func TestTracker_LastLogoutWins(t *testing.T) {
	tr, clock := newTestTracker()

	tr.Logout("SUHAIL", progress(0.2), true)
	clock.Advance(time.Minute)
	snap := tr.Logout("SUHAIL", progress(0.4), true)

	rec, ok := snap.Pause("SUHAIL")
	require.True(t, ok)
	assert.Equal(t, 0.4, rec.PausedProgress)
	assert.Equal(t, clock.Now().UnixMilli(), rec.PausedAtTime)
}

func TestTracker_ProgressClamped(t *testing.T) {
	tr, _ := newTestTracker()

	snap := tr.Logout("SUHAIL", progress(1.7), true)
	assert.Equal(t, 1.0, snap.PauseState["SUHAIL"].PausedProgress)
}

func TestTracker_SnapshotIdempotentAndIsolated(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Login("SUHAIL", models.RoleEmployee)
	tr.Logout("AZEEZ", progress(0.1), true)

	first := tr.Snapshot()
	second := tr.Snapshot()
	assert.Equal(t, first, second)

	first.LoggedInEmployees[0] = "MUTATED"
	first.PauseState["GHOST"] = models.PauseRecord{}
	assert.Equal(t, second, tr.Snapshot())
}

func TestTracker_Purge(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Login("SUHAIL", models.RoleEmployee)
	tr.Logout("AZEEZ", progress(0.6), true)

	assert.True(t, tr.Purge("SUHAIL"))
	assert.True(t, tr.Purge("AZEEZ"))
	assert.False(t, tr.Purge("IQBAL"))

	snap := tr.Snapshot()
	assert.Empty(t, snap.LoggedInEmployees)
	assert.Empty(t, snap.PauseState)
}

func TestTracker_ConcurrentLoginPopsOnce(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Logout("SUHAIL", progress(0.5), true)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		pops  int
		names = 50
	)
	for i := 0; i < names; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Login(fmt.Sprintf("E%d", i), models.RoleEmployee)
			if _, resume := tr.Login("SUHAIL", models.RoleEmployee); resume != nil {
				mu.Lock()
				pops++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, pops)
	assert.Len(t, tr.Snapshot().LoggedInEmployees, names+1)
}

func TestTracker_LoginWith(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Logout("SUHAIL", progress(0.3), true)

	res, err := tr.LoginWith(func() (models.Employee, error) {
		return models.Employee{Name: "SUHAIL", Role: models.RoleEmployee}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "SUHAIL", res.Employee.Name)
	assert.True(t, res.Snapshot.IsLoggedIn("SUHAIL"))
	require.NotNil(t, res.Resume)
	assert.Equal(t, 0.3, res.Resume.PausedProgress)

	denied := errors.New("denied")
	_, err = tr.LoginWith(func() (models.Employee, error) {
		return models.Employee{}, denied
	})
	assert.ErrorIs(t, err, denied)
	assert.Len(t, tr.Snapshot().LoggedInEmployees, 1)
}

func TestTracker_PurgeWith(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Login("SUHAIL", models.RoleEmployee)

	failed := errors.New("store down")
	err := tr.PurgeWith("SUHAIL", func() error { return failed })
	assert.ErrorIs(t, err, failed)
	assert.True(t, tr.Snapshot().IsLoggedIn("SUHAIL"), "nothing purged when removal fails")

	require.NoError(t, tr.PurgeWith("SUHAIL", func() error { return nil }))
	assert.False(t, tr.Snapshot().IsLoggedIn("SUHAIL"))
}

func TestNewResumeEvent_ClockSkew(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	rec := models.PauseRecord{PausedAtTime: now.Add(time.Second).UnixMilli(), PausedProgress: 0.2}

	event := NewResumeEvent("SUHAIL", rec, now)
	assert.Equal(t, int64(0), event.GapMs)
	assert.Equal(t, 0.2, event.PausedProgress)
}
