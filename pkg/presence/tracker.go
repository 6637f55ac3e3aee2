package presence

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/models"
)

// Snapshot is a point-in-time copy of the registry, shaped for the wire
type Snapshot struct {
	LoggedInEmployees []string                      `json:"loggedInEmployees"`
	PauseState        map[string]models.PauseRecord `json:"pauseState"`
}

// EmptySnapshot is the degraded view used when the service is unreachable
func EmptySnapshot() Snapshot {
	return Snapshot{
		LoggedInEmployees: []string{},
		PauseState:        map[string]models.PauseRecord{},
	}
}

// IsLoggedIn reports whether name is in the logged-in set
func (s Snapshot) IsLoggedIn(name string) bool {
	for _, n := range s.LoggedInEmployees {
		if n == name {
			return true
		}
	}
	return false
}

// Pause returns the pause record for name, if any
func (s Snapshot) Pause(name string) (models.PauseRecord, bool) {
	rec, ok := s.PauseState[name]
	return rec, ok
}

// Tracker is the process-wide presence and pause registry. Every
// operation runs under a single mutex so read-modify-write sequences
// never interleave.
type Tracker struct {
	mu       sync.Mutex
	loggedIn []string
	paused   map[string]models.PauseRecord
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the wall clock used for pause timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// NewTracker creates an empty registry
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		paused: make(map[string]models.PauseRecord),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Login marks name as present (masters are never tracked) and pops any
// pending pause record, which is returned exactly once.
func (t *Tracker) Login(name string, role models.Role) (Snapshot, *models.PauseRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.login(name, role)
}

// LoginResult is the outcome of a verified login
type LoginResult struct {
	Employee models.Employee
	Snapshot Snapshot
	Resume   *models.PauseRecord
}

// LoginWith runs verify and, when it succeeds, registers the returned
// employee, all under the registry lock. A concurrent PurgeWith for the
// same employee therefore either happens entirely before or after.
func (t *Tracker) LoginWith(verify func() (models.Employee, error)) (LoginResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, err := verify()
	if err != nil {
		return LoginResult{}, err
	}
	snap, resume := t.login(e.Name, e.Role)
	return LoginResult{Employee: e, Snapshot: snap, Resume: resume}, nil
}

func (t *Tracker) login(name string, role models.Role) (Snapshot, *models.PauseRecord) {
	if role != models.RoleMaster && !t.contains(name) {
		t.loggedIn = append(t.loggedIn, name)
	}

	var resume *models.PauseRecord
	if rec, ok := t.paused[name]; ok {
		resume = &rec
		delete(t.paused, name)
	}

	t.logger.Info("Employee logged in",
		zap.String("name", name),
		zap.Bool("resumed", resume != nil),
		zap.Strings("online", t.loggedIn))
	return t.snapshot(), resume
}

// Logout removes name from the logged-in set. When the employee holds
// the active shift and reported their progress, the progress is frozen
// in a pause record, replacing any earlier one.
func (t *Tracker) Logout(name string, progress *float64, isActiveShift bool) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remove(name)
	if isActiveShift && progress != nil {
		t.paused[name] = models.PauseRecord{
			PausedAtTime:   t.now().UnixMilli(),
			PausedProgress: clamp(*progress),
		}
	}

	t.logger.Info("Employee logged out",
		zap.String("name", name),
		zap.Bool("paused", isActiveShift && progress != nil),
		zap.Strings("online", t.loggedIn))
	return t.snapshot()
}

// Snapshot returns a copy of the registry
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Purge drops every trace of name. It reports whether anything was removed.
func (t *Tracker) Purge(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.purge(name)
}

// PurgeWith runs remove under the registry lock and purges name only if
// remove succeeds, so the durable deletion and the presence cleanup are
// observed as one step.
func (t *Tracker) PurgeWith(name string, remove func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := remove(); err != nil {
		return err
	}
	t.purge(name)
	return nil
}

func (t *Tracker) purge(name string) bool {
	removed := t.remove(name)
	if _, ok := t.paused[name]; ok {
		delete(t.paused, name)
		removed = true
	}
	if removed {
		t.logger.Info("Purged presence state", zap.String("name", name))
	}
	return removed
}

// NewResumeEvent computes the absence gap for a popped pause record
func NewResumeEvent(name string, rec models.PauseRecord, now time.Time) models.ResumeEvent {
	gap := now.UnixMilli() - rec.PausedAtTime
	if gap < 0 {
		gap = 0
	}
	return models.ResumeEvent{
		Name:           name,
		GapMs:          gap,
		PausedProgress: rec.PausedProgress,
	}
}

func (t *Tracker) contains(name string) bool {
	for _, n := range t.loggedIn {
		if n == name {
			return true
		}
	}
	return false
}

func (t *Tracker) remove(name string) bool {
	kept := t.loggedIn[:0]
	removed := false
	for _, n := range t.loggedIn {
		if n == name {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	t.loggedIn = kept
	return removed
}

// snapshot must be called with mu held
func (t *Tracker) snapshot() Snapshot {
	s := Snapshot{
		LoggedInEmployees: make([]string, len(t.loggedIn)),
		PauseState:        make(map[string]models.PauseRecord, len(t.paused)),
	}
	copy(s.LoggedInEmployees, t.loggedIn)
	for name, rec := range t.paused {
		s.PauseState[name] = rec
	}
	return s
}

func clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
