// Package dashboard is a headless rendition of the relay display. It polls
// the state service, resolves the active shift locally and prints one
// status block per tick.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/presence"
	"github.com/arnavshah/shift-relay-go/pkg/runner"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

const (
	DefaultTick    = time.Second
	DefaultRefresh = time.Minute
)

// Source is the part of the state service the dashboard polls.
// *client.Client satisfies it.
type Source interface {
	State(ctx context.Context) (presence.Snapshot, error)
	Schedule(ctx context.Context) ([]models.ShiftDefinition, error)
}

// Frame is everything shown for one tick
type Frame struct {
	Now       time.Time
	Shift     models.ActiveShiftStatus
	Remaining schedule.Remaining
	Runner    runner.Result
	Upcoming  *models.UpcomingShift
	Resume    *models.ResumeEvent
	Board     []runner.Row
	Offline   bool
	Fallback  bool
}

// Dashboard drives the tick and refresh loops
type Dashboard struct {
	src    Source
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time

	tick          time.Duration
	refresh       time.Duration
	notifyMinutes int
	board         bool

	mu       sync.Mutex
	schedule []models.ShiftDefinition
	resume   *models.ResumeEvent
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// WithIntervals overrides the tick and schedule refresh periods
func WithIntervals(tick, refresh time.Duration) Option {
	return func(d *Dashboard) {
		d.tick = tick
		d.refresh = refresh
	}
}

// WithNotifyMinutes sets the upcoming-shift lead time
func WithNotifyMinutes(minutes int) Option {
	return func(d *Dashboard) { d.notifyMinutes = minutes }
}

// WithBoard adds the per-employee rows of the master view
func WithBoard() Option {
	return func(d *Dashboard) { d.board = true }
}

// WithResume shows a welcome-back notice on the next frame
func WithResume(event models.ResumeEvent) Option {
	return func(d *Dashboard) { d.resume = &event }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

// New creates a dashboard that renders to out
func New(src Source, out io.Writer, opts ...Option) *Dashboard {
	d := &Dashboard{
		src:           src,
		out:           out,
		logger:        zap.NewNop(),
		now:           time.Now,
		tick:          DefaultTick,
		refresh:       DefaultRefresh,
		notifyMinutes: 30,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run renders a frame every tick and refreshes the schedule every refresh
// interval until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	d.RefreshSchedule(ctx)
	if err := d.Render(d.Tick(ctx)); err != nil {
		return err
	}

	tick := time.NewTicker(d.tick)
	defer tick.Stop()
	refresh := time.NewTicker(d.refresh)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-refresh.C:
			d.RefreshSchedule(ctx)
		case <-tick.C:
			if err := d.Render(d.Tick(ctx)); err != nil {
				return err
			}
		}
	}
}

// RefreshSchedule replaces the cached schedule when the service returns a
// non-empty one. Failures keep the previous schedule.
func (d *Dashboard) RefreshSchedule(ctx context.Context) {
	defs, err := d.src.Schedule(ctx)
	if err != nil {
		d.logger.Warn("Failed to refresh schedule", zap.Error(err))
		return
	}
	if len(defs) == 0 {
		return
	}
	d.mu.Lock()
	d.schedule = defs
	d.mu.Unlock()
}

// Schedule returns a copy of the cached schedule, or nil before the first
// successful refresh.
func (d *Dashboard) Schedule() []models.ShiftDefinition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.schedule) == 0 {
		return nil
	}
	return append([]models.ShiftDefinition(nil), d.schedule...)
}

// Tick computes the frame for the current instant
func (d *Dashboard) Tick(ctx context.Context) Frame {
	d.mu.Lock()
	sched := d.schedule
	resume := d.resume
	d.resume = nil
	d.mu.Unlock()

	fallback := len(sched) == 0
	if fallback {
		sched = schedule.DefaultShifts
	}

	now := d.now()
	active := schedule.Resolve(now, sched)

	snap, err := d.src.State(ctx)
	if err != nil {
		d.logger.Debug("State poll failed", zap.Error(err))
		snap = presence.EmptySnapshot()
	}

	f := Frame{
		Now:       now,
		Shift:     active,
		Remaining: schedule.FormatRemaining(active.RemainingMs),
		Runner:    runner.Classify(active, snap),
		Upcoming:  schedule.UpcomingNotification(now, d.notifyMinutes, sched),
		Resume:    resume,
		Offline:   err != nil,
		Fallback:  fallback,
	}
	if d.board {
		f.Board = runner.Board(active, sched, snap)
	}
	return f
}

// Render writes one frame as text
func (d *Dashboard) Render(f Frame) error {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s  %s  %s %s %5.1f%%",
		f.Now.Format("15:04:05"),
		f.Shift.ShiftName,
		f.Shift.ShiftLabel,
		bar(f.Runner.DisplayProgress),
		f.Runner.Status,
		f.Runner.DisplayProgress*100)
	switch f.Runner.Status {
	case models.StatusPaused:
		fmt.Fprintf(&b, "  paused %s", schedule.FormatDuration(f.Runner.PausedFor(f.Now).Milliseconds()))
	case models.StatusRunning:
		fmt.Fprintf(&b, "  %s left", f.Remaining.Display)
	}
	b.WriteByte('\n')

	if f.Resume != nil {
		fmt.Fprintf(&b, "  welcome back %s: away %s, resuming from %.1f%%\n",
			f.Resume.Name, schedule.FormatDuration(f.Resume.GapMs), f.Resume.PausedProgress*100)
	}
	if f.Upcoming != nil {
		fmt.Fprintf(&b, "  next: %s (%s) in %d min\n", f.Upcoming.Name, f.Upcoming.Shift, f.Upcoming.MinutesUntil)
	}
	for _, row := range f.Board {
		marker := " "
		if row.Current {
			marker = ">"
		}
		online := "offline"
		if row.Online {
			online = "online"
		}
		fmt.Fprintf(&b, "  %s %-10s %-22s %-7s %s\n", marker, row.Name, row.Label, online, row.Status)
	}
	if f.Offline {
		b.WriteString("  server unreachable, presence unknown\n")
	}
	if f.Fallback {
		b.WriteString("  using default schedule\n")
	}

	_, err := io.WriteString(d.out, b.String())
	return err
}

const barWidth = 20

func bar(progress float64) string {
	filled := int(progress * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// LogoutProgress returns the progress to report when name logs out at now,
// and whether name holds the active shift. An empty schedule resolves
// against the default rotation.
func LogoutProgress(now time.Time, name string, sched []models.ShiftDefinition) (float64, bool) {
	if len(sched) == 0 {
		sched = schedule.DefaultShifts
	}
	active := schedule.Resolve(now, sched)
	return active.Progress, active.ShiftName == models.NormalizeName(name)
}
