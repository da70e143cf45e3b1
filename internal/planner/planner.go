// Package planner drives one user's interactive weekly ration planning: week
// navigation, day and meal toggling, lock rules, the unsaved-change guard and
// the submit flow. State is kept per session; drafts and submitted-plan
// fingerprints persist through an injected Store so the machine is testable
// without any real storage behind it.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rationbook/internal/dates"
	"rationbook/internal/models"
	"rationbook/internal/plan"
)

// ErrUnsavedChanges blocks week navigation away from an editable week whose
// plan differs from its submission baseline.
var ErrUnsavedChanges = errors.New("current week has unsaved changes")

// ErrCannotSubmit is returned when the submit preconditions do not hold.
var ErrCannotSubmit = errors.New("submission not allowed in current state")

// Backend is the remote side the planner loads from and submits to.
type Backend interface {
	FetchWeek(ctx context.Context, name, weekStart string) (*models.ReadResponse, error)
	SubmitWeek(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error)
}

// DayLockState tells why a day can or cannot be edited.
type DayLockState int

const (
	DayEditable DayLockState = iota
	DayLockedPast
	DayLockedReadOnlyWeek
)

// Planner is one session's weekly plan state machine. Not safe for
// concurrent use; each session has a single logical writer.
type Planner struct {
	store   Store
	backend Backend
	now     func() time.Time
	scope   string

	name       string
	rationType string
	weekStart  string
	plan       models.WeekPlan

	loadGen uint64
}

// New restores a planner from its store scope. The initial week is the
// earliest bookable one; its locally drafted plan, if any, is picked up.
func New(store Store, backend Backend, now func() time.Time, scope string) *Planner {
	if now == nil {
		now = time.Now
	}
	p := &Planner{store: store, backend: backend, now: now, scope: scope}

	if v, ok := store.Get(p.key("name")); ok {
		p.name = string(v)
	}
	if v, ok := store.Get(p.key("defaultRationType")); ok {
		p.rationType = string(v)
	}

	p.weekStart = plan.MinBookableWeekStart(now())
	p.restoreDraft()
	return p
}

func (p *Planner) key(parts ...string) string {
	k := p.scope
	for _, part := range parts {
		k += ":" + part
	}
	return k
}

func (p *Planner) draftKey() string     { return p.key("weekDraft", p.weekStart) }
func (p *Planner) submittedKey() string { return p.key("submitted", p.weekStart) }

// Accessors.

func (p *Planner) Name() string            { return p.name }
func (p *Planner) RationType() string      { return p.rationType }
func (p *Planner) WeekStart() string       { return p.weekStart }
func (p *Planner) Plan() models.WeekPlan   { return plan.Clone(p.plan) }
func (p *Planner) MinBookableWeek() string { return plan.MinBookableWeekStart(p.now()) }

// ReadOnlyWeek reports whether the current week precedes the booking window.
// Read-only weeks permit no mutation at all.
func (p *Planner) ReadOnlyWeek() bool {
	return p.weekStart < p.MinBookableWeek()
}

// DayLock returns the lock state of one date in the current week.
func (p *Planner) DayLock(dateISO string) DayLockState {
	if p.ReadOnlyWeek() {
		return DayLockedReadOnlyWeek
	}
	if plan.IsPastDateLocked(dateISO, p.now()) {
		return DayLockedPast
	}
	return DayEditable
}

// SetName records the identity name, persisted for prefill across sessions.
func (p *Planner) SetName(name string) {
	p.name = name
	if name == "" {
		p.store.Remove(p.key("name"))
		return
	}
	p.store.Set(p.key("name"), []byte(name))
}

// SetRationType records the default ration type applied to all bookings.
func (p *Planner) SetRationType(rt string) {
	p.rationType = rt
	if rt == "" {
		p.store.Remove(p.key("defaultRationType"))
		return
	}
	p.store.Set(p.key("defaultRationType"), []byte(rt))
}

// LoadWeek refreshes the current week from the backend. The server response
// becomes both the plan and the new submission baseline, so a freshly loaded
// week is clean. On fetch failure or absent identity the local draft is kept.
// When navigation supersedes an in-flight load, the stale response is
// discarded: last request wins.
func (p *Planner) LoadWeek(ctx context.Context) error {
	if p.name == "" || p.backend == nil {
		p.restoreDraft()
		return nil
	}

	p.loadGen++
	gen := p.loadGen
	week := p.weekStart

	res, err := p.backend.FetchWeek(ctx, p.name, week)

	if p.loadGen != gen || p.weekStart != week {
		return nil
	}
	if err != nil {
		p.restoreDraft()
		return err
	}

	p.plan = plan.Clone(res.Plan)
	p.plan.WeekStart = week
	if res.RationType != nil && p.rationType == "" {
		p.SetRationType(*res.RationType)
	}
	p.store.Set(p.submittedKey(), []byte(plan.Fingerprint(p.plan)))
	p.persistDraft()
	return nil
}

// PrevWeek navigates one week back.
func (p *Planner) PrevWeek() error { return p.navigate(-1) }

// NextWeek navigates one week forward.
func (p *Planner) NextWeek() error { return p.navigate(1) }

func (p *Planner) navigate(deltaWeeks int) error {
	if err := p.guardNavigation(); err != nil {
		return err
	}
	next, err := dates.NextWeekStart(p.weekStart, deltaWeeks)
	if err != nil {
		return err
	}
	p.setWeek(next)
	return nil
}

// JumpToEarliestBookable navigates straight to the first editable week.
func (p *Planner) JumpToEarliestBookable() error {
	if err := p.guardNavigation(); err != nil {
		return err
	}
	p.setWeek(p.MinBookableWeek())
	return nil
}

// guardNavigation blocks leaving an editable week with unsaved changes.
// Read-only weeks always permit navigation; there is nothing to lose.
func (p *Planner) guardNavigation() error {
	if !p.ReadOnlyWeek() && p.Dirty() {
		return ErrUnsavedChanges
	}
	return nil
}

func (p *Planner) setWeek(weekStart string) {
	p.weekStart = weekStart
	p.restoreDraft()
}

// SetDayEnabled toggles a day on or off. Disabling clears the day's meals.
// No-op when the week is read-only or the date is past-locked.
func (p *Planner) SetDayEnabled(dateISO string, enabled bool) {
	if p.DayLock(dateISO) != DayEditable {
		return
	}
	day, ok := p.plan.Days[dateISO]
	if !ok {
		return
	}
	day.Enabled = enabled
	if !enabled {
		day.Meals = models.MealFlags{}
	}
	p.plan.Days[dateISO] = day
	p.persistDraft()
}

// ToggleMeal flips one meal selection. No-op when the week is read-only, the
// date is past-locked, or the day is not enabled.
func (p *Planner) ToggleMeal(dateISO string, meal models.Meal) {
	if p.DayLock(dateISO) != DayEditable {
		return
	}
	day, ok := p.plan.Days[dateISO]
	if !ok || !day.Enabled {
		return
	}
	day.Meals.Set(meal, !day.Meals.Get(meal))
	p.plan.Days[dateISO] = day
	p.persistDraft()
}

// ClearWeek resets the week to all-disabled and discards its local draft.
// No-op on read-only weeks.
func (p *Planner) ClearWeek() {
	if p.ReadOnlyWeek() {
		return
	}
	def, err := plan.BuildDefaultWeek(p.weekStart)
	if err != nil {
		return
	}
	p.plan = def
	p.store.Remove(p.draftKey())
}

// Dirty reports whether the plan differs from its submission baseline. A
// never-submitted week is dirty once anything is selected.
func (p *Planner) Dirty() bool {
	baseline, ok := p.store.Get(p.submittedKey())
	if !ok {
		return plan.HasAnySelection(p.plan)
	}
	return plan.Fingerprint(p.plan) != string(baseline)
}

// CanSubmit reports whether the submit preconditions hold: editable week,
// known identity, chosen ration type, and unsaved changes to send.
func (p *Planner) CanSubmit() bool {
	return !p.ReadOnlyWeek() && p.name != "" && p.rationType != "" && p.Dirty()
}

// Submit sends the current week to the backend. On success the submitted
// fingerprint baseline moves to the just-submitted plan; on failure the
// prior state is preserved and the error carries the server reason.
func (p *Planner) Submit(ctx context.Context) (*models.SubmitResponse, error) {
	if !p.CanSubmit() {
		return nil, ErrCannotSubmit
	}

	snapshot := plan.Clone(p.plan)
	res, err := p.backend.SubmitWeek(ctx, models.SubmitRequest{
		Name:       p.name,
		RationType: p.rationType,
		WeekStart:  p.weekStart,
		Plan:       &snapshot,
	})
	if err != nil {
		return nil, err
	}

	p.store.Set(p.submittedKey(), []byte(plan.Fingerprint(p.plan)))
	p.persistDraft()
	return res, nil
}

// persistDraft saves the current plan under the week's draft key. Drafts for
// any week, including past ones, are harmless to retain.
func (p *Planner) persistDraft() {
	b, err := json.Marshal(p.plan)
	if err != nil {
		return
	}
	p.store.Set(p.draftKey(), b)
}

// restoreDraft loads the current week's draft, rebuilding a default week
// when the draft is absent or no longer matches the expected weekday set.
func (p *Planner) restoreDraft() {
	raw, _ := p.store.Get(p.draftKey())
	wp, err := plan.NormalizeOrRebuildDraft(raw, p.weekStart)
	if err != nil {
		return
	}
	p.plan = wp
	p.weekStart = wp.WeekStart
}
