// Package plan builds and validates weekly ration plans and tracks whether a
// plan has unsaved changes relative to its last submission.
package plan

import (
	"encoding/json"
	"time"

	"rationbook/internal/dates"
	"rationbook/internal/models"
)

// BuildDefaultWeek normalizes weekStartISO to its Monday and returns a plan
// with the five weekdays present, all disabled with no meals.
func BuildDefaultWeek(weekStartISO string) (models.WeekPlan, error) {
	weekStart, err := dates.NormalizeWeekStart(weekStartISO)
	if err != nil {
		return models.WeekPlan{}, err
	}

	monFri, err := dates.MonFri(weekStart)
	if err != nil {
		return models.WeekPlan{}, err
	}

	days := make(map[string]models.DayPlan, 5)
	for _, iso := range monFri {
		days[iso] = models.DayPlan{}
	}
	return models.WeekPlan{WeekStart: weekStart, Days: days}, nil
}

// NormalizeOrRebuildDraft parses a stored draft for the given week. If the
// raw value is absent, unparsable, or its day keys do not exactly match the
// expected Mon-Fri set, the default week is returned instead. Stale drafts
// surviving a schema change never leak through.
func NormalizeOrRebuildDraft(raw []byte, weekStartISO string) (models.WeekPlan, error) {
	expected, err := BuildDefaultWeek(weekStartISO)
	if err != nil {
		return models.WeekPlan{}, err
	}

	if len(raw) == 0 {
		return expected, nil
	}

	var parsed models.WeekPlan
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Days == nil {
		return expected, nil
	}

	if len(parsed.Days) != len(expected.Days) {
		return expected, nil
	}
	for iso := range expected.Days {
		if _, ok := parsed.Days[iso]; !ok {
			return expected, nil
		}
	}

	return models.WeekPlan{WeekStart: expected.WeekStart, Days: parsed.Days}, nil
}

// IsPastDateLocked reports whether dateISO is strictly before now's local
// calendar day.
func IsPastDateLocked(dateISO string, now time.Time) bool {
	d, err := dates.FromISO(dateISO)
	if err != nil {
		return false
	}
	return d.Before(dates.StartOfDay(now))
}

// MinBookableWeekStart returns the Monday of the week two weeks out from
// now. Weeks starting earlier are read-only.
func MinBookableWeekStart(now time.Time) string {
	lead := dates.AddDays(dates.StartOfDay(now), 14)
	return dates.ToISO(dates.StartOfWeekMonday(lead))
}

// Fingerprint is a structural snapshot of a plan, stable under day-key
// insertion order (encoding/json emits map keys sorted).
func Fingerprint(p models.WeekPlan) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

// HasAnySelection reports whether any day is enabled or has a meal ticked.
// A never-submitted week is dirty exactly when this is true.
func HasAnySelection(p models.WeekPlan) bool {
	for _, day := range p.Days {
		if day.Enabled || day.Meals.Any() {
			return true
		}
	}
	return false
}

// Clone deep-copies a plan so mutations never alias a stored baseline.
func Clone(p models.WeekPlan) models.WeekPlan {
	days := make(map[string]models.DayPlan, len(p.Days))
	for iso, day := range p.Days {
		days[iso] = day
	}
	return models.WeekPlan{WeekStart: p.WeekStart, Days: days}
}
