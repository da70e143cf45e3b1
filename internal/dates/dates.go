// Package dates holds the local-calendar date math used across the planner.
// Everything works on the caller's local calendar day; nothing here shifts
// through UTC.
package dates

import "time"

const isoLayout = "2006-01-02"

// ToISO formats a date as YYYY-MM-DD using its local calendar components.
func ToISO(d time.Time) string {
	return d.Format(isoLayout)
}

// FromISO parses YYYY-MM-DD as a local midnight instant.
func FromISO(iso string) (time.Time, error) {
	return time.ParseInLocation(isoLayout, iso, time.Local)
}

// MustFromISO is FromISO for dates already known to be valid.
func MustFromISO(iso string) time.Time {
	d, err := FromISO(iso)
	if err != nil {
		panic(err)
	}
	return d
}

// StartOfDay truncates to local midnight.
func StartOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// AddDays moves by whole calendar days.
func AddDays(d time.Time, n int) time.Time {
	return StartOfDay(d).AddDate(0, 0, n)
}

// StartOfWeekMonday returns the Monday at or before d, at local midnight.
// Sunday maps back six days.
func StartOfWeekMonday(d time.Time) time.Time {
	day := StartOfDay(d)
	diff := int(day.Weekday()) - int(time.Monday)
	if day.Weekday() == time.Sunday {
		diff = 6
	}
	return day.AddDate(0, 0, -diff)
}

// NormalizeWeekStart rounds an ISO date down to its Monday.
func NormalizeWeekStart(iso string) (string, error) {
	d, err := FromISO(iso)
	if err != nil {
		return "", err
	}
	return ToISO(StartOfWeekMonday(d)), nil
}

// MonFri returns the five consecutive ISO dates starting at weekStart.
// weekStart must already be a Monday.
func MonFri(weekStartISO string) ([]string, error) {
	monday, err := FromISO(weekStartISO)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		out = append(out, ToISO(AddDays(monday, i)))
	}
	return out, nil
}

// NextWeekStart moves a week start by deltaWeeks weeks, re-rounded to Monday.
func NextWeekStart(weekStartISO string, deltaWeeks int) (string, error) {
	base, err := FromISO(weekStartISO)
	if err != nil {
		return "", err
	}
	moved := AddDays(base, deltaWeeks*7)
	return ToISO(StartOfWeekMonday(moved)), nil
}

// FormatDayLabel renders an ISO date as e.g. "Tue 17 Jun" for display.
func FormatDayLabel(iso string) string {
	d, err := FromISO(iso)
	if err != nil {
		return iso
	}
	return d.Format("Mon 02 Jan")
}
