// Package ration reconciles submitted week plans against the booking sheet
// and reads them back.
package ration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rationbook/internal/dates"
	"rationbook/internal/google"
	"rationbook/internal/models"
	"rationbook/internal/plan"
)

// SheetStore is the slice of the Sheets client the services need.
type SheetStore interface {
	ReadBookingRows(ctx context.Context) ([][]interface{}, error)
	BatchUpdateRows(ctx context.Context, updates []google.RowUpdate) error
	AppendRows(ctx context.Context, rows [][]interface{}) error
}

// ValidationError marks a client-side input problem; handlers map it to 400.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "Missing " + e.Field
}

// Booking row cell offsets within B..K.
const (
	colWeekStart = iota
	colDate
	colName
	colRationType
	colMealB
	colMealL
	colMealD
	colStatus
	colSubmittedAt
	colUpdatedAt
)

type Service struct {
	store  SheetStore
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(store SheetStore, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now, logger: logger}
}

// UpsertResult reports what a submission wrote.
type UpsertResult struct {
	WeekStart string
	Updated   int
	Appended  int
}

// Upsert writes one week's plan for one name. Rows are written only for the
// five weekdays derived from the normalized weekStart, regardless of what
// keys appear in plan.Days. Existing rows matched by (weekStart, date, name)
// are updated in place; the rest are appended after the last existing row.
// The whole submission fails on any store error, with no partial retry.
func (s *Service) Upsert(ctx context.Context, req models.SubmitRequest) (UpsertResult, error) {
	name := strings.TrimSpace(req.Name)
	rationType := strings.TrimSpace(req.RationType)
	weekStartInput := strings.TrimSpace(req.WeekStart)

	if name == "" {
		return UpsertResult{}, &ValidationError{Field: "name"}
	}
	if rationType == "" {
		return UpsertResult{}, &ValidationError{Field: "rationType"}
	}
	if weekStartInput == "" {
		return UpsertResult{}, &ValidationError{Field: "weekStart"}
	}
	if req.Plan == nil || req.Plan.Days == nil {
		return UpsertResult{}, &ValidationError{Field: "plan.days"}
	}

	weekStart, err := dates.NormalizeWeekStart(weekStartInput)
	if err != nil {
		return UpsertResult{}, &ValidationError{Field: "weekStart"}
	}
	monFri, err := dates.MonFri(weekStart)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("derive weekdays: %w", err)
	}

	nowISO := s.now().UTC().Format(time.RFC3339)

	desired := make([]models.BookingRow, 0, 5)
	for _, dateISO := range monFri {
		day := req.Plan.Days[dateISO] // absent day reads as all-false

		b := boolTo01(day.Enabled && day.Meals.B)
		l := boolTo01(day.Enabled && day.Meals.L)
		d := boolTo01(day.Enabled && day.Meals.D)

		// A day enabled with zero meals is recorded as a cancellation,
		// not rejected.
		status := models.StatusCancelled
		if b+l+d > 0 {
			status = models.StatusActive
		}

		desired = append(desired, models.BookingRow{
			WeekStart:   weekStart,
			Date:        dateISO,
			Name:        name,
			RationType:  rationType,
			MealB:       b,
			MealL:       l,
			MealD:       d,
			Status:      status,
			SubmittedAt: nowISO,
			UpdatedAt:   nowISO,
		})
	}

	existing, err := s.store.ReadBookingRows(ctx)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("load existing rows: %w", err)
	}

	type existingRow struct {
		sheetRow    int
		submittedAt string
	}
	rowByKey := make(map[string]existingRow)
	for idx, r := range existing {
		ws := cellString(r, colWeekStart)
		dt := cellString(r, colDate)
		nm := cellString(r, colName)
		if ws == "" || dt == "" || nm == "" {
			continue
		}
		// Data starts at sheet row 2; later duplicates of a key win.
		rowByKey[models.BookingKey(ws, dt, nm)] = existingRow{
			sheetRow:    idx + 2,
			submittedAt: cellString(r, colSubmittedAt),
		}
	}

	var updates []google.RowUpdate
	var appends [][]interface{}

	for _, row := range desired {
		prev, ok := rowByKey[row.Key()]
		if ok {
			// updated_at is refreshed on every rewrite; submitted_at keeps
			// the value written when the row was first created.
			if prev.submittedAt != "" {
				row.SubmittedAt = prev.submittedAt
			}
			updates = append(updates, google.RowUpdate{Row: prev.sheetRow, Values: row.Values()})
		} else {
			appends = append(appends, row.Values())
		}
	}

	if err := s.store.BatchUpdateRows(ctx, updates); err != nil {
		return UpsertResult{}, fmt.Errorf("update rows: %w", err)
	}
	if err := s.store.AppendRows(ctx, appends); err != nil {
		return UpsertResult{}, fmt.Errorf("append rows: %w", err)
	}

	s.logger.Info().
		Str("name", name).
		Str("week_start", weekStart).
		Int("updated", len(updates)).
		Int("appended", len(appends)).
		Msg("ration week upserted")

	return UpsertResult{WeekStart: weekStart, Updated: len(updates), Appended: len(appends)}, nil
}

// ReadResult is a week's plan reconstructed from the sheet.
type ReadResult struct {
	WeekStart  string
	Plan       models.WeekPlan
	RationType *string
}

// Read rebuilds the plan for (name, weekStart) from stored rows. Rows for
// other names, other weeks, or dates outside Mon-Fri of the target week are
// ignored. When duplicate rows exist for one key the last scanned wins.
func (s *Service) Read(ctx context.Context, name, weekStart string) (ReadResult, error) {
	name = strings.TrimSpace(name)
	weekStart = strings.TrimSpace(weekStart)

	if name == "" {
		return ReadResult{}, &ValidationError{Field: "name"}
	}
	if weekStart == "" {
		return ReadResult{}, &ValidationError{Field: "weekStart"}
	}

	weekPlan, err := plan.BuildDefaultWeek(weekStart)
	if err != nil {
		return ReadResult{}, &ValidationError{Field: "weekStart"}
	}

	rows, err := s.store.ReadBookingRows(ctx)
	if err != nil {
		return ReadResult{}, fmt.Errorf("load rows: %w", err)
	}

	var rationType *string
	for _, r := range rows {
		rowWeekStart := cellString(r, colWeekStart)
		rowDate := cellString(r, colDate)
		rowName := cellString(r, colName)
		rowRationType := cellString(r, colRationType)
		status := strings.ToUpper(cellString(r, colStatus))

		if rowWeekStart == "" || rowDate == "" || rowName == "" {
			continue
		}
		if rowWeekStart != weekPlan.WeekStart || rowName != name {
			continue
		}
		if _, ok := weekPlan.Days[rowDate]; !ok {
			continue
		}

		isActive := status == "" || status != models.StatusCancelled

		b := isActive && ParseBool01(cell(r, colMealB))
		l := isActive && ParseBool01(cell(r, colMealL))
		d := isActive && ParseBool01(cell(r, colMealD))

		weekPlan.Days[rowDate] = models.DayPlan{
			Enabled: b || l || d,
			Meals:   models.MealFlags{B: b, L: l, D: d},
		}

		if rowRationType != "" {
			rationType = &rowRationType
		}
	}

	return ReadResult{WeekStart: weekPlan.WeekStart, Plan: weekPlan, RationType: rationType}, nil
}

// ParseBool01 decodes the lenient truthy encodings the sheet may hold.
// Exactly numeric 1, string "1", boolean true and the literal "TRUE" read as
// true; every other value reads as false.
func ParseBool01(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x == 1
	case float64:
		return x == 1
	case string:
		return x == "1" || x == "TRUE"
	}
	return false
}

func boolTo01(v bool) int {
	if v {
		return 1
	}
	return 0
}

func cell(row []interface{}, i int) interface{} {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func cellString(row []interface{}, i int) string {
	v := cell(row, i)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
