package models

// Booking row statuses as stored in the sheet.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
)

// BookingRow is one persisted sheet row, columns B..K. Column A holds an
// auto-computed booking id formula and is never written by this system.
// Key (WeekStart, Date, Name) is unique under the upsert's update-in-place
// guarantee.
type BookingRow struct {
	WeekStart   string `json:"week_start"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	RationType  string `json:"ration_type"`
	MealB       int    `json:"mealB"`
	MealL       int    `json:"mealL"`
	MealD       int    `json:"mealD"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Values returns the row as sheet cell values in column order B..K.
func (r BookingRow) Values() []interface{} {
	return []interface{}{
		r.WeekStart,
		r.Date,
		r.Name,
		r.RationType,
		r.MealB,
		r.MealL,
		r.MealD,
		r.Status,
		r.SubmittedAt,
		r.UpdatedAt,
	}
}

// Key returns the composite booking key for upsert matching.
func (r BookingRow) Key() string {
	return BookingKey(r.WeekStart, r.Date, r.Name)
}

// BookingKey builds the composite (weekStart, date, name) key.
func BookingKey(weekStart, date, name string) string {
	return weekStart + "|" + date + "|" + name
}

// SubmitRequest is the submit endpoint payload.
type SubmitRequest struct {
	Name       string    `json:"name"`
	RationType string    `json:"rationType"`
	WeekStart  string    `json:"weekStart"`
	Plan       *WeekPlan `json:"plan"`
}

// SubmitResponse is the submit endpoint success body.
type SubmitResponse struct {
	OK           bool   `json:"ok"`
	WeekStart    string `json:"weekStart"`
	Name         string `json:"name"`
	RationType   string `json:"rationType"`
	Updated      int    `json:"updated"`
	Appended     int    `json:"appended"`
	TotalWritten int    `json:"totalWritten"`
}

// ReadResponse is the read endpoint success body. RationType is the last
// stored ration type for the name, if any.
type ReadResponse struct {
	OK         bool     `json:"ok"`
	Name       string   `json:"name"`
	WeekStart  string   `json:"weekStart"`
	RationType *string  `json:"rationType"`
	Plan       WeekPlan `json:"plan"`
}

// NamelistResponse is the namelist endpoint body. Source is "cache", "api"
// or "api_forced".
type NamelistResponse struct {
	Source string     `json:"source"`
	Rows   [][]string `json:"rows"`
}
