package models

// Meal is one of the three weekday meals a ration can be claimed for.
type Meal string

const (
	MealBreakfast Meal = "B"
	MealLunch     Meal = "L"
	MealDinner    Meal = "D"
)

// Meals in display order.
var Meals = []Meal{MealBreakfast, MealLunch, MealDinner}

// MealLabels maps meal codes to the labels shown to users.
var MealLabels = map[Meal]string{
	MealBreakfast: "Breakfast",
	MealLunch:     "Lunch",
	MealDinner:    "Dinner",
}

// RationType applies to a whole submission; there is no per-day override.
type RationType string

const (
	RationNonMuslim            RationType = "nm"
	RationMuslim               RationType = "m"
	RationNonMuslimSpecialDiet RationType = "nmsd"
	RationVegetarianIndian     RationType = "vi"
	RationVegetarianChinese    RationType = "vc"
)

// RationTypes in display order.
var RationTypes = []RationType{
	RationNonMuslim,
	RationMuslim,
	RationNonMuslimSpecialDiet,
	RationVegetarianIndian,
	RationVegetarianChinese,
}

// RationTypeLabels maps ration codes to the labels shown to users.
var RationTypeLabels = map[RationType]string{
	RationNonMuslim:            "Non-Muslim",
	RationMuslim:               "Muslim",
	RationNonMuslimSpecialDiet: "Non-Muslim Special Diet",
	RationVegetarianIndian:     "Vegetarian Indian",
	RationVegetarianChinese:    "Vegetarian Chinese",
}

// MealFlags holds the per-meal selection of a day.
type MealFlags struct {
	B bool `json:"B"`
	L bool `json:"L"`
	D bool `json:"D"`
}

// Get returns the flag for one meal.
func (f MealFlags) Get(m Meal) bool {
	switch m {
	case MealBreakfast:
		return f.B
	case MealLunch:
		return f.L
	case MealDinner:
		return f.D
	}
	return false
}

// Set sets the flag for one meal.
func (f *MealFlags) Set(m Meal, v bool) {
	switch m {
	case MealBreakfast:
		f.B = v
	case MealLunch:
		f.L = v
	case MealDinner:
		f.D = v
	}
}

// Any reports whether at least one meal is selected.
func (f MealFlags) Any() bool {
	return f.B || f.L || f.D
}

// DayPlan is the selection state of a single weekday.
// Invariant: Enabled=false implies all meals false. A day enabled with no
// meals ticked is a valid transient state; it persists as CANCELLED.
type DayPlan struct {
	Enabled bool      `json:"enabled"`
	Meals   MealFlags `json:"meals"`
}

// WeekPlan is a Monday-keyed week of weekday selections. Days holds exactly
// the five Mon-Fri ISO dates of WeekStart, never weekend entries.
type WeekPlan struct {
	WeekStart string             `json:"weekStart"`
	Days      map[string]DayPlan `json:"days"`
}
