// Package workers provides the profession catalog, the worker data model and
// procedural population generation.
package workers

// Category is the top-level worker classification.
type Category uint8

const (
	CategoryConstruction Category = iota
	CategoryOffice
)

// Categories lists every category in generation order.
var Categories = []Category{CategoryConstruction, CategoryOffice}

// String returns the category name used in logs, saves and the API.
func (c Category) String() string {
	switch c {
	case CategoryConstruction:
		return "construction"
	case CategoryOffice:
		return "office"
	default:
		return "unknown"
	}
}

// ParseCategory converts a category name back to a Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "construction":
		return CategoryConstruction, true
	case "office":
		return CategoryOffice, true
	default:
		return 0, false
	}
}

// Level bounds for appearance and skill.
const (
	MinLevel = 1
	MaxLevel = 10
)

// Worker is one member of the labor population.
type Worker struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// Profession
	Category       Category `json:"category" db:"category"`
	ProfessionID   string   `json:"profession_id" db:"profession_id"`
	ProfessionName string   `json:"profession_name" db:"profession_name"`

	AppearanceLevel int `json:"appearance_level" db:"appearance_level"` // 1–10
	SkillLevel      int `json:"skill_level" db:"skill_level"`           // 1–10

	// Costs, fixed at generation
	Salary      int64 `json:"salary" db:"salary"` // Monthly
	HireCost    int64 `json:"hire_cost" db:"hire_cost"`
	UpgradeCost int64 `json:"upgrade_cost" db:"upgrade_cost"`

	// Employment state
	IsHired       bool `json:"is_hired" db:"is_hired"`
	IsBusy        bool `json:"is_busy" db:"is_busy"`
	RecentlyFired bool `json:"recently_fired" db:"recently_fired"`
	RestDaysLeft  int  `json:"rest_days_left" db:"rest_days_left"`
}

// FullName returns "First Last".
func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// Available reports whether the worker can appear in the market at all:
// not employed and not resting after a firing.
func (w *Worker) Available() bool {
	return !w.IsHired && !w.RecentlyFired
}
