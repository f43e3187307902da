package employment

import "github.com/talgya/laborsim/internal/workers"

// ProfessionCaps limits how many workers of a profession may be hired at
// once, keyed by profession display name. Professions not listed are unlimited.
var ProfessionCaps = map[string]int{
	"Architect":       2,
	"Crane Operator":  2,
	"Engineer":        3,
	"Lawyer":          1,
	"Project Manager": 2,
}

// CategoryCaps is the hired-headcount ceiling per category for a level.
type CategoryCaps struct {
	Construction int
	Office       int
}

// For returns the cap for a category.
func (c CategoryCaps) For(cat workers.Category) int {
	if cat == workers.CategoryOffice {
		return c.Office
	}
	return c.Construction
}

var categoryCapsByLevel = map[int]CategoryCaps{
	1:  {Construction: 10, Office: 4},
	2:  {Construction: 10, Office: 4},
	3:  {Construction: 20, Office: 8},
	4:  {Construction: 20, Office: 8},
	5:  {Construction: 35, Office: 12},
	6:  {Construction: 35, Office: 12},
	7:  {Construction: 50, Office: 18},
	8:  {Construction: 50, Office: 18},
	9:  {Construction: 70, Office: 25},
	10: {Construction: 70, Office: 25},
}

// CategoryCapsFor returns the caps for a level. Unknown levels use level 1.
func CategoryCapsFor(level int) CategoryCaps {
	if c, ok := categoryCapsByLevel[level]; ok {
		return c
	}
	return categoryCapsByLevel[1]
}
