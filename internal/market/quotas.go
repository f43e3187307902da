package market

import "github.com/talgya/laborsim/internal/workers"

// Quota is how many workers the market shows at a level.
type Quota struct {
	Total        int
	Construction int
	Office       int
}

// For returns the slot count for a category.
func (q Quota) For(cat workers.Category) int {
	if cat == workers.CategoryOffice {
		return q.Office
	}
	return q.Construction
}

var quotaByLevel = map[int]Quota{
	1:  {Total: 10, Construction: 6, Office: 4},
	2:  {Total: 12, Construction: 7, Office: 5},
	3:  {Total: 14, Construction: 8, Office: 6},
	4:  {Total: 16, Construction: 9, Office: 7},
	5:  {Total: 18, Construction: 10, Office: 8},
	6:  {Total: 20, Construction: 12, Office: 8},
	7:  {Total: 22, Construction: 13, Office: 9},
	8:  {Total: 24, Construction: 14, Office: 10},
	9:  {Total: 26, Construction: 15, Office: 11},
	10: {Total: 28, Construction: 16, Office: 12},
}

// KnownLevel reports whether the quota tables cover level.
func KnownLevel(level int) bool {
	return level >= workers.MinLevel && level <= workers.MaxLevel
}

// QuotaFor returns the market quota for a level. Unknown levels use level 1.
func QuotaFor(level int) Quota {
	if q, ok := quotaByLevel[level]; ok {
		return q
	}
	return quotaByLevel[1]
}

// ExtraSlots returns the supplemental slots filled from lower appearance
// levels, split 60/40 between construction and office (construction rounds up).
// Levels outside 1..10 get none, like level 1.
func ExtraSlots(level int) (construction, office int) {
	if !KnownLevel(level) {
		return 0, 0
	}
	extra := (level - 1) * 2
	if extra <= 0 {
		return 0, 0
	}
	construction = (extra*6 + 9) / 10
	return construction, extra - construction
}
