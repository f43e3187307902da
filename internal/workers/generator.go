// Population generation: builds the session's worker pool from the catalog.
package workers

import (
	"fmt"
	"math"
	"math/rand"
)

// GenConfig controls population generation.
type GenConfig struct {
	Seed               int64
	ConstructionTarget int
	OfficeTarget       int
	Catalog            *Catalog // nil means DefaultCatalog
}

// DefaultGenConfig returns the standard population size.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:               42,
		ConstructionTarget: 240,
		OfficeTarget:       120,
	}
}

// idPrefix is the per-category worker ID prefix.
var idPrefix = map[Category]string{
	CategoryConstruction: "con",
	CategoryOffice:       "off",
}

// Generate builds a population of exactly ConstructionTarget construction
// workers followed by OfficeTarget office workers. The same config always
// yields the same population.
func Generate(cfg GenConfig) *Population {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	targets := map[Category]int{
		CategoryConstruction: cfg.ConstructionTarget,
		CategoryOffice:       cfg.OfficeTarget,
	}

	pop := NewPopulation(nil)
	for _, cat := range Categories {
		professions := catalog.ForCategory(cat)
		if len(professions) == 0 {
			continue
		}
		for i := 1; i <= targets[cat]; i++ {
			id := fmt.Sprintf("%s_%04d", idPrefix[cat], i)
			prof := professions[rng.Intn(len(professions))]
			pop.Add(spawnWorker(rng, id, prof))
		}
	}
	return pop
}

func spawnWorker(rng *rand.Rand, id string, prof ProfessionConfig) *Worker {
	level := appearanceLevel(rng)
	if level < prof.MinAppearanceLevel {
		level = prof.MinAppearanceLevel
	}

	salary := salaryFor(rng, prof, level)
	hireCost := salary + int64(rng.Intn(501))
	upgradeCost := int64(math.Round(0.7*float64(salary))) + int64(rng.Intn(301))

	skill := clampLevel(level + rng.Intn(3) - 1)

	return &Worker{
		ID:              id,
		FirstName:       firstNames[rng.Intn(len(firstNames))],
		LastName:        lastNames[rng.Intn(len(lastNames))],
		Category:        prof.Category,
		ProfessionID:    prof.ID,
		ProfessionName:  prof.DisplayName,
		AppearanceLevel: level,
		SkillLevel:      skill,
		Salary:          salary,
		HireCost:        hireCost,
		UpgradeCost:     upgradeCost,
	}
}

// appearanceLevel draws from the skewed level distribution:
// 40% in 1–3, 35% in 3–6, 20% in 6–8, 5% in 9–10.
func appearanceLevel(rng *rand.Rand) int {
	r := rng.Float64()
	var lo, hi int
	switch {
	case r < 0.40:
		lo, hi = 1, 3
	case r < 0.75:
		lo, hi = 3, 6
	case r < 0.95:
		lo, hi = 6, 8
	default:
		lo, hi = 9, 10
	}
	return clampLevel(lo + rng.Intn(hi-lo+1))
}

// salaryFor interpolates between the profession's salary bounds by level and
// applies a ±10% perturbation.
func salaryFor(rng *rand.Rand, prof ProfessionConfig, level int) int64 {
	t := float64(level-1) / float64(MaxLevel-1)
	base := float64(prof.MinSalary) + t*float64(prof.MaxSalary-prof.MinSalary)
	factor := 0.9 + rng.Float64()*0.2
	return int64(math.Round(base * factor))
}

func clampLevel(l int) int {
	if l < MinLevel {
		return MinLevel
	}
	if l > MaxLevel {
		return MaxLevel
	}
	return l
}
