// Package market builds the set of workers offered for hire at a player level.
package market

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/talgya/laborsim/internal/workers"
)

// MaxPerProfession caps how many workers of one profession appear in a sample.
const MaxPerProfession = 2

// Limits reports which professions are at their hire cap.
type Limits interface {
	IsProfessionLimited(professionName string) bool
}

// Sampler draws market views from the population.
type Sampler struct {
	logger *slog.Logger
}

// NewSampler creates a sampler.
func NewSampler(logger *slog.Logger) *Sampler {
	return &Sampler{logger: logger.With("component", "market")}
}

// selection accumulates a sample under the per-profession and per-category caps.
type selection struct {
	picked     []*workers.Worker
	chosen     map[string]bool
	perProf    map[string]int
	perCat     map[workers.Category]int
	catCeiling map[workers.Category]int
}

func (s *selection) admits(w *workers.Worker) bool {
	return !s.chosen[w.ID] &&
		s.perProf[w.ProfessionID] < MaxPerProfession &&
		s.perCat[w.Category] < s.catCeiling[w.Category]
}

func (s *selection) add(w *workers.Worker) {
	s.picked = append(s.picked, w)
	s.chosen[w.ID] = true
	s.perProf[w.ProfessionID]++
	s.perCat[w.Category]++
}

// draw takes up to want workers from the candidates in their given order,
// skipping any the caps reject. Each candidate is considered once.
func (s *selection) draw(candidates []*workers.Worker, want int) int {
	taken := 0
	for _, w := range candidates {
		if taken >= want {
			break
		}
		if !s.admits(w) {
			continue
		}
		s.add(w)
		taken++
	}
	return taken
}

// SampleForLevel returns the workers shown in the market at the given level,
// in selection order. All randomness comes from rng. Levels outside 1..10
// sample as level 1.
func (s *Sampler) SampleForLevel(rng *rand.Rand, level int, pop *workers.Population, limits Limits) []*workers.Worker {
	if !KnownLevel(level) {
		s.logger.Debug("unknown level, sampling as level 1", "level", level)
		level = workers.MinLevel
	}
	quota := QuotaFor(level)
	extraCon, extraOff := ExtraSlots(level)
	target := quota.Total + extraCon + extraOff

	eligible := make([]*workers.Worker, 0, pop.Len())
	for _, w := range pop.Workers {
		if w.Available() && !limits.IsProfessionLimited(w.ProfessionName) {
			eligible = append(eligible, w)
		}
	}

	main := make(map[workers.Category][]*workers.Worker)
	lower := make(map[workers.Category][]*workers.Worker)
	for _, w := range eligible {
		switch {
		case w.AppearanceLevel == level:
			main[w.Category] = append(main[w.Category], w)
		case w.AppearanceLevel < level:
			lower[w.Category] = append(lower[w.Category], w)
		}
	}

	sel := &selection{
		chosen:  make(map[string]bool, target),
		perProf: make(map[string]int),
		perCat:  make(map[workers.Category]int),
		catCeiling: map[workers.Category]int{
			workers.CategoryConstruction: quota.Construction + extraCon,
			workers.CategoryOffice:       quota.Office + extraOff,
		},
	}

	for _, cat := range workers.Categories {
		pool := shuffled(rng, main[cat])
		got := sel.draw(pool, quota.For(cat))
		if got < quota.For(cat) {
			s.logger.Debug("main pool short", "level", level, "category", cat, "want", quota.For(cat), "got", got)
		}
	}

	extras := map[workers.Category]int{
		workers.CategoryConstruction: extraCon,
		workers.CategoryOffice:       extraOff,
	}
	for _, cat := range workers.Categories {
		if extras[cat] == 0 {
			continue
		}
		sel.draw(byLevelDesc(rng, lower[cat]), extras[cat])
	}

	if len(sel.picked) < target {
		before := len(sel.picked)
		sel.draw(shuffled(rng, eligible), target-len(sel.picked))
		s.logger.Debug("market topped up", "level", level, "added", len(sel.picked)-before)
	}

	s.logger.Debug("market sampled", "level", level, "size", len(sel.picked), "target", target)
	return sel.picked
}

// shuffled returns a Fisher–Yates shuffled copy.
func shuffled(rng *rand.Rand, list []*workers.Worker) []*workers.Worker {
	out := make([]*workers.Worker, len(list))
	copy(out, list)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// byLevelDesc orders candidates by appearance level, highest first, with a
// random order inside each level.
func byLevelDesc(rng *rand.Rand, list []*workers.Worker) []*workers.Worker {
	out := shuffled(rng, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppearanceLevel > out[j].AppearanceLevel
	})
	return out
}
