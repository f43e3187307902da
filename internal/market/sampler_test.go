package market

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/talgya/laborsim/internal/workers"
)

type noLimits struct{}

func (noLimits) IsProfessionLimited(string) bool { return false }

type limited map[string]bool

func (l limited) IsProfessionLimited(name string) bool { return l[name] }

func testSampler() *Sampler {
	return NewSampler(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestQuotaFor(t *testing.T) {
	q := QuotaFor(1)
	if q != (Quota{Total: 10, Construction: 6, Office: 4}) {
		t.Errorf("level 1 quota = %+v", q)
	}
	if QuotaFor(0) != q || QuotaFor(99) != q {
		t.Error("unknown levels should fall back to level 1")
	}
	for level := 1; level <= 10; level++ {
		q := QuotaFor(level)
		if q.Construction+q.Office != q.Total {
			t.Errorf("level %d quota does not add up: %+v", level, q)
		}
	}
}

func TestExtraSlots(t *testing.T) {
	tests := []struct {
		level, con, off int
	}{
		{0, 0, 0},
		{-5, 0, 0},
		{1, 0, 0},
		{2, 2, 0},
		{3, 3, 1},
		{4, 4, 2},
		{6, 6, 4},
		{10, 11, 7},
		{11, 0, 0},
		{1 << 62, 0, 0},
	}
	for _, tt := range tests {
		con, off := ExtraSlots(tt.level)
		if con != tt.con || off != tt.off {
			t.Errorf("ExtraSlots(%d) = %d/%d, want %d/%d", tt.level, con, off, tt.con, tt.off)
		}
	}
}

func TestSample_Level1Scenario(t *testing.T) {
	pop := workers.Generate(workers.DefaultGenConfig())
	got := testSampler().SampleForLevel(rand.New(rand.NewSource(1)), 1, pop, noLimits{})

	counts := map[workers.Category]int{}
	for _, w := range got {
		counts[w.Category]++
	}
	if len(got) > 10 {
		t.Errorf("sample size %d > 10", len(got))
	}
	if counts[workers.CategoryConstruction] > 6 {
		t.Errorf("construction %d > 6", counts[workers.CategoryConstruction])
	}
	if counts[workers.CategoryOffice] > 4 {
		t.Errorf("office %d > 4", counts[workers.CategoryOffice])
	}
}

func TestSample_PropertiesAllLevels(t *testing.T) {
	pop := workers.Generate(workers.DefaultGenConfig())
	// Hire and rest some workers so exclusion is exercised.
	for i, w := range pop.Workers {
		switch i % 7 {
		case 0:
			w.IsHired = true
		case 1:
			w.RecentlyFired = true
			w.RestDaysLeft = 5
		}
	}

	rng := rand.New(rand.NewSource(99))
	s := testSampler()
	for level := 1; level <= 10; level++ {
		got := s.SampleForLevel(rng, level, pop, noLimits{})
		quota := QuotaFor(level)
		extraCon, extraOff := ExtraSlots(level)

		seen := map[string]bool{}
		perProf := map[string]int{}
		counts := map[workers.Category]int{}
		for _, w := range got {
			if w.IsHired || w.RecentlyFired {
				t.Errorf("level %d: ineligible worker %s in sample", level, w.ID)
			}
			if seen[w.ID] {
				t.Errorf("level %d: duplicate %s", level, w.ID)
			}
			seen[w.ID] = true
			perProf[w.ProfessionID]++
			counts[w.Category]++
		}
		for prof, n := range perProf {
			if n > MaxPerProfession {
				t.Errorf("level %d: profession %s appears %d times", level, prof, n)
			}
		}
		if counts[workers.CategoryConstruction] > quota.Construction+extraCon {
			t.Errorf("level %d: construction %d over quota", level, counts[workers.CategoryConstruction])
		}
		if counts[workers.CategoryOffice] > quota.Office+extraOff {
			t.Errorf("level %d: office %d over quota", level, counts[workers.CategoryOffice])
		}
		if len(got) > quota.Total+extraCon+extraOff {
			t.Errorf("level %d: size %d over target", level, len(got))
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	pop := workers.Generate(workers.DefaultGenConfig())
	s := testSampler()
	a := s.SampleForLevel(rand.New(rand.NewSource(5)), 4, pop, noLimits{})
	b := s.SampleForLevel(rand.New(rand.NewSource(5)), 4, pop, noLimits{})
	if len(a) != len(b) {
		t.Fatalf("len %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("position %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestSample_ExcludesLimitedProfessions(t *testing.T) {
	pop := workers.Generate(workers.DefaultGenConfig())
	got := testSampler().SampleForLevel(rand.New(rand.NewSource(2)), 5, pop, limited{"Mason": true, "Accountant": true})
	for _, w := range got {
		if w.ProfessionName == "Mason" || w.ProfessionName == "Accountant" {
			t.Errorf("limited profession %s sampled (%s)", w.ProfessionName, w.ID)
		}
	}
}

func TestSample_NeverExceedsEligiblePool(t *testing.T) {
	var list []*workers.Worker
	for i := 1; i <= 3; i++ {
		list = append(list, &workers.Worker{
			ID:              fmt.Sprintf("con_%04d", i),
			Category:        workers.CategoryConstruction,
			ProfessionID:    fmt.Sprintf("p%d", i),
			ProfessionName:  fmt.Sprintf("P%d", i),
			AppearanceLevel: 1,
		})
	}
	list[2].IsHired = true
	pop := workers.NewPopulation(list)

	got := testSampler().SampleForLevel(rand.New(rand.NewSource(1)), 1, pop, noLimits{})
	if len(got) != 2 {
		t.Errorf("sample size = %d, want 2 (eligible pool)", len(got))
	}
}

func TestSample_ProfessionCapAcrossPools(t *testing.T) {
	var list []*workers.Worker
	for i := 1; i <= 20; i++ {
		list = append(list, &workers.Worker{
			ID:              fmt.Sprintf("con_%04d", i),
			Category:        workers.CategoryConstruction,
			ProfessionID:    "mason",
			ProfessionName:  "Mason",
			AppearanceLevel: 1 + i%3,
		})
	}
	pop := workers.NewPopulation(list)
	got := testSampler().SampleForLevel(rand.New(rand.NewSource(1)), 3, pop, noLimits{})
	if len(got) != MaxPerProfession {
		t.Errorf("got %d masons, want %d", len(got), MaxPerProfession)
	}
}

func TestSample_ExtraSlotsPreferHigherLevels(t *testing.T) {
	var list []*workers.Worker
	n := 0
	for level := 1; level <= 3; level++ {
		for i := 0; i < 3; i++ {
			n++
			list = append(list, &workers.Worker{
				ID:              fmt.Sprintf("con_%04d", n),
				Category:        workers.CategoryConstruction,
				ProfessionID:    fmt.Sprintf("p%d", n),
				ProfessionName:  fmt.Sprintf("P%d", n),
				AppearanceLevel: level,
			})
		}
	}
	pop := workers.NewPopulation(list)

	// Level 4 has no main pool here; its 4 extra construction slots come
	// first, and must take all three level-3 workers before a level 2.
	for seed := int64(1); seed <= 20; seed++ {
		got := testSampler().SampleForLevel(rand.New(rand.NewSource(seed)), 4, pop, noLimits{})
		if len(got) != len(list) {
			t.Fatalf("seed %d: size = %d, want %d", seed, len(got), len(list))
		}
		for i, w := range got[:3] {
			if w.AppearanceLevel != 3 {
				t.Errorf("seed %d: extra pick %d is level %d, want 3", seed, i, w.AppearanceLevel)
			}
		}
		if got[3].AppearanceLevel != 2 {
			t.Errorf("seed %d: fourth extra pick is level %d, want 2", seed, got[3].AppearanceLevel)
		}
	}
}

func TestSample_UnknownLevelActsLikeLevelOne(t *testing.T) {
	pop := workers.Generate(workers.GenConfig{Seed: 9, ConstructionTarget: 120, OfficeTarget: 60})
	for _, level := range []int{0, -3, 11, 1000, 1 << 62} {
		got := testSampler().SampleForLevel(rand.New(rand.NewSource(2)), level, pop, noLimits{})
		if len(got) == 0 || len(got) > 10 {
			t.Errorf("level %d: size = %d, want 1..10", level, len(got))
		}
	}
}
