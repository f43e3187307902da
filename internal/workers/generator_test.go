package workers

import (
	"reflect"
	"strings"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	a := Generate(cfg)
	b := Generate(cfg)

	if a.Len() != b.Len() {
		t.Fatalf("len mismatch: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Workers {
		if !reflect.DeepEqual(*a.Workers[i], *b.Workers[i]) {
			t.Fatalf("worker %d differs:\n%+v\n%+v", i, *a.Workers[i], *b.Workers[i])
		}
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	cfg := DefaultGenConfig()
	a := Generate(cfg)
	cfg.Seed = 7
	b := Generate(cfg)

	same := 0
	for i := range a.Workers {
		if reflect.DeepEqual(*a.Workers[i], *b.Workers[i]) {
			same++
		}
	}
	if same == a.Len() {
		t.Error("different seeds produced identical populations")
	}
}

func TestGenerate_ExactTargets(t *testing.T) {
	tests := []struct {
		construction, office int
	}{
		{240, 120},
		{10, 3},
		{0, 5},
		{1, 0},
	}
	for _, tt := range tests {
		pop := Generate(GenConfig{Seed: 1, ConstructionTarget: tt.construction, OfficeTarget: tt.office})
		counts := pop.CountByCategory()
		if pop.Len() != tt.construction+tt.office {
			t.Errorf("targets %d/%d: total = %d", tt.construction, tt.office, pop.Len())
		}
		if counts[CategoryConstruction] != tt.construction {
			t.Errorf("construction = %d, want %d", counts[CategoryConstruction], tt.construction)
		}
		if counts[CategoryOffice] != tt.office {
			t.Errorf("office = %d, want %d", counts[CategoryOffice], tt.office)
		}
	}
}

func TestGenerate_FieldRanges(t *testing.T) {
	catalog := DefaultCatalog()
	pop := Generate(DefaultGenConfig())

	seen := make(map[string]bool)
	for _, w := range pop.Workers {
		if seen[w.ID] {
			t.Fatalf("duplicate id %s", w.ID)
		}
		seen[w.ID] = true

		prefix := "con_"
		if w.Category == CategoryOffice {
			prefix = "off_"
		}
		if !strings.HasPrefix(w.ID, prefix) || len(w.ID) != len(prefix)+4 {
			t.Errorf("id %q does not match %sNNNN", w.ID, prefix)
		}

		prof, ok := catalog.Get(w.ProfessionID)
		if !ok {
			t.Fatalf("unknown profession %q", w.ProfessionID)
		}
		if prof.Category != w.Category || prof.DisplayName != w.ProfessionName {
			t.Errorf("%s: profession %+v inconsistent with worker", w.ID, prof)
		}
		if w.AppearanceLevel < MinLevel || w.AppearanceLevel > MaxLevel {
			t.Errorf("%s: appearance level %d out of range", w.ID, w.AppearanceLevel)
		}
		if w.AppearanceLevel < prof.MinAppearanceLevel {
			t.Errorf("%s: level %d below profession minimum %d", w.ID, w.AppearanceLevel, prof.MinAppearanceLevel)
		}
		if w.SkillLevel < MinLevel || w.SkillLevel > MaxLevel {
			t.Errorf("%s: skill %d out of range", w.ID, w.SkillLevel)
		}

		lo := float64(prof.MinSalary) * 0.9
		hi := float64(prof.MaxSalary) * 1.1
		if float64(w.Salary) < lo-1 || float64(w.Salary) > hi+1 {
			t.Errorf("%s: salary %d outside [%.0f, %.0f]", w.ID, w.Salary, lo, hi)
		}
		if w.HireCost < w.Salary || w.HireCost > w.Salary+500 {
			t.Errorf("%s: hire cost %d not in salary+[0,500]", w.ID, w.HireCost)
		}
		if w.UpgradeCost < w.Salary*7/10-1 || w.UpgradeCost > w.Salary*7/10+301 {
			t.Errorf("%s: upgrade cost %d not near 0.7*salary", w.ID, w.UpgradeCost)
		}
		if w.IsHired || w.IsBusy || w.RecentlyFired || w.RestDaysLeft != 0 {
			t.Errorf("%s: fresh worker has employment state %+v", w.ID, *w)
		}
	}
}

func TestGenerate_LevelDistributionSkewsLow(t *testing.T) {
	pop := Generate(GenConfig{Seed: 3, ConstructionTarget: 2000, OfficeTarget: 0})
	low, high := 0, 0
	for _, w := range pop.Workers {
		if w.AppearanceLevel <= 3 {
			low++
		}
		if w.AppearanceLevel >= 9 {
			high++
		}
	}
	if low <= high*3 {
		t.Errorf("expected far more low-level workers than high: low=%d high=%d", low, high)
	}
	if high == 0 {
		t.Error("expected some level 9–10 workers")
	}
}

func TestPopulation_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate id")
		}
	}()
	NewPopulation([]*Worker{{ID: "con_0001"}, {ID: "con_0001"}})
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("marketing"); ok {
		t.Error("unknown category parsed")
	}
}
