package brigade

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/talgya/laborsim/internal/workers"
)

func testRegistry(t *testing.T) (*Registry, *workers.Population) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	pop := workers.NewPopulation([]*workers.Worker{
		{ID: "con_0001", Category: workers.CategoryConstruction, IsHired: true},
		{ID: "con_0002", Category: workers.CategoryConstruction, IsHired: true},
		{ID: "con_0003", Category: workers.CategoryConstruction, IsHired: true},
	})
	reg := NewRegistry(pop, logger)
	reg.AddBrigade(&Brigade{ID: "br1", Name: "North"})
	reg.AddBrigade(&Brigade{ID: "br2", Name: "South"})
	reg.AddForeman(&Foreman{ID: "fm1", IsHired: true})
	return reg, pop
}

func TestRegistry_ActivateDeactivate(t *testing.T) {
	reg, pop := testRegistry(t)
	if err := reg.AddMember("br1", "con_0001"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	w := pop.Get("con_0001")
	if !w.IsBusy {
		t.Error("worker placed in brigade should be busy")
	}

	if err := reg.Activate("br1", "order_5"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	b, _ := reg.Get("br1")
	if !b.IsWorking || b.CurrentOrderID != "order_5" {
		t.Errorf("after activate: %+v", b)
	}
	if !reg.IsWorkerInActiveBrigade("con_0001") {
		t.Error("worker should be in active brigade")
	}

	if err := reg.Deactivate("br1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if b.IsWorking || b.CurrentOrderID != "" {
		t.Errorf("after deactivate: %+v", b)
	}
	if w.IsBusy {
		t.Error("worker should not be busy after deactivate")
	}
	if reg.IsWorkerInActiveBrigade("con_0001") {
		t.Error("worker should not be in active brigade")
	}
}

func TestRegistry_DeactivateIdempotent(t *testing.T) {
	reg, _ := testRegistry(t)
	reg.AddMember("br1", "con_0001")
	reg.Activate("br1", "order_1")

	for i := 0; i < 2; i++ {
		if err := reg.Deactivate("br1"); err != nil {
			t.Fatalf("deactivate #%d: %v", i+1, err)
		}
		b, _ := reg.Get("br1")
		if b.IsWorking || b.CurrentOrderID != "" {
			t.Errorf("deactivate #%d: brigade not idle: %+v", i+1, b)
		}
	}
}

func TestRegistry_ReactivateOverwritesOrder(t *testing.T) {
	reg, _ := testRegistry(t)
	reg.Activate("br1", "order_1")
	reg.Activate("br1", "order_2")
	b, _ := reg.Get("br1")
	if !b.IsWorking || b.CurrentOrderID != "order_2" {
		t.Errorf("expected working on order_2, got %+v", b)
	}
}

func TestRegistry_UnknownBrigade(t *testing.T) {
	reg, _ := testRegistry(t)
	if err := reg.Activate("nope", "o"); !errors.Is(err, ErrBrigadeNotFound) {
		t.Errorf("activate: got %v", err)
	}
	if err := reg.Deactivate("nope"); !errors.Is(err, ErrBrigadeNotFound) {
		t.Errorf("deactivate: got %v", err)
	}
	if err := reg.AddMember("nope", "con_0001"); !errors.Is(err, ErrBrigadeNotFound) {
		t.Errorf("add member: got %v", err)
	}
}

func TestRegistry_SingleMembership(t *testing.T) {
	reg, _ := testRegistry(t)
	if err := reg.AddMember("br1", "con_0002"); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddMember("br2", "con_0002"); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second brigade: got %v, want ErrAlreadyMember", err)
	}
	if b := reg.BrigadeOf("con_0002"); b == nil || b.ID != "br1" {
		t.Errorf("BrigadeOf = %v", b)
	}
}

func TestRegistry_RemoveWorker(t *testing.T) {
	reg, _ := testRegistry(t)
	reg.AddMember("br1", "con_0001")
	reg.AddMember("br1", "con_0002")
	reg.AddMember("br1", "con_0003")

	if !reg.RemoveWorker("con_0002") {
		t.Fatal("expected removal")
	}
	b, _ := reg.Get("br1")
	want := []string{"con_0001", "con_0003"}
	if len(b.MemberIDs) != len(want) {
		t.Fatalf("members = %v, want %v", b.MemberIDs, want)
	}
	for i := range want {
		if b.MemberIDs[i] != want[i] {
			t.Errorf("members = %v, want %v", b.MemberIDs, want)
		}
	}
	if reg.RemoveWorker("con_0002") {
		t.Error("second removal should report false")
	}
}

func TestRegistry_ForemanActive(t *testing.T) {
	reg, _ := testRegistry(t)
	if err := reg.AssignBrigade("fm1", "br2"); err != nil {
		t.Fatal(err)
	}
	if reg.IsForemanActive("fm1") {
		t.Error("foreman with idle brigades should be inactive")
	}
	reg.Activate("br1", "o1")
	if reg.IsForemanActive("fm1") {
		t.Error("br1 is not supervised by fm1")
	}
	reg.Activate("br2", "o2")
	if !reg.IsForemanActive("fm1") {
		t.Error("foreman should be active")
	}
	if reg.IsForemanActive("ghost") {
		t.Error("unknown foreman should be inactive")
	}
	if err := reg.AssignBrigade("ghost", "br1"); !errors.Is(err, ErrForemanNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestRegistry_DuplicateForemanPanics(t *testing.T) {
	reg, _ := testRegistry(t)
	defer func() {
		if recover() == nil {
			t.Error("duplicate foreman id did not panic")
		}
		if len(reg.Foremen()) != 1 {
			t.Errorf("foremen = %d, want 1", len(reg.Foremen()))
		}
	}()
	reg.AddForeman(&Foreman{ID: "fm1"})
}
