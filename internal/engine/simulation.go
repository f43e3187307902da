// Simulation is the labor market of one game session. It owns the population,
// brigades and ledger and is the only entry point the UI and API layers use.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/laborsim/internal/brigade"
	"github.com/talgya/laborsim/internal/economy"
	"github.com/talgya/laborsim/internal/employment"
	"github.com/talgya/laborsim/internal/market"
	"github.com/talgya/laborsim/internal/workers"
)

// Market refresh cadence in months.
const (
	MinRebuildMonths = 1
	MaxRebuildMonths = 3
)

// Event is a notable occurrence in the labor market.
type Event struct {
	Day         uint64 `json:"day" db:"day"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "hire", "fire", "brigade", "market"
}

// State is everything needed to build or restore a session.
type State struct {
	Seed             int64
	SaveID           string
	Population       *workers.Population
	Brigades         []*brigade.Brigade
	Foremen          []*brigade.Foreman
	Balance          int64
	Level            int
	RestDays         int
	Day              uint64
	NextRebuildMonth uint64
}

// NewGameConfig describes a fresh session.
type NewGameConfig struct {
	Gen           workers.GenConfig
	StartingFunds int64
	StartLevel    int
	RestDays      int
	Brigades      []*brigade.Brigade
	Foremen       []*brigade.Foreman
}

// GenerateWorkerPopulation builds the session population from a seed.
func GenerateWorkerPopulation(cfg workers.GenConfig) *workers.Population {
	pop := workers.Generate(cfg)
	counts := pop.CountByCategory()
	slog.Info("worker population generated",
		"seed", cfg.Seed,
		"construction", counts[workers.CategoryConstruction],
		"office", counts[workers.CategoryOffice],
	)
	return pop
}

// NewGameState generates a fresh session state.
func NewGameState(cfg NewGameConfig) *State {
	return &State{
		Seed:             cfg.Gen.Seed,
		SaveID:           uuid.NewString(),
		Population:       GenerateWorkerPopulation(cfg.Gen),
		Brigades:         cfg.Brigades,
		Foremen:          cfg.Foremen,
		Balance:          cfg.StartingFunds,
		Level:            cfg.StartLevel,
		RestDays:         cfg.RestDays,
		NextRebuildMonth: MinRebuildMonths,
	}
}

// Status summarizes the session.
type Status struct {
	SaveID            string `json:"save_id"`
	Day               uint64 `json:"day"`
	Date              string `json:"date"`
	Level             int    `json:"level"`
	Balance           int64  `json:"balance"`
	Payroll           int64  `json:"payroll"`
	Workers           int    `json:"workers"`
	HiredConstruction int    `json:"hired_construction"`
	HiredOffice       int    `json:"hired_office"`
	MarketSize        int    `json:"market_size"`
	NextRebuildMonth  uint64 `json:"next_rebuild_month"`
}

// Simulation guards every table with one mutex: the calendar loop and the API
// both read-modify-write workers and brigades.
type Simulation struct {
	mu sync.Mutex

	seed     int64
	saveID   string
	pop      *workers.Population
	brigades *brigade.Registry
	ledger   *employment.Ledger
	wallet   *economy.Wallet
	progress *economy.Progress
	sampler  *market.Sampler
	rng      *rand.Rand
	logger   *slog.Logger

	view             []*workers.Worker
	day              uint64
	nextRebuildMonth uint64
	events           []Event
	pending          []Event // not yet persisted
}

// NewSimulation wires a session from a fresh or restored state and samples
// the initial market.
func NewSimulation(st *State, logger *slog.Logger) *Simulation {
	reg := brigade.NewRegistry(st.Population, logger)
	for _, b := range st.Brigades {
		reg.AddBrigade(b)
	}
	for _, f := range st.Foremen {
		reg.AddForeman(f)
	}

	wallet := economy.NewWallet(st.Balance)
	progress := economy.NewProgress(st.Level)
	ledger := employment.NewLedger(st.Population, reg, wallet, progress, logger)
	if st.RestDays > 0 {
		ledger.RestDays = st.RestDays
	}

	s := &Simulation{
		seed:             st.Seed,
		saveID:           st.SaveID,
		pop:              st.Population,
		brigades:         reg,
		ledger:           ledger,
		wallet:           wallet,
		progress:         progress,
		sampler:          market.NewSampler(logger),
		rng:              rand.New(rand.NewSource(st.Seed + 100 + int64(st.Day))),
		logger:           logger.With("component", "simulation"),
		day:              st.Day,
		nextRebuildMonth: st.NextRebuildMonth,
	}
	s.rebuildLocked()
	return s
}

// GetWorkersForLevel samples a market view for any level without replacing
// the session's current market. Previews use their own rng, seeded from the
// session seed, level and day, so they never shift the session's draws.
func (s *Simulation) GetWorkersForLevel(level int) []workers.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	rng := rand.New(rand.NewSource(s.seed + 1000*int64(level) + int64(s.day)))
	return copyWorkers(s.sampler.SampleForLevel(rng, level, s.pop, s.ledger))
}

// Market returns the current market view at the player's level. Workers hired
// since the last rebuild are left out.
func (s *Simulation) Market() []workers.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyWorkers(s.view)
}

// RebuildMarket resamples the current market.
func (s *Simulation) RebuildMarket() []workers.Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked()
	return copyWorkers(s.view)
}

func (s *Simulation) rebuildLocked() {
	level := s.progress.Level()
	s.view = s.sampler.SampleForLevel(s.rng, level, s.pop, s.ledger)
	s.record("market", fmt.Sprintf("market rebuilt at level %d with %d workers", level, len(s.view)))
}

// HireWorker hires a worker, optionally into a brigade.
func (s *Simulation) HireWorker(workerID, brigadeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Hire(workerID, brigadeID); err != nil {
		return err
	}
	s.dropFromView(workerID)
	w := s.pop.Get(workerID)
	s.record("hire", fmt.Sprintf("%s hired as %s", w.FullName(), w.ProfessionName))
	return nil
}

// FireWorker dismisses a worker.
func (s *Simulation) FireWorker(workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Fire(workerID); err != nil {
		return err
	}
	w := s.pop.Get(workerID)
	s.record("fire", fmt.Sprintf("%s dismissed, resting %d days", w.FullName(), w.RestDaysLeft))
	return nil
}

// UpgradeWorker raises a hired worker's skill.
func (s *Simulation) UpgradeWorker(workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Upgrade(workerID)
}

// ActivateBrigade sets a brigade working on an order.
func (s *Simulation) ActivateBrigade(brigadeID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.brigades.Activate(brigadeID, orderID); err != nil {
		return err
	}
	s.record("brigade", fmt.Sprintf("brigade %s started order %s", brigadeID, orderID))
	return nil
}

// DeactivateBrigade returns a brigade to idle.
func (s *Simulation) DeactivateBrigade(brigadeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brigades.Deactivate(brigadeID)
}

// IsWorkerInActiveBrigade reports whether the worker is on a working brigade.
func (s *Simulation) IsWorkerInActiveBrigade(workerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brigades.IsWorkerInActiveBrigade(workerID)
}

// IsForemanActive reports whether a foreman supervises a working brigade.
func (s *Simulation) IsForemanActive(foremanID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brigades.IsForemanActive(foremanID)
}

// IsProfessionLimited reports whether a profession is at its hire cap.
func (s *Simulation) IsProfessionLimited(professionName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsProfessionLimited(professionName)
}

// IsCategoryAtLimit checks the category headcount against the player's level.
func (s *Simulation) IsCategoryAtLimit(cat workers.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsCategoryAtLimit(cat, s.progress.Level())
}

// AdvanceRestDays ticks one day off every rest period.
func (s *Simulation) AdvanceRestDays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.AdvanceRestDays()
}

// SetLevel changes the player level and rebuilds the market for it.
func (s *Simulation) SetLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.SetLevel(level)
	s.rebuildLocked()
}

// Worker returns a copy of a worker record.
func (s *Simulation) Worker(workerID string) (workers.Worker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.pop.Get(workerID)
	if w == nil {
		return workers.Worker{}, false
	}
	return *w, true
}

// Brigade returns a copy of a brigade.
func (s *Simulation) Brigade(brigadeID string) (brigade.Brigade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brigades.Get(brigadeID)
	if !ok {
		return brigade.Brigade{}, false
	}
	return copyBrigade(b), true
}

// TickDay runs once per simulated day.
func (s *Simulation) TickDay(day uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = day
	s.ledger.AdvanceRestDays()
}

// TickMonth rebuilds the market when its scheduled month arrives and picks
// the next rebuild 1–3 months out.
func (s *Simulation) TickMonth(month uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if month < s.nextRebuildMonth {
		return
	}
	s.rebuildLocked()
	s.nextRebuildMonth = month + uint64(MinRebuildMonths+s.rng.Intn(MaxRebuildMonths-MinRebuildMonths+1))
	s.logger.Info("monthly market refresh", "month", month, "next", s.nextRebuildMonth, "size", len(s.view))
}

// Status returns a summary of the session.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SaveID:            s.saveID,
		Day:               s.day,
		Date:              SimDate(s.day),
		Level:             s.progress.Level(),
		Balance:           s.wallet.Balance(),
		Payroll:           s.ledger.Payroll(),
		Workers:           s.pop.Len(),
		HiredConstruction: s.ledger.HiredCount(workers.CategoryConstruction),
		HiredOffice:       s.ledger.HiredCount(workers.CategoryOffice),
		MarketSize:        len(s.view),
		NextRebuildMonth:  s.nextRebuildMonth,
	}
}

// Events returns up to limit of the most recent events, oldest first.
func (s *Simulation) Events(limit int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// DrainEvents returns the events recorded since the previous drain.
func (s *Simulation) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Checkpoint returns a snapshot and the pending events taken together, and
// clears the pending list.
func (s *Simulation) Checkpoint() (*State, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.pending
	s.pending = nil
	return s.snapshotLocked(), events
}

// RequeueEvents puts events from a failed save back ahead of newer ones.
func (s *Simulation) RequeueEvents(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(append([]Event(nil), events...), s.pending...)
}

// Snapshot deep-copies the session for saving.
func (s *Simulation) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulation) snapshotLocked() *State {
	list := copyWorkers(s.pop.Workers)
	ptrs := make([]*workers.Worker, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}

	brigades := make([]*brigade.Brigade, 0, len(s.brigades.Brigades()))
	for _, b := range s.brigades.Brigades() {
		c := copyBrigade(b)
		brigades = append(brigades, &c)
	}
	foremen := make([]*brigade.Foreman, 0, len(s.brigades.Foremen()))
	for _, f := range s.brigades.Foremen() {
		c := *f
		c.BrigadeIDs = append([]string(nil), f.BrigadeIDs...)
		foremen = append(foremen, &c)
	}

	return &State{
		Seed:             s.seed,
		SaveID:           s.saveID,
		Population:       workers.NewPopulation(ptrs),
		Brigades:         brigades,
		Foremen:          foremen,
		Balance:          s.wallet.Balance(),
		Level:            s.progress.Level(),
		RestDays:         s.ledger.RestDays,
		Day:              s.day,
		NextRebuildMonth: s.nextRebuildMonth,
	}
}

func (s *Simulation) dropFromView(workerID string) {
	kept := s.view[:0]
	for _, w := range s.view {
		if w.ID != workerID {
			kept = append(kept, w)
		}
	}
	s.view = kept
}

func (s *Simulation) record(category, desc string) {
	e := Event{Day: s.day, Description: desc, Category: category}
	s.events = append(s.events, e)
	s.pending = append(s.pending, e)
	// Keep the last 1000.
	if len(s.events) > 1000 {
		s.events = s.events[len(s.events)-1000:]
	}
}

func copyWorkers(list []*workers.Worker) []workers.Worker {
	out := make([]workers.Worker, len(list))
	for i, w := range list {
		out[i] = *w
	}
	return out
}

func copyBrigade(b *brigade.Brigade) brigade.Brigade {
	c := *b
	c.MemberIDs = append([]string(nil), b.MemberIDs...)
	return c
}
