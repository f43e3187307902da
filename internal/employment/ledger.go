// Package employment owns hire and fire transitions, the post-dismissal rest
// period and the headcount limits checked before a hire.
package employment

import (
	"fmt"
	"log/slog"

	"github.com/talgya/laborsim/internal/brigade"
	"github.com/talgya/laborsim/internal/workers"
)

// DefaultRestDays is the cooldown after a dismissal.
const DefaultRestDays = 30

// Funds is the treasury the ledger pays hire and upgrade costs from.
type Funds interface {
	Balance() int64
	Spend(amount int64) error
}

// Progress supplies the player's level for headcount caps.
type Progress interface {
	Level() int
}

// Ledger applies employment changes to the population.
type Ledger struct {
	pop      *workers.Population
	brigades *brigade.Registry
	funds    Funds
	progress Progress
	logger   *slog.Logger

	RestDays int
}

// NewLedger wires a ledger to its collaborators.
func NewLedger(pop *workers.Population, brigades *brigade.Registry, funds Funds, progress Progress, logger *slog.Logger) *Ledger {
	return &Ledger{
		pop:      pop,
		brigades: brigades,
		funds:    funds,
		progress: progress,
		logger:   logger.With("component", "ledger"),
		RestDays: DefaultRestDays,
	}
}

// Hire employs a worker and pays their hire cost. A non-empty brigadeID places
// a construction worker into that brigade; it is ignored for office workers.
// Every precondition is checked before anything changes.
func (l *Ledger) Hire(workerID, brigadeID string) error {
	w := l.pop.Get(workerID)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	if w.IsHired {
		return fmt.Errorf("%w: %s", ErrAlreadyHired, workerID)
	}
	if w.RecentlyFired {
		return fmt.Errorf("%w: %s has %d days left", ErrWorkerResting, workerID, w.RestDaysLeft)
	}
	if l.IsProfessionLimited(w.ProfessionName) {
		return fmt.Errorf("%w: %s", ErrProfessionLimitReached, w.ProfessionName)
	}
	if l.IsCategoryAtLimit(w.Category, l.progress.Level()) {
		return fmt.Errorf("%w: %s", ErrCategoryLimitReached, w.Category)
	}

	placeInBrigade := brigadeID != "" && w.Category == workers.CategoryConstruction
	if placeInBrigade {
		if err := l.brigades.CanAdd(brigadeID, workerID); err != nil {
			return err
		}
	} else if brigadeID != "" {
		l.logger.Debug("brigade ignored for non-construction hire", "worker", workerID, "brigade", brigadeID)
	}

	if w.HireCost > l.funds.Balance() {
		return fmt.Errorf("%w: hire cost %d, balance %d", ErrInsufficientFunds, w.HireCost, l.funds.Balance())
	}
	if err := l.funds.Spend(w.HireCost); err != nil {
		return fmt.Errorf("pay hire cost: %w", err)
	}

	if placeInBrigade {
		// Validated above; cannot fail.
		if err := l.brigades.AddMember(brigadeID, workerID); err != nil {
			panic(fmt.Sprintf("employment: brigade add after validation: %v", err))
		}
	}
	w.IsHired = true

	l.logger.Info("worker hired",
		"worker", workerID,
		"profession", w.ProfessionName,
		"cost", w.HireCost,
		"brigade", brigadeID,
	)
	return nil
}

// Fire dismisses a hired worker, starts their rest period and removes them
// from every brigade.
func (l *Ledger) Fire(workerID string) error {
	w := l.pop.Get(workerID)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	if !w.IsHired {
		return fmt.Errorf("%w: %s", ErrNotHired, workerID)
	}

	wasWorking := l.brigades.IsWorkerInActiveBrigade(workerID)
	l.brigades.RemoveWorker(workerID)

	w.IsHired = false
	w.IsBusy = false
	w.RecentlyFired = true
	w.RestDaysLeft = l.restDays()

	l.logger.Info("worker fired", "worker", workerID, "rest_days", w.RestDaysLeft, "was_working", wasWorking)
	return nil
}

func (l *Ledger) restDays() int {
	if l.RestDays < 1 {
		return 1
	}
	return l.RestDays
}

// AdvanceRestDays ticks one day off every rest period.
func (l *Ledger) AdvanceRestDays() {
	for _, w := range l.pop.Workers {
		if !w.RecentlyFired {
			continue
		}
		if w.RestDaysLeft > 0 {
			w.RestDaysLeft--
		}
		if w.RestDaysLeft == 0 {
			w.RecentlyFired = false
			l.logger.Debug("rest period over", "worker", w.ID)
		}
	}
}

// Upgrade pays a hired worker's upgrade cost to raise their skill by one.
func (l *Ledger) Upgrade(workerID string) error {
	w := l.pop.Get(workerID)
	if w == nil {
		return fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	if !w.IsHired {
		return fmt.Errorf("%w: %s", ErrNotHired, workerID)
	}
	if w.SkillLevel >= workers.MaxLevel {
		return fmt.Errorf("%w: %s", ErrMaxSkill, workerID)
	}
	if err := l.funds.Spend(w.UpgradeCost); err != nil {
		return fmt.Errorf("pay upgrade cost: %w", err)
	}
	w.SkillLevel++
	l.logger.Info("worker upgraded", "worker", workerID, "skill", w.SkillLevel, "cost", w.UpgradeCost)
	return nil
}

// IsProfessionLimited reports whether the profession has reached its hire cap.
func (l *Ledger) IsProfessionLimited(professionName string) bool {
	limit, ok := ProfessionCaps[professionName]
	if !ok {
		return false
	}
	hired := 0
	for _, w := range l.pop.Workers {
		if w.IsHired && w.ProfessionName == professionName {
			hired++
		}
	}
	return hired >= limit
}

// IsCategoryAtLimit reports whether the category's headcount has reached the
// cap for the given level.
func (l *Ledger) IsCategoryAtLimit(cat workers.Category, level int) bool {
	return l.HiredCount(cat) >= CategoryCapsFor(level).For(cat)
}

// HiredCount returns the number of hired workers in a category.
func (l *Ledger) HiredCount(cat workers.Category) int {
	n := 0
	for _, w := range l.pop.Workers {
		if w.IsHired && w.Category == cat {
			n++
		}
	}
	return n
}

// Payroll returns the monthly salary total of every hired worker.
func (l *Ledger) Payroll() int64 {
	var total int64
	for _, w := range l.pop.Workers {
		if w.IsHired {
			total += w.Salary
		}
	}
	return total
}
