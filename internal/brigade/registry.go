// Package brigade groups hired construction workers into brigades and tracks
// which brigades are working an order.
package brigade

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/laborsim/internal/workers"
)

var (
	ErrBrigadeNotFound = errors.New("brigade not found")
	ErrForemanNotFound = errors.New("foreman not found")
	ErrAlreadyMember   = errors.New("worker already belongs to a brigade")
)

// Brigade is a named crew. Members are worker IDs resolved through the population.
type Brigade struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MemberIDs      []string `json:"member_ids"`
	IsWorking      bool     `json:"is_working"`
	CurrentOrderID string   `json:"current_order_id,omitempty"`
}

// Foreman supervises one or more brigades.
type Foreman struct {
	ID         string   `json:"id"`
	IsHired    bool     `json:"is_hired"`
	BrigadeIDs []string `json:"brigade_ids"`
}

func (b *Brigade) hasMember(workerID string) bool {
	for _, id := range b.MemberIDs {
		if id == workerID {
			return true
		}
	}
	return false
}

// Registry owns brigade membership and working state.
type Registry struct {
	pop    *workers.Population
	logger *slog.Logger

	brigades    []*Brigade
	byID        map[string]*Brigade
	foremen     []*Foreman
	foremanByID map[string]*Foreman
}

// NewRegistry creates an empty registry over the given population.
func NewRegistry(pop *workers.Population, logger *slog.Logger) *Registry {
	return &Registry{
		pop:         pop,
		logger:      logger.With("component", "brigades"),
		byID:        make(map[string]*Brigade),
		foremanByID: make(map[string]*Foreman),
	}
}

// AddBrigade registers a brigade created elsewhere. Restored brigades keep
// their members and working state.
func (r *Registry) AddBrigade(b *Brigade) {
	if _, dup := r.byID[b.ID]; dup {
		panic(fmt.Sprintf("brigade: duplicate brigade id %q", b.ID))
	}
	r.brigades = append(r.brigades, b)
	r.byID[b.ID] = b
}

// AddForeman registers a foreman.
func (r *Registry) AddForeman(f *Foreman) {
	if _, dup := r.foremanByID[f.ID]; dup {
		panic(fmt.Sprintf("brigade: duplicate foreman id %q", f.ID))
	}
	r.foremen = append(r.foremen, f)
	r.foremanByID[f.ID] = f
}

// Get returns a brigade by ID.
func (r *Registry) Get(brigadeID string) (*Brigade, bool) {
	b, ok := r.byID[brigadeID]
	return b, ok
}

// Brigades returns every brigade in registration order.
func (r *Registry) Brigades() []*Brigade {
	return r.brigades
}

// Foremen returns every foreman in registration order.
func (r *Registry) Foremen() []*Foreman {
	return r.foremen
}

// AssignBrigade puts a brigade under a foreman's supervision.
func (r *Registry) AssignBrigade(foremanID, brigadeID string) error {
	f, ok := r.foremanByID[foremanID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrForemanNotFound, foremanID)
	}
	if _, ok := r.byID[brigadeID]; !ok {
		return fmt.Errorf("%w: %s", ErrBrigadeNotFound, brigadeID)
	}
	for _, id := range f.BrigadeIDs {
		if id == brigadeID {
			return nil
		}
	}
	f.BrigadeIDs = append(f.BrigadeIDs, brigadeID)
	return nil
}

// CanAdd validates that a worker could be placed into a brigade without
// changing anything.
func (r *Registry) CanAdd(brigadeID, workerID string) error {
	if _, ok := r.byID[brigadeID]; !ok {
		return fmt.Errorf("%w: %s", ErrBrigadeNotFound, brigadeID)
	}
	if b := r.BrigadeOf(workerID); b != nil {
		return fmt.Errorf("%w: %s is in %s", ErrAlreadyMember, workerID, b.ID)
	}
	return nil
}

// AddMember places a worker into a brigade slot and marks them busy.
func (r *Registry) AddMember(brigadeID, workerID string) error {
	if err := r.CanAdd(brigadeID, workerID); err != nil {
		return err
	}
	b := r.byID[brigadeID]
	b.MemberIDs = append(b.MemberIDs, workerID)
	if w := r.pop.Get(workerID); w != nil {
		w.IsBusy = true
	}
	r.logger.Debug("member added", "brigade", brigadeID, "worker", workerID, "size", len(b.MemberIDs))
	return nil
}

// RemoveWorker drops a worker from every brigade's member list.
// It reports whether the worker was a member anywhere.
func (r *Registry) RemoveWorker(workerID string) bool {
	removed := false
	for _, b := range r.brigades {
		kept := b.MemberIDs[:0]
		for _, id := range b.MemberIDs {
			if id == workerID {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		b.MemberIDs = kept
	}
	return removed
}

// BrigadeOf returns the brigade containing the worker, or nil.
func (r *Registry) BrigadeOf(workerID string) *Brigade {
	for _, b := range r.brigades {
		if b.hasMember(workerID) {
			return b
		}
	}
	return nil
}

// Activate puts a brigade to work on an order and marks its members busy.
// Activating a working brigade rebinds it to the new order.
func (r *Registry) Activate(brigadeID, orderID string) error {
	b, ok := r.byID[brigadeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBrigadeNotFound, brigadeID)
	}
	if b.IsWorking && b.CurrentOrderID != orderID {
		r.logger.Warn("brigade rebound to new order",
			"brigade", brigadeID, "previous_order", b.CurrentOrderID, "order", orderID)
	}
	b.IsWorking = true
	b.CurrentOrderID = orderID
	r.setBusy(b, true)
	r.logger.Info("brigade activated", "brigade", brigadeID, "order", orderID, "members", len(b.MemberIDs))
	return nil
}

// Deactivate returns a brigade to idle and frees its members.
// Deactivating an idle brigade does nothing.
func (r *Registry) Deactivate(brigadeID string) error {
	b, ok := r.byID[brigadeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBrigadeNotFound, brigadeID)
	}
	if !b.IsWorking {
		return nil
	}
	b.IsWorking = false
	b.CurrentOrderID = ""
	r.setBusy(b, false)
	r.logger.Info("brigade deactivated", "brigade", brigadeID)
	return nil
}

func (r *Registry) setBusy(b *Brigade, busy bool) {
	for _, id := range b.MemberIDs {
		if w := r.pop.Get(id); w != nil {
			w.IsBusy = busy
		}
	}
}

// IsWorkerInActiveBrigade reports whether any working brigade lists the worker.
func (r *Registry) IsWorkerInActiveBrigade(workerID string) bool {
	for _, b := range r.brigades {
		if b.IsWorking && b.hasMember(workerID) {
			return true
		}
	}
	return false
}

// IsForemanActive reports whether the foreman supervises a working brigade.
// Unknown foremen are inactive.
func (r *Registry) IsForemanActive(foremanID string) bool {
	f, ok := r.foremanByID[foremanID]
	if !ok {
		return false
	}
	for _, id := range f.BrigadeIDs {
		if b, ok := r.byID[id]; ok && b.IsWorking {
			return true
		}
	}
	return false
}
