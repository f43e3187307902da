package workers

import "fmt"

// Population owns every worker record of a session and indexes them by ID.
// Brigades and the ledger refer to workers by ID and resolve through here.
type Population struct {
	Workers []*Worker
	index   map[string]*Worker
}

// NewPopulation indexes the given workers. It panics on a duplicate ID.
func NewPopulation(list []*Worker) *Population {
	p := &Population{
		Workers: make([]*Worker, 0, len(list)),
		index:   make(map[string]*Worker, len(list)),
	}
	for _, w := range list {
		p.Add(w)
	}
	return p
}

// Add appends a worker. A duplicate ID is a programming defect and panics.
func (p *Population) Add(w *Worker) {
	if _, dup := p.index[w.ID]; dup {
		panic(fmt.Sprintf("workers: duplicate worker id %q", w.ID))
	}
	p.Workers = append(p.Workers, w)
	p.index[w.ID] = w
}

// Get returns the worker with the given ID, or nil.
func (p *Population) Get(id string) *Worker {
	return p.index[id]
}

// Len returns the number of workers.
func (p *Population) Len() int {
	return len(p.Workers)
}

// CountByCategory returns how many workers belong to each category.
func (p *Population) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, w := range p.Workers {
		counts[w.Category]++
	}
	return counts
}
