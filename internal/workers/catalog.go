package workers

// ProfessionConfig is an immutable profession archetype.
type ProfessionConfig struct {
	ID                 string
	DisplayName        string
	Category           Category
	MinSalary          int64
	MaxSalary          int64
	MinAppearanceLevel int
}

// Catalog is the static profession table.
type Catalog struct {
	professions []ProfessionConfig
	byID        map[string]int
}

// NewCatalog builds a catalog from the given professions.
func NewCatalog(professions []ProfessionConfig) *Catalog {
	c := &Catalog{
		professions: make([]ProfessionConfig, len(professions)),
		byID:        make(map[string]int, len(professions)),
	}
	copy(c.professions, professions)
	for i, p := range c.professions {
		c.byID[p.ID] = i
	}
	return c
}

// DefaultCatalog returns the built-in profession table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultProfessions)
}

// Get looks up a profession by ID.
func (c *Catalog) Get(id string) (ProfessionConfig, bool) {
	i, ok := c.byID[id]
	if !ok {
		return ProfessionConfig{}, false
	}
	return c.professions[i], true
}

// ForCategory returns the professions of one category in table order.
func (c *Catalog) ForCategory(cat Category) []ProfessionConfig {
	var out []ProfessionConfig
	for _, p := range c.professions {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// All returns a copy of every profession.
func (c *Catalog) All() []ProfessionConfig {
	out := make([]ProfessionConfig, len(c.professions))
	copy(out, c.professions)
	return out
}

var defaultProfessions = []ProfessionConfig{
	// Construction
	{ID: "laborer", DisplayName: "Laborer", Category: CategoryConstruction, MinSalary: 800, MaxSalary: 1600, MinAppearanceLevel: 1},
	{ID: "mason", DisplayName: "Mason", Category: CategoryConstruction, MinSalary: 1000, MaxSalary: 2200, MinAppearanceLevel: 1},
	{ID: "carpenter", DisplayName: "Carpenter", Category: CategoryConstruction, MinSalary: 1000, MaxSalary: 2300, MinAppearanceLevel: 1},
	{ID: "painter", DisplayName: "Painter", Category: CategoryConstruction, MinSalary: 900, MaxSalary: 1900, MinAppearanceLevel: 1},
	{ID: "roofer", DisplayName: "Roofer", Category: CategoryConstruction, MinSalary: 1100, MaxSalary: 2400, MinAppearanceLevel: 2},
	{ID: "plumber", DisplayName: "Plumber", Category: CategoryConstruction, MinSalary: 1200, MaxSalary: 2600, MinAppearanceLevel: 2},
	{ID: "welder", DisplayName: "Welder", Category: CategoryConstruction, MinSalary: 1300, MaxSalary: 2800, MinAppearanceLevel: 3},
	{ID: "electrician", DisplayName: "Electrician", Category: CategoryConstruction, MinSalary: 1400, MaxSalary: 3000, MinAppearanceLevel: 3},
	{ID: "crane_operator", DisplayName: "Crane Operator", Category: CategoryConstruction, MinSalary: 1800, MaxSalary: 3600, MinAppearanceLevel: 5},

	// Office
	{ID: "secretary", DisplayName: "Secretary", Category: CategoryOffice, MinSalary: 900, MaxSalary: 1800, MinAppearanceLevel: 1},
	{ID: "accountant", DisplayName: "Accountant", Category: CategoryOffice, MinSalary: 1300, MaxSalary: 2800, MinAppearanceLevel: 1},
	{ID: "estimator", DisplayName: "Estimator", Category: CategoryOffice, MinSalary: 1400, MaxSalary: 3000, MinAppearanceLevel: 2},
	{ID: "hr_manager", DisplayName: "HR Manager", Category: CategoryOffice, MinSalary: 1500, MaxSalary: 3200, MinAppearanceLevel: 2},
	{ID: "engineer", DisplayName: "Engineer", Category: CategoryOffice, MinSalary: 2000, MaxSalary: 4200, MinAppearanceLevel: 3},
	{ID: "lawyer", DisplayName: "Lawyer", Category: CategoryOffice, MinSalary: 2200, MaxSalary: 4800, MinAppearanceLevel: 4},
	{ID: "architect", DisplayName: "Architect", Category: CategoryOffice, MinSalary: 2400, MaxSalary: 5000, MinAppearanceLevel: 4},
	{ID: "project_manager", DisplayName: "Project Manager", Category: CategoryOffice, MinSalary: 2600, MaxSalary: 5500, MinAppearanceLevel: 6},
}
