package economy

// MaxPlayerLevel is the highest progression level.
const MaxPlayerLevel = 10

// Progress tracks the player's progression level.
type Progress struct {
	level int
}

// NewProgress starts at the given level, clamped to 1..MaxPlayerLevel.
func NewProgress(level int) *Progress {
	p := &Progress{}
	p.SetLevel(level)
	return p
}

// Level returns the current level.
func (p *Progress) Level() int {
	return p.level
}

// SetLevel changes the level, clamped to 1..MaxPlayerLevel.
func (p *Progress) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	if level > MaxPlayerLevel {
		level = MaxPlayerLevel
	}
	p.level = level
}
