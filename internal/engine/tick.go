// Package engine provides the simulated calendar and the per-session labor
// market service driven by it.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Calendar layout.
const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
)

// Engine drives the calendar forward one simulated day per step.
type Engine struct {
	Day      uint64        // Days elapsed (monotonic, never resets)
	Interval time.Duration // Base wall time per simulated day

	running atomic.Bool
	speed   atomic.Uint64 // float64 bits; 1.0 = one day per Interval, 0 = paused

	// Callbacks, populated during setup.
	OnDay   func(day uint64)   // Every day
	OnMonth func(month uint64) // Every DaysPerMonth days
}

// NewEngine creates a calendar engine with default settings.
func NewEngine() *Engine {
	e := &Engine{Interval: time.Second}
	e.SetSpeed(1.0)
	return e
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the speed multiplier. Safe to call while Run is looping.
func (e *Engine) SetSpeed(speed float64) {
	e.speed.Store(math.Float64bits(speed))
}

// Month returns the number of whole months elapsed.
func (e *Engine) Month() uint64 {
	return e.Day / DaysPerMonth
}

// Run steps the calendar until Stop is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("calendar started", "day", e.Day, "speed", e.Speed())

	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("calendar stopped", "day", e.Day)
}

// Stop halts Run after the current step.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Step advances the calendar by one day.
func (e *Engine) Step() {
	e.Day++

	if e.OnDay != nil {
		e.OnDay(e.Day)
	}
	if e.Day%DaysPerMonth == 0 && e.OnMonth != nil {
		e.OnMonth(e.Month())
	}
}

// Advance runs n steps without sleeping.
func (e *Engine) Advance(days int) {
	for i := 0; i < days; i++ {
		e.Step()
	}
}

// SimDate renders a day counter as a calendar date.
func SimDate(day uint64) string {
	month := day / DaysPerMonth
	return fmt.Sprintf("Year %d Month %d Day %d",
		month/MonthsPerYear+1, month%MonthsPerYear+1, day%DaysPerMonth+1)
}
