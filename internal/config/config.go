// Package config loads laborsim settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/laborsim/internal/brigade"
	"github.com/talgya/laborsim/internal/employment"
	"github.com/talgya/laborsim/internal/engine"
	"github.com/talgya/laborsim/internal/workers"
)

// BrigadeConfig declares a starting brigade.
type BrigadeConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ForemanConfig declares a starting foreman and the brigades they supervise.
type ForemanConfig struct {
	ID       string   `yaml:"id"`
	Brigades []string `yaml:"brigades"`
}

// Config models laborsim.yaml.
type Config struct {
	Seed               int64         `yaml:"seed"`
	ConstructionTarget int           `yaml:"construction_workers"`
	OfficeTarget       int           `yaml:"office_workers"`
	RestDays           int           `yaml:"rest_days"`
	StartingFunds      int64         `yaml:"starting_funds"`
	StartLevel         int           `yaml:"start_level"`
	DBPath             string        `yaml:"db_path"`
	Port               int           `yaml:"port"`
	AdminKey           string        `yaml:"admin_key"`
	DayInterval        time.Duration `yaml:"day_interval"`

	Brigades []BrigadeConfig `yaml:"brigades"`
	Foremen  []ForemanConfig `yaml:"foremen"`
}

// Default returns the built-in configuration.
func Default() Config {
	gen := workers.DefaultGenConfig()
	return Config{
		Seed:               gen.Seed,
		ConstructionTarget: gen.ConstructionTarget,
		OfficeTarget:       gen.OfficeTarget,
		RestDays:           employment.DefaultRestDays,
		StartingFunds:      5000,
		StartLevel:         1,
		DBPath:             "data/labor.db",
		Port:               8080,
		DayInterval:        time.Second,
		Brigades: []BrigadeConfig{
			{ID: "br1", Name: "Alpha"},
			{ID: "br2", Name: "Bravo"},
			{ID: "br3", Name: "Charlie"},
		},
		Foremen: []ForemanConfig{
			{ID: "fm1", Brigades: []string{"br1", "br2", "br3"}},
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// LABORSIM_DB, LABORSIM_PORT and LABORSIM_ADMIN_KEY override the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("LABORSIM_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LABORSIM_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("LABORSIM_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("LABORSIM_ADMIN_KEY"); v != "" {
		cfg.AdminKey = v
	}

	return cfg, cfg.Validate()
}

// Validate checks values the engine cannot work with.
func (c Config) Validate() error {
	if c.ConstructionTarget < 0 || c.OfficeTarget < 0 {
		return fmt.Errorf("worker targets must not be negative")
	}
	if c.RestDays < 1 {
		return fmt.Errorf("rest_days must be at least 1")
	}
	known := make(map[string]bool, len(c.Brigades))
	for _, b := range c.Brigades {
		if b.ID == "" {
			return fmt.Errorf("brigade with empty id")
		}
		if known[b.ID] {
			return fmt.Errorf("duplicate brigade %q", b.ID)
		}
		known[b.ID] = true
	}
	for _, f := range c.Foremen {
		for _, id := range f.Brigades {
			if !known[id] {
				return fmt.Errorf("foreman %s supervises unknown brigade %q", f.ID, id)
			}
		}
	}
	return nil
}

// NewGame converts the config into a fresh-session description.
func (c Config) NewGame() engine.NewGameConfig {
	ng := engine.NewGameConfig{
		Gen: workers.GenConfig{
			Seed:               c.Seed,
			ConstructionTarget: c.ConstructionTarget,
			OfficeTarget:       c.OfficeTarget,
		},
		StartingFunds: c.StartingFunds,
		StartLevel:    c.StartLevel,
		RestDays:      c.RestDays,
	}
	for _, b := range c.Brigades {
		ng.Brigades = append(ng.Brigades, &brigade.Brigade{ID: b.ID, Name: b.Name})
	}
	for _, f := range c.Foremen {
		ng.Foremen = append(ng.Foremen, &brigade.Foreman{
			ID:         f.ID,
			IsHired:    true,
			BrigadeIDs: append([]string(nil), f.Brigades...),
		})
	}
	return ng
}
