package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/talgya/laborsim/internal/api"
	"github.com/talgya/laborsim/internal/config"
	"github.com/talgya/laborsim/internal/engine"
	"github.com/talgya/laborsim/internal/logging"
	"github.com/talgya/laborsim/internal/persistence"
	"github.com/talgya/laborsim/internal/workers"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagSeed      int64

	logger *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "laborsim",
		Short: "Labor market simulation for a construction company",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.Setup(flagLogLevel, flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "laborsim.yaml", "Config file (missing file = defaults)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Override the generation seed")

	root.AddCommand(newServeCmd(), newGenerateCmd(), newMarketCmd())
	return root
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the calendar and serve the market API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.DBPath)

	st, err := db.LoadState()
	fresh := errors.Is(err, persistence.ErrNoState)
	switch {
	case fresh:
		logger.Info("no saved session found, generating new one", "seed", cfg.Seed)
		st = engine.NewGameState(cfg.NewGame())
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	}

	sim := engine.NewSimulation(st, logger)
	if fresh {
		if err := db.SaveSimulation(sim); err != nil {
			logger.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Day = st.Day
	eng.Interval = cfg.DayInterval
	eng.OnDay = func(day uint64) {
		sim.TickDay(day)
		if err := db.SaveSimulation(sim); err != nil {
			logger.Error("daily save failed", "error", err)
		}
	}
	eng.OnMonth = sim.TickMonth

	if cfg.AdminKey == "" {
		logger.Warn("admin key not set, admin endpoints disabled")
	}
	srv := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
		Logger:   logger.With("component", "api"),
	}
	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	status := sim.Status()
	fmt.Printf("\nLabor market open: %d workers, %d on the market.\n", status.Workers, status.MarketSize)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	if !fresh {
		fmt.Printf("Resuming at %s\n", engine.SimDate(st.Day))
	}
	fmt.Println("Starting calendar... (Ctrl+C to stop)")

	eng.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("api shutdown", "error", err)
	}

	logger.Info("final save...")
	if err := db.SaveSimulation(sim); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	fmt.Println("Calendar stopped. Session saved.")
	return nil
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a worker population and print its makeup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			gen := cfg.NewGame().Gen
			pop := engine.GenerateWorkerPopulation(gen)
			printPopulation(cmd.OutOrStdout(), workers.DefaultCatalog(), pop)
			return nil
		},
	}
}

func newMarketCmd() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Print the market a fresh session would show at a level",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("level") {
				cfg.StartLevel = level
			}
			sim := engine.NewSimulation(engine.NewGameState(cfg.NewGame()), logger)
			printMarket(cmd.OutOrStdout(), cfg.StartLevel, sim.Market())
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "Player level (1-10)")
	return cmd
}

var categoryColors = map[workers.Category]*color.Color{
	workers.CategoryConstruction: color.New(color.FgYellow),
	workers.CategoryOffice:       color.New(color.FgCyan),
}

// categoryLabel pads before coloring so escape codes do not break columns.
func categoryLabel(c workers.Category) string {
	label := fmt.Sprintf("%-12s", c)
	if col, ok := categoryColors[c]; ok {
		return col.Sprint(label)
	}
	return label
}

func money(v int64) string {
	return "$" + humanize.Comma(v)
}

func printPopulation(w io.Writer, catalog *workers.Catalog, pop *workers.Population) {
	counts := pop.CountByCategory()
	fmt.Fprintf(w, "%d workers: %d construction, %d office\n\n",
		pop.Len(), counts[workers.CategoryConstruction], counts[workers.CategoryOffice])

	type row struct {
		cat   workers.Category
		name  string
		count int
		pay   int64
	}
	rows := map[string]*row{}
	for _, p := range catalog.All() {
		rows[p.ID] = &row{cat: p.Category, name: p.DisplayName}
	}
	var levels [workers.MaxLevel + 1]int
	for _, wk := range pop.Workers {
		r, ok := rows[wk.ProfessionID]
		if !ok {
			r = &row{cat: wk.Category, name: wk.ProfessionName}
			rows[wk.ProfessionID] = r
		}
		r.count++
		r.pay += wk.Salary
		levels[wk.AppearanceLevel]++
	}

	list := make([]*row, 0, len(rows))
	for _, r := range rows {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].cat != list[j].cat {
			return list[i].cat < list[j].cat
		}
		return list[i].name < list[j].name
	})

	fmt.Fprintf(w, "%-12s  %-20s  %5s  %12s\n", "CATEGORY", "PROFESSION", "COUNT", "AVG SALARY")
	for _, r := range list {
		avg := "-"
		if r.count > 0 {
			avg = money(r.pay / int64(r.count))
		}
		fmt.Fprintf(w, "%s  %-20s  %5d  %12s\n", categoryLabel(r.cat), r.name, r.count, avg)
	}

	fmt.Fprintln(w, "\nLEVEL  COUNT")
	for lvl := workers.MinLevel; lvl <= workers.MaxLevel; lvl++ {
		fmt.Fprintf(w, "%5d  %5d\n", lvl, levels[lvl])
	}
}

func printMarket(w io.Writer, level int, list []workers.Worker) {
	fmt.Fprintf(w, "Market at level %d: %d workers\n\n", level, len(list))
	fmt.Fprintf(w, "%-9s  %-22s  %-12s  %-20s  %3s  %5s  %10s  %10s\n",
		"ID", "NAME", "CATEGORY", "PROFESSION", "LVL", "SKILL", "SALARY", "HIRE")
	for _, wk := range list {
		fmt.Fprintf(w, "%-9s  %-22s  %s  %-20s  %3d  %5d  %10s  %10s\n",
			wk.ID, wk.FullName(), categoryLabel(wk.Category), wk.ProfessionName,
			wk.AppearanceLevel, wk.SkillLevel, money(wk.Salary), money(wk.HireCost))
	}
}
