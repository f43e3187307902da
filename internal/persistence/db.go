// Package persistence provides SQLite-based storage of a labor market session.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/laborsim/internal/brigade"
	"github.com/talgya/laborsim/internal/engine"
	"github.com/talgya/laborsim/internal/workers"
)

// ErrNoState is returned by LoadState on an empty database.
var ErrNoState = errors.New("no saved session")

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		category INTEGER NOT NULL,
		profession_id TEXT NOT NULL,
		profession_name TEXT NOT NULL,
		appearance_level INTEGER NOT NULL,
		skill_level INTEGER NOT NULL,
		salary INTEGER NOT NULL,
		hire_cost INTEGER NOT NULL,
		upgrade_cost INTEGER NOT NULL,
		is_hired INTEGER NOT NULL,
		is_busy INTEGER NOT NULL,
		recently_fired INTEGER NOT NULL,
		rest_days_left INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS brigades (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_working INTEGER NOT NULL,
		current_order_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS brigade_members (
		brigade_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		worker_id TEXT NOT NULL UNIQUE,
		PRIMARY KEY (brigade_id, position)
	);

	CREATE TABLE IF NOT EXISTS foremen (
		seq INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		is_hired INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS foreman_brigades (
		foreman_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		brigade_id TEXT NOT NULL,
		PRIMARY KEY (foreman_id, position)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_workers_hired ON workers(is_hired);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasState reports whether a session has been saved. Read failures are
// returned, not treated as an empty database.
func (db *DB) HasState() (bool, error) {
	_, err := db.GetMeta("save_id")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check saved session: %w", err)
	}
	return true, nil
}

// SaveState writes the whole session in one transaction (full replace).
func (db *DB) SaveState(st *engine.State) error {
	slog.Info("saving session", "workers", st.Population.Len(), "brigades", len(st.Brigades), "day", st.Day)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"workers", "brigades", "brigade_members", "foremen", "foreman_brigades"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveWorkers(tx, st.Population); err != nil {
		return fmt.Errorf("save workers: %w", err)
	}
	if err := saveBrigades(tx, st.Brigades, st.Foremen); err != nil {
		return fmt.Errorf("save brigades: %w", err)
	}

	meta := map[string]string{
		"seed":               strconv.FormatInt(st.Seed, 10),
		"save_id":            st.SaveID,
		"balance":            strconv.FormatInt(st.Balance, 10),
		"level":              strconv.Itoa(st.Level),
		"rest_days":          strconv.Itoa(st.RestDays),
		"day":                strconv.FormatUint(st.Day, 10),
		"next_rebuild_month": strconv.FormatUint(st.NextRebuildMonth, 10),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("session saved", "save_id", st.SaveID)
	return nil
}

func saveWorkers(tx *sqlx.Tx, pop *workers.Population) error {
	stmt, err := tx.Preparex(`INSERT INTO workers
		(seq, id, first_name, last_name, category, profession_id, profession_name,
		 appearance_level, skill_level, salary, hire_cost, upgrade_cost,
		 is_hired, is_busy, recently_fired, rest_days_left)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, w := range pop.Workers {
		_, err := stmt.Exec(
			i, w.ID, w.FirstName, w.LastName, w.Category, w.ProfessionID, w.ProfessionName,
			w.AppearanceLevel, w.SkillLevel, w.Salary, w.HireCost, w.UpgradeCost,
			w.IsHired, w.IsBusy, w.RecentlyFired, w.RestDaysLeft,
		)
		if err != nil {
			return fmt.Errorf("insert worker %s: %w", w.ID, err)
		}
	}
	return nil
}

func saveBrigades(tx *sqlx.Tx, brigades []*brigade.Brigade, foremen []*brigade.Foreman) error {
	for i, b := range brigades {
		if _, err := tx.Exec(
			"INSERT INTO brigades (seq, id, name, is_working, current_order_id) VALUES (?, ?, ?, ?, ?)",
			i, b.ID, b.Name, b.IsWorking, b.CurrentOrderID,
		); err != nil {
			return fmt.Errorf("insert brigade %s: %w", b.ID, err)
		}
		for pos, wid := range b.MemberIDs {
			if _, err := tx.Exec(
				"INSERT INTO brigade_members (brigade_id, position, worker_id) VALUES (?, ?, ?)",
				b.ID, pos, wid,
			); err != nil {
				return fmt.Errorf("insert member %s/%s: %w", b.ID, wid, err)
			}
		}
	}
	for i, f := range foremen {
		if _, err := tx.Exec("INSERT INTO foremen (seq, id, is_hired) VALUES (?, ?, ?)", i, f.ID, f.IsHired); err != nil {
			return fmt.Errorf("insert foreman %s: %w", f.ID, err)
		}
		for pos, bid := range f.BrigadeIDs {
			if _, err := tx.Exec(
				"INSERT INTO foreman_brigades (foreman_id, position, brigade_id) VALUES (?, ?, ?)",
				f.ID, pos, bid,
			); err != nil {
				return fmt.Errorf("insert foreman brigade %s/%s: %w", f.ID, bid, err)
			}
		}
	}
	return nil
}

// LoadState restores a saved session.
func (db *DB) LoadState() (*engine.State, error) {
	st := &engine.State{}
	var err error
	st.SaveID, err = db.GetMeta("save_id")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoState
	case err != nil:
		return nil, fmt.Errorf("load save id: %w", err)
	}
	if st.Seed, err = db.metaInt("seed"); err != nil {
		return nil, err
	}
	if st.Balance, err = db.metaInt("balance"); err != nil {
		return nil, err
	}
	level, err := db.metaInt("level")
	if err != nil {
		return nil, err
	}
	st.Level = int(level)
	restDays, err := db.metaInt("rest_days")
	if err != nil {
		return nil, err
	}
	st.RestDays = int(restDays)
	day, err := db.metaInt("day")
	if err != nil {
		return nil, err
	}
	st.Day = uint64(day)
	next, err := db.metaInt("next_rebuild_month")
	if err != nil {
		return nil, err
	}
	st.NextRebuildMonth = uint64(next)

	if st.Population, err = db.loadWorkers(); err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	if st.Brigades, err = db.loadBrigades(); err != nil {
		return nil, fmt.Errorf("load brigades: %w", err)
	}
	if st.Foremen, err = db.loadForemen(); err != nil {
		return nil, fmt.Errorf("load foremen: %w", err)
	}

	slog.Info("session loaded", "save_id", st.SaveID, "workers", st.Population.Len(), "day", st.Day)
	return st, nil
}

func (db *DB) loadWorkers() (*workers.Population, error) {
	var list []*workers.Worker
	err := db.conn.Select(&list, `SELECT id, first_name, last_name, category, profession_id,
		profession_name, appearance_level, skill_level, salary, hire_cost, upgrade_cost,
		is_hired, is_busy, recently_fired, rest_days_left
		FROM workers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return workers.NewPopulation(list), nil
}

type brigadeRow struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	IsWorking      bool   `db:"is_working"`
	CurrentOrderID string `db:"current_order_id"`
}

type linkRow struct {
	OwnerID  string `db:"owner_id"`
	MemberID string `db:"member_id"`
}

func (db *DB) loadBrigades() ([]*brigade.Brigade, error) {
	var rows []brigadeRow
	if err := db.conn.Select(&rows, "SELECT id, name, is_working, current_order_id FROM brigades ORDER BY seq"); err != nil {
		return nil, err
	}
	var links []linkRow
	if err := db.conn.Select(&links, `SELECT brigade_id AS owner_id, worker_id AS member_id
		FROM brigade_members ORDER BY brigade_id, position`); err != nil {
		return nil, err
	}

	out := make([]*brigade.Brigade, 0, len(rows))
	byID := make(map[string]*brigade.Brigade, len(rows))
	for _, r := range rows {
		b := &brigade.Brigade{ID: r.ID, Name: r.Name, IsWorking: r.IsWorking, CurrentOrderID: r.CurrentOrderID}
		out = append(out, b)
		byID[b.ID] = b
	}
	for _, l := range links {
		if b, ok := byID[l.OwnerID]; ok {
			b.MemberIDs = append(b.MemberIDs, l.MemberID)
		}
	}
	return out, nil
}

func (db *DB) loadForemen() ([]*brigade.Foreman, error) {
	type foremanRow struct {
		ID      string `db:"id"`
		IsHired bool   `db:"is_hired"`
	}
	var rows []foremanRow
	if err := db.conn.Select(&rows, "SELECT id, is_hired FROM foremen ORDER BY seq"); err != nil {
		return nil, err
	}
	var links []linkRow
	if err := db.conn.Select(&links, `SELECT foreman_id AS owner_id, brigade_id AS member_id
		FROM foreman_brigades ORDER BY foreman_id, position`); err != nil {
		return nil, err
	}

	out := make([]*brigade.Foreman, 0, len(rows))
	byID := make(map[string]*brigade.Foreman, len(rows))
	for _, r := range rows {
		f := &brigade.Foreman{ID: r.ID, IsHired: r.IsHired}
		out = append(out, f)
		byID[f.ID] = f
	}
	for _, l := range links {
		if f, ok := byID[l.OwnerID]; ok {
			f.BrigadeIDs = append(f.BrigadeIDs, l.MemberID)
		}
	}
	return out, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (day, description, category) VALUES (?, ?, ?)",
			e.Day, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT day, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in session metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM session_meta WHERE key = ?", key)
	return value, err
}

func (db *DB) metaInt(key string) (int64, error) {
	v, err := db.GetMeta(key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("meta %s missing", key)
	}
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	return n, nil
}

// SaveSimulation saves a running session and its pending events, both taken
// under one lock. On failure the events go back to the session for the next save.
func (db *DB) SaveSimulation(sim *engine.Simulation) error {
	st, events := sim.Checkpoint()
	if err := db.SaveState(st); err != nil {
		sim.RequeueEvents(events)
		return err
	}
	if err := db.SaveEvents(events); err != nil {
		sim.RequeueEvents(events)
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}
