package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOfficesQuery := `
	CREATE TABLE IF NOT EXISTS offices (
		region TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		lat    REAL,
		lon    REAL
	);
	`

	createTechsQuery := `
	CREATE TABLE IF NOT EXISTS techs (
		name TEXT PRIMARY KEY,
		region TEXT NOT NULL,
		first_appt TEXT NOT NULL DEFAULT '08:30',
		latest_return TEXT NOT NULL DEFAULT '15:30',
		max_pms_per_day INTEGER NOT NULL DEFAULT 2
	);
	`

	createPropertiesQuery := `
	CREATE TABLE IF NOT EXISTS properties (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		customer TEXT,
		full_address TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		lat REAL,
		lon REAL,
		region TEXT NOT NULL
	);
	`

	createMonthJobsQuery := `
	CREATE TABLE IF NOT EXISTS month_jobs (
		id INTEGER PRIMARY KEY,
		month TEXT NOT NULL,
		property_id INTEGER NOT NULL,
		type TEXT,
		duration_hours REAL,
		priority INTEGER,
		fixed_date TEXT,
		phase TEXT,
		time_window_start TEXT,
		time_window_end TEXT,
		must_be_last_thursday INTEGER DEFAULT 0,
		notes TEXT,
		assigned_tech TEXT,
		FOREIGN KEY(property_id) REFERENCES properties(id) ON DELETE CASCADE
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`

	createIndexQueries := `
	CREATE INDEX IF NOT EXISTS idx_mj_month ON month_jobs(month);
	CREATE INDEX IF NOT EXISTS idx_mj_prop ON month_jobs(property_id);
	CREATE INDEX IF NOT EXISTS idx_properties_region ON properties(region);
	`

	statements := []string{
		createOfficesQuery,
		createTechsQuery,
		createPropertiesQuery,
		createMonthJobsQuery,
		createGeocodeCacheQuery,
		createIndexQueries,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type OfficeSeed struct {
	Region string   `json:"region"`
	Name   string   `json:"name"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

type TechSeed struct {
	Name         string `json:"name"`
	Region       string `json:"region"`
	FirstAppt    string `json:"first_appt"`
	LatestReturn string `json:"latest_return"`
	MaxPMsPerDay int    `json:"max_pms_per_day"`
}

type PropertySeed struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Customer string   `json:"customer"`
	Address  string   `json:"address"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Zip      string   `json:"zip"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Region   string   `json:"region"`
}

type MonthJobSeed struct {
	ID            int      `json:"id"`
	Month         string   `json:"month"`
	PropertyID    int      `json:"property_id"`
	Type          string   `json:"type"`
	DurationHours *float64 `json:"duration_hours"`
	Priority      *int     `json:"priority"`
	FixedDate     string   `json:"fixed_date"`
	Phase         string   `json:"phase"`
	WindowStart   string   `json:"time_window_start"`
	WindowEnd     string   `json:"time_window_end"`
	LastThursday  bool     `json:"must_be_last_thursday"`
	Notes         string   `json:"notes"`
	AssignedTech  string   `json:"assigned_tech"`
}

type ScheduleSeed struct {
	Offices    []OfficeSeed   `json:"offices"`
	Techs      []TechSeed     `json:"techs"`
	Properties []PropertySeed `json:"properties"`
	MonthJobs  []MonthJobSeed `json:"month_jobs"`
}

// Populate the database with reference and job data from a JSON file.
// Seeding is idempotent: rows are inserted or replaced by primary key.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed schedule data: read %q: %w", jsonPath, err)
	}

	var seed ScheduleSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed schedule data: parse json: %w", err)
	}

	for i, o := range seed.Offices {
		if strings.TrimSpace(o.Region) == "" {
			return fmt.Errorf("seed schedule data: office at index %d: region cannot be empty", i+1)
		}
	}
	for i, t := range seed.Techs {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("seed schedule data: tech at index %d: name cannot be empty", i+1)
		}
	}
	for i, p := range seed.Properties {
		if p.ID <= 0 {
			return fmt.Errorf("seed schedule data: invalid property id at index %d: %d", i+1, p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("seed schedule data: property at index %d: name cannot be empty", i+1)
		}
	}
	for i, j := range seed.MonthJobs {
		if j.PropertyID <= 0 {
			return fmt.Errorf("seed schedule data: job at index %d: invalid property_id: %d", i+1, j.PropertyID)
		}
		if len(j.Month) < 7 {
			return fmt.Errorf("seed schedule data: job at index %d: month %q is not YYYY-MM", i+1, j.Month)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed schedule data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, o := range seed.Offices {
		_, err := tx.Exec(`
		INSERT INTO offices (region, name, lat, lon)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(region) DO UPDATE SET
			name = excluded.name,
			lat  = COALESCE(excluded.lat, offices.lat),
			lon  = COALESCE(excluded.lon, offices.lon);
		`, o.Region, o.Name, o.Lat, o.Lon)
		if err != nil {
			return fmt.Errorf("seed schedule data: upsert office %q: %w", o.Region, err)
		}
	}

	for _, t := range seed.Techs {
		_, err := tx.Exec(`
		INSERT OR REPLACE INTO techs (name, region, first_appt, latest_return, max_pms_per_day)
		VALUES (?, ?, ?, ?, ?);
		`, t.Name, t.Region, t.FirstAppt, t.LatestReturn, t.MaxPMsPerDay)
		if err != nil {
			return fmt.Errorf("seed schedule data: upsert tech %q: %w", t.Name, err)
		}
	}

	for _, p := range seed.Properties {
		_, err := tx.Exec(`
		INSERT OR REPLACE INTO properties (id, name, customer, full_address, city, state, zip, lat, lon, region)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, p.ID, p.Name, p.Customer, p.Address, p.City, p.State, p.Zip, p.Lat, p.Lon, p.Region)
		if err != nil {
			return fmt.Errorf("seed schedule data: upsert property id=%d: %w", p.ID, err)
		}
	}

	for _, j := range seed.MonthJobs {
		lastThu := 0
		if j.LastThursday {
			lastThu = 1
		}
		_, err := tx.Exec(`
		INSERT OR REPLACE INTO month_jobs (
			id, month, property_id, type, duration_hours, priority, fixed_date, phase,
			time_window_start, time_window_end, must_be_last_thursday, notes, assigned_tech
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, j.ID, j.Month[:7], j.PropertyID, nullStr(j.Type), j.DurationHours, j.Priority,
			nullStr(j.FixedDate), nullStr(j.Phase), nullStr(j.WindowStart), nullStr(j.WindowEnd),
			lastThu, j.Notes, nullStr(j.AssignedTech))
		if err != nil {
			return fmt.Errorf("seed schedule data: upsert job id=%d: %w", j.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed schedule data: commit tx: %w", err)
	}

	return nil
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
