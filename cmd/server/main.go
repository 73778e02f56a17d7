package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"field-service-scheduler/internal/adapters/cache"
	"field-service-scheduler/internal/adapters/geocode"
	"field-service-scheduler/internal/adapters/repositories"
	"field-service-scheduler/internal/api"
	"field-service-scheduler/internal/config"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires the concrete adapters (SQLite store and cache, Nominatim) behind
// their ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/schedule.json")
	port := config.Get("PORT", "8080")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	// The confidence scan geocodes through a persistent SQLite cache to
	// avoid repeated Nominatim calls.
	geocoder, err := geocode.NewNominatimGeocoder(config.Get("GEOCODE_USER_AGENT", "field-service-scheduler"))
	if err != nil {
		log.Fatal(err)
	}
	geocodeCache := cache.NewSqliteGeocodeCache(db)

	repo := repositories.NewSqliteScheduleRepository(db)
	router := api.NewRouter(repo, repo, geocoder, geocodeCache)

	// Write timeout allows for full-month schedule computation on large pools.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
