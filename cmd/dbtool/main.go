package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"field-service-scheduler/internal/adapters/cache"
	"field-service-scheduler/internal/adapters/geocode"
	"field-service-scheduler/internal/adapters/repositories"
	"field-service-scheduler/internal/config"
	"field-service-scheduler/internal/platform/db"
	"field-service-scheduler/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// dbtool initializes and seeds the shared Postgres database, and can run a
// coordinate-confidence scan over the seeded properties
// (CONFIDENCE_SCAN=1).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/schedule.json")
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	if config.Get("CONFIDENCE_SCAN", "") == "1" {
		if err := runConfidenceScan(db); err != nil {
			log.Fatal(err)
		}
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}

// runConfidenceScan geocodes every stored property address and reports how
// far the stored coordinates drift from the geocoder's answer.
func runConfidenceScan(database *sql.DB) error {
	ctx := context.Background()

	repo := repositories.NewSQLScheduleRepository(database)
	props, err := repo.ListProperties(ctx)
	if err != nil {
		return err
	}

	geocoder, err := geocode.NewNominatimGeocoder(config.Get("GEOCODE_USER_AGENT", "field-service-scheduler"))
	if err != nil {
		return err
	}
	geoCache := cache.NewSQLGeocodeCache(database)

	results, err := services.ScanCoordinateConfidence(ctx, props, geocoder, geoCache)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Confidence >= 80 {
			continue
		}
		log.Printf("low confidence: property=%q drift_mi=%.2f confidence=%d",
			r.Property.Name, r.DriftMiles, r.Confidence)
	}
	log.Printf("confidence scan complete: %d properties", len(results))

	return nil
}
