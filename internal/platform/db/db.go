package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to the shared Postgres schedule store through the pgx
// stdlib driver and verifies the connection. Pool limits are sized for the
// dbtool's batch workloads.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open schedule store: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("open schedule store: verify connection: %w", err)
	}

	return db, nil
}
