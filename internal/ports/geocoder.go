package ports

import (
	"context"

	"field-service-scheduler/internal/domain"
)

// Contract for resolving a street address to coordinates.
type Geocoder interface {
	// Geocode returns the best-match coordinates for an address.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// GeocodeCache persists resolved coordinates keyed by normalized address.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
