package geocode

import (
	"context"
	"fmt"

	"field-service-scheduler/internal/domain"
)

type MockEntry struct {
	Address  string
	Lat, Lon float64
}

type MockGeocoder struct {
	m map[string]domain.Coordinates
}

func NewMockGeocoder(entries []MockEntry) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(entries))
	for _, e := range entries {
		m[e.Address] = domain.Coordinates{Lat: e.Lat, Lon: e.Lon}
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	c, ok := g.m[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("missing address %q", address)
	}

	return c, nil
}
