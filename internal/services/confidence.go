package services

import (
	"context"
	"fmt"
	"sync"

	"field-service-scheduler/internal/domain"
	"field-service-scheduler/internal/ports"
)

// Confidence scoring thresholds: a geocoded point within RadiusMiles of
// the stored coordinates is fully trusted; beyond MaxMiles it is not
// trusted at all, with a linear scale between.
const (
	ConfidenceRadiusMiles = 0.75
	ConfidenceMaxMiles    = 10.0

	confidenceWorkers = 20
)

// PropertyConfidence is the scan result for one property.
type PropertyConfidence struct {
	Property   *domain.Property
	Geocoded   *domain.Coordinates // nil when geocoding failed
	DriftMiles float64             // distance stored -> geocoded; -1 when unknown
	Confidence int                 // 0..100
}

// ComputeConfidence maps the drift between stored and geocoded coordinates
// to a 0..100 score.
func ComputeConfidence(driftMiles float64) int {
	if driftMiles < 0 {
		return 0
	}
	if driftMiles <= ConfidenceRadiusMiles {
		return 100
	}
	if driftMiles >= ConfidenceMaxMiles {
		return 0
	}
	scale := (driftMiles - ConfidenceRadiusMiles) / (ConfidenceMaxMiles - ConfidenceRadiusMiles)
	score := int(100*(1-scale) + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ScanCoordinateConfidence geocodes every property address concurrently and
// scores how far the stored coordinates drift from the geocoder's answer.
// Cached addresses are not re-fetched; fresh results are written back to the
// cache. Individual geocode failures score 0 rather than failing the scan.
func ScanCoordinateConfidence(
	ctx context.Context,
	props []*domain.Property,
	geocoder ports.Geocoder,
	geoCache ports.GeocodeCache,
) ([]PropertyConfidence, error) {
	addresses := make([]string, 0, len(props))
	for _, p := range props {
		if p.Address != "" {
			addresses = append(addresses, p.Address)
		}
	}

	cached := map[string]domain.Coordinates{}
	if geoCache != nil {
		var err error
		cached, err = geoCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("confidence scan: read geocode cache: %w", err)
		}
	}

	type geocoded struct {
		address string
		coord   domain.Coordinates
		ok      bool
	}

	sem := make(chan struct{}, confidenceWorkers)
	results := make(chan geocoded, len(props))
	var wg sync.WaitGroup

	seen := map[string]struct{}{}
	for _, addr := range addresses {
		if _, ok := cached[addr]; ok {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		wg.Add(1)
		go func(a string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			c, err := geocoder.Geocode(ctx, a)
			if err != nil {
				results <- geocoded{address: a}
				return
			}
			results <- geocoded{address: a, coord: c, ok: true}
		}(addr)
	}

	wg.Wait()
	close(results)

	fresh := map[string]domain.Coordinates{}
	for r := range results {
		if r.ok {
			fresh[r.address] = r.coord
		}
	}
	if geoCache != nil && len(fresh) > 0 {
		if err := geoCache.PutMany(ctx, fresh); err != nil {
			return nil, fmt.Errorf("confidence scan: write geocode cache: %w", err)
		}
	}

	out := make([]PropertyConfidence, 0, len(props))
	for _, p := range props {
		pc := PropertyConfidence{Property: p, DriftMiles: -1}

		coord, ok := cached[p.Address]
		if !ok {
			coord, ok = fresh[p.Address]
		}
		if ok {
			c := coord
			pc.Geocoded = &c
			if stored, has := p.Coord(); has {
				pc.DriftMiles = HaversineMiles(stored, c)
			}
		}
		pc.Confidence = ComputeConfidence(pc.DriftMiles)
		out = append(out, pc)
	}
	return out, nil
}
