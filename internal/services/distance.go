package services

import (
	"math"

	"field-service-scheduler/internal/domain"
)

const earthRadiusMiles = 3958.8

// unknownLegMiles stands in for a leg with a missing endpoint. It is large
// enough to fail any time-feasibility check without overflowing the math.
const unknownLegMiles = 1e9

// unknownOfficeDist marks an unknown distance-from-office. Sorting treats it
// as "not farther than anything real".
const unknownOfficeDist = -1.0

// HaversineMiles computes the great-circle distance between two points.
func HaversineMiles(a, b domain.Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// DriveMinutes converts a leg distance to driving time. Legs at or beyond
// the highway threshold use the highway profile; shorter legs use the city
// profile. The speed step at the threshold is discontinuous.
func DriveMinutes(miles float64) float64 {
	if miles >= HighwayThreshMi {
		return 60.0 * miles / HighwaySpeedMPH
	}
	return 60.0 * miles / CitySpeedMPH
}

// LegDistance is the feasibility-math distance between two optional
// coordinates. A missing endpoint yields unknownLegMiles, making the leg
// effectively infeasible for time bounds.
func LegDistance(a, b *domain.Coordinates) float64 {
	if a == nil || b == nil {
		return unknownLegMiles
	}
	return HaversineMiles(*a, *b)
}

// OfficeDistance is the sorting/progress distance from a property to the
// office. Missing coordinates on either side yield unknownOfficeDist.
func OfficeDistance(p *domain.Property, office *domain.Office) float64 {
	pc, ok := p.Coord()
	if !ok {
		return unknownOfficeDist
	}
	oc, ok := office.Coord()
	if !ok {
		return unknownOfficeDist
	}
	return HaversineMiles(pc, oc)
}

// WithinCluster reports whether two properties lie within radius miles of
// each other. Missing coordinates never qualify.
func WithinCluster(pivot, cand *domain.Property, radiusMiles float64) bool {
	pc, ok := pivot.Coord()
	if !ok {
		return false
	}
	cc, ok := cand.Coord()
	if !ok {
		return false
	}
	return HaversineMiles(pc, cc) <= radiusMiles
}
