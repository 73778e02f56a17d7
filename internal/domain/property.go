package domain

// Property is a serviceable site. Coordinates may be absent; distance
// computations degrade to sentinels rather than failing.
type Property struct {
	ID       int
	Name     string
	Customer string
	Address  string
	City     string
	State    string
	Zip      string
	Lat      *float64
	Lon      *float64
	Region   string
}

// Coord returns the property coordinates, reporting whether both are present.
func (p *Property) Coord() (Coordinates, bool) {
	if p == nil || p.Lat == nil || p.Lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *p.Lat, Lon: *p.Lon}, true
}
