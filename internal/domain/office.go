package domain

// Office is the technician's home base for a region.
// Coordinates may be absent for offices that have not been geocoded.
type Office struct {
	Region string
	Name   string
	Lat    *float64
	Lon    *float64
}

// Coord returns the office coordinates, reporting whether both are present.
func (o *Office) Coord() (Coordinates, bool) {
	if o == nil || o.Lat == nil || o.Lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *o.Lat, Lon: *o.Lon}, true
}
