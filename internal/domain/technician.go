package domain

// Technician describes one field technician's workday bounds.
// FirstAppt and LatestReturn are times of day in "HH:MM" form.
type Technician struct {
	Name         string
	Region       string
	FirstAppt    string
	LatestReturn string
	MaxPMsPerDay int
}
