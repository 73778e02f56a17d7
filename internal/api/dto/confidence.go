package dto

type PropertyConfidenceResponse struct {
	PropertyID  int      `json:"property_id"`
	Property    string   `json:"property"`
	Address     string   `json:"address,omitempty"`
	GeocodedLat *float64 `json:"geocoded_lat"`
	GeocodedLon *float64 `json:"geocoded_lon"`
	DriftMiles  float64  `json:"drift_mi"`
	Confidence  int      `json:"confidence"`
}

type ConfidenceScanResponse struct {
	Properties []PropertyConfidenceResponse `json:"properties"`
}
