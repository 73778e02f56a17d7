package handlers

import (
	"log"
	"net/http"

	"field-service-scheduler/internal/api/dto"
	"field-service-scheduler/internal/ports"
	"field-service-scheduler/internal/services"
)

// ConfidenceHandler runs the coordinate-confidence scan over the stored
// properties: each address is geocoded (through the persistent cache) and
// scored by how far the stored coordinates drift from the geocoder's answer.
type ConfidenceHandler struct {
	Props    ports.PropertyDirectory
	Geocoder ports.Geocoder
	Cache    ports.GeocodeCache
}

func (h *ConfidenceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	props, err := h.Props.ListProperties(r.Context())
	if err != nil {
		log.Printf("confidence scan: list properties failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	results, err := services.ScanCoordinateConfidence(r.Context(), props, h.Geocoder, h.Cache)
	if err != nil {
		log.Printf("confidence scan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ConfidenceScanResponse{
		Properties: make([]dto.PropertyConfidenceResponse, 0, len(results)),
	}
	for _, pc := range results {
		row := dto.PropertyConfidenceResponse{
			PropertyID: pc.Property.ID,
			Property:   pc.Property.Name,
			Address:    pc.Property.Address,
			DriftMiles: pc.DriftMiles,
			Confidence: pc.Confidence,
		}
		if pc.Geocoded != nil {
			row.GeocodedLat = &pc.Geocoded.Lat
			row.GeocodedLon = &pc.Geocoded.Lon
		}
		res.Properties = append(res.Properties, row)
	}

	writeJSON(w, r, http.StatusOK, res)
}
