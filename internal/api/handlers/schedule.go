package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"field-service-scheduler/internal/api/dto"
	"field-service-scheduler/internal/export"
	"field-service-scheduler/internal/ports"
	"field-service-scheduler/internal/services"
)

const defaultHoldOpenWorkdays = 5

// ScheduleHandler computes month schedules and serves CSV exports.
type ScheduleHandler struct {
	Repo ports.ScheduleRepository
}

// Compute runs the placement engine for one technician/month/region.
func (h *ScheduleHandler) Compute(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	sched, err := services.ScheduleMonth(r.Context(), h.Repo, req)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	res := dto.ScheduleResponse{
		Month:       req.Month,
		Region:      req.Region,
		Technician:  req.Technician,
		Days:        make(map[string][]dto.PlacedResponse, len(sched.Days)),
		SkipSummary: sched.SkipSummary(),
	}
	for day, stops := range sched.Days {
		out := make([]dto.PlacedResponse, 0, len(stops))
		for _, p := range stops {
			out = append(out, dto.PlacedResponse{
				JobID:            p.JobID,
				Property:         p.Property,
				Customer:         p.Customer,
				Type:             p.Type,
				Start:            p.Start,
				End:              p.End,
				DriveMinFromPrev: p.DriveMinFromPrev,
				Reasoning:        p.Reasoning,
				Note:             p.IsNote(),
			})
		}
		res.Days[day] = out
	}

	writeJSON(w, r, http.StatusOK, res)
}

// ExportCSV computes a schedule and responds with the CSV document.
func (h *ScheduleHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	sched, err := services.ScheduleMonth(r.Context(), h.Repo, req)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "schedule_"+req.Month+"_"+req.Technician+".csv"))
	if err := export.WriteCSV(w, sched.Days); err != nil {
		log.Printf("schedule csv export failed: %v", err)
	}
}

func (h *ScheduleHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (services.ScheduleRequest, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return services.ScheduleRequest{}, false
	}

	var req dto.ScheduleRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return services.ScheduleRequest{}, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return services.ScheduleRequest{}, false
	}

	month := strings.TrimSpace(req.Month)
	if month == "" {
		writeError(w, r, http.StatusBadRequest, "month is required")
		return services.ScheduleRequest{}, false
	}
	region := strings.TrimSpace(req.Region)
	if region == "" {
		writeError(w, r, http.StatusBadRequest, "region is required")
		return services.ScheduleRequest{}, false
	}
	tech := strings.TrimSpace(req.Technician)
	if tech == "" {
		writeError(w, r, http.StatusBadRequest, "technician is required")
		return services.ScheduleRequest{}, false
	}

	pmCap := 0
	if req.PMCap != nil {
		if *req.PMCap < 1 || *req.PMCap > 20 {
			writeError(w, r, http.StatusBadRequest, "pm_cap must be between 1 and 20")
			return services.ScheduleRequest{}, false
		}
		pmCap = *req.PMCap
	}

	holdOpen := defaultHoldOpenWorkdays
	if req.HoldOpenWorkdays != nil {
		if *req.HoldOpenWorkdays < 0 || *req.HoldOpenWorkdays > 23 {
			writeError(w, r, http.StatusBadRequest, "hold_open_workdays must be between 0 and 23")
			return services.ScheduleRequest{}, false
		}
		holdOpen = *req.HoldOpenWorkdays
	}

	holidays := make(map[string]struct{}, len(req.Holidays))
	for _, d := range req.Holidays {
		if t := strings.TrimSpace(d); t != "" {
			holidays[t] = struct{}{}
		}
	}

	return services.ScheduleRequest{
		Month:            month,
		Region:           region,
		Technician:       tech,
		PMCapDefault:     pmCap,
		Holidays:         holidays,
		HoldOpenWorkdays: holdOpen,
		PMCapOverrides:   req.PMCapOverrides,
	}, true
}

func (h *ScheduleHandler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("schedule month failed: %v", err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
