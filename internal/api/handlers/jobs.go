package handlers

import (
	"log"
	"net/http"
	"strings"

	"field-service-scheduler/internal/api/dto"
	"field-service-scheduler/internal/ports"
)

// JobHandler exposes read-only month-job retrieval endpoints.
type JobHandler struct {
	Repo ports.ScheduleRepository
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeError(w, r, http.StatusBadRequest, "month is required")
		return
	}
	region := strings.TrimSpace(r.URL.Query().Get("region"))

	visits, err := h.Repo.ListMonthJobs(r.Context(), month, region)
	if err != nil {
		log.Printf("list month jobs failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListJobsResponse{Jobs: make([]dto.JobResponse, 0, len(visits))}
	for _, v := range visits {
		res.Jobs = append(res.Jobs, dto.JobResponse{
			JobID:         v.Job.ID,
			Month:         v.Job.Month,
			Property:      v.Property.Name,
			Customer:      v.Property.Customer,
			Type:          v.Job.Type,
			DurationHours: v.Job.EffectiveDuration(),
			Priority:      v.Job.Priority,
			FixedDate:     v.Job.FixedDate,
			Phase:         v.Job.Phase,
			WindowStart:   v.Job.WindowStart,
			WindowEnd:     v.Job.WindowEnd,
			LastThursday:  v.Job.LastThursday,
			AssignedTech:  v.Job.AssignedTech,
			Lat:           v.Property.Lat,
			Lon:           v.Property.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
