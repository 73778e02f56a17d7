package dto

import "time"

type ScheduleRequest struct {
	Month      string `json:"month"`
	Region     string `json:"region"`
	Technician string `json:"technician"`

	PMCap            *int           `json:"pm_cap"`
	Holidays         []string       `json:"holidays"`
	HoldOpenWorkdays *int           `json:"hold_open_workdays"`
	PMCapOverrides   map[string]int `json:"pm_cap_overrides"`
}

type PlacedResponse struct {
	JobID            int       `json:"job_id"`
	Property         string    `json:"property"`
	Customer         string    `json:"customer"`
	Type             string    `json:"type"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	DriveMinFromPrev float64   `json:"drive_min_from_prev"`
	Reasoning        string    `json:"reasoning"`
	Note             bool      `json:"note"`
}

type ScheduleResponse struct {
	Month       string                      `json:"month"`
	Region      string                      `json:"region"`
	Technician  string                      `json:"technician"`
	Days        map[string][]PlacedResponse `json:"days"`
	SkipSummary string                      `json:"skip_summary,omitempty"`
}
