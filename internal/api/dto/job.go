package dto

type JobResponse struct {
	JobID         int      `json:"job_id"`
	Month         string   `json:"month"`
	Property      string   `json:"property"`
	Customer      string   `json:"customer"`
	Type          string   `json:"type"`
	DurationHours float64  `json:"duration_hours"`
	Priority      *int     `json:"priority"`
	FixedDate     string   `json:"fixed_date,omitempty"`
	Phase         string   `json:"phase,omitempty"`
	WindowStart   string   `json:"time_window_start,omitempty"`
	WindowEnd     string   `json:"time_window_end,omitempty"`
	LastThursday  bool     `json:"must_be_last_thursday"`
	AssignedTech  string   `json:"assigned_tech,omitempty"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
