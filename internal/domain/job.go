package domain

import "strings"

// DefaultDurationHours is assumed when a job has no positive duration.
const DefaultDurationHours = 1.5

// Priority value assumed for jobs without one; lower sorts first.
const DefaultPriority = 9999

// MonthJob is one visit requested for a property within a month.
// Optional string fields use "" for absent; DurationHours <= 0 means unset.
type MonthJob struct {
	ID            int
	Month         string // "YYYY-MM"
	PropertyID    int
	Type          string
	DurationHours float64
	Priority      *int
	FixedDate     string // "YYYY-MM-DD" or ""
	Phase         string // "early" | "mid" | "late" | "" | "any" | "weekly"
	WindowStart   string // "HH:MM" or ""
	WindowEnd     string // "HH:MM" or ""
	LastThursday  bool
	Notes         string
	AssignedTech  string
}

// JobVisit pairs a job with the property it services.
type JobVisit struct {
	Job      *MonthJob
	Property *Property
}

// EffectiveDuration returns the service duration in hours, applying the
// default when the job carries no positive value.
func (j *MonthJob) EffectiveDuration() float64 {
	if j.DurationHours > 0 {
		return j.DurationHours
	}
	return DefaultDurationHours
}

// EffectivePriority returns the sort priority, defaulting when absent.
func (j *MonthJob) EffectivePriority() int {
	if j.Priority != nil {
		return *j.Priority
	}
	return DefaultPriority
}

// AssignedTo reports whether the job is eligible for the named technician.
// A blank assignment means any technician may take it.
func (j *MonthJob) AssignedTo(tech string) bool {
	val := strings.TrimSpace(j.AssignedTech)
	if val == "" {
		return true
	}
	return strings.EqualFold(val, strings.TrimSpace(tech))
}

// IsPM reports whether the job's type reads as preventive maintenance.
func (j *MonthJob) IsPM() bool {
	return IsPMLike(j.Type)
}

var pmSignals = []string{
	"pm", "preventive", "maintenance", "monthly", "bi month", "bi-month", "bimonth",
	"bi monthly", "quarter", "qtr", "semiannual", "semi-annual", "biannual", "annual", "weekly",
}

var pmExclusions = []string{"repair", "service call", "emergency"}

// IsPMLike classifies a free-text job type as preventive maintenance.
// Repair/emergency language wins over PM keywords when both occur.
func IsPMLike(label string) bool {
	if label == "" {
		return false
	}
	s := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	for _, x := range pmExclusions {
		if strings.Contains(s, x) {
			return false
		}
	}
	for _, sig := range pmSignals {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
