package domain

import "time"

// NoteJobID marks synthetic day notes (holiday, held open, nothing fit).
const NoteJobID = -1

// Placed is one scheduled stop in a day's route, with full timing and
// driving-time provenance. Bundle members expand to one Placed each.
type Placed struct {
	JobID            int
	Property         string
	Customer         string
	Type             string
	Start            time.Time
	End              time.Time
	DriveMinFromPrev float64
	Reasoning        string
}

// IsNote reports whether the record is a synthetic day note rather than a
// physically visited stop.
func (p Placed) IsNote() bool { return p.JobID == NoteJobID }

// DayNote builds a zero-length synthetic record at midnight of the given day.
func DayNote(day time.Time, reason string) Placed {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Placed{
		JobID:     NoteJobID,
		Property:  "--",
		Customer:  "--",
		Type:      "NOTE",
		Start:     midnight,
		End:       midnight,
		Reasoning: reason,
	}
}
