package domain

// Bundle is an ephemeral grouping of jobs whose properties form one campus.
// Scheduling constraints are the merge of the members' constraints: summed
// hours, intersected time window, agreed fixed date, unanimous last-Thursday
// requirement, and a shared phase when all members carry the same one.
type Bundle struct {
	Members      []JobVisit
	TotalHours   float64
	TypeLabel    string
	Phase        string
	WindowStart  string
	WindowEnd    string
	FixedDate    string
	LastThursday bool
	Anchor       *Property // farthest member from the office
	PMCount      int
}
