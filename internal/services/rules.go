package services

import "time"

// Workday and driving profile constants shared by the placement engine.
const (
	StartHour   = 7
	StartMinute = 30

	LunchWindowStartMin = 10*60 + 30 // 10:30
	LunchWindowEndMin   = 11*60 + 30 // 11:30
	LunchMinutes        = 30

	CitySpeedMPH      = 22.0
	HighwaySpeedMPH   = 38.0
	HighwayThreshMi   = 18.0
	CampusRadiusMiles = 0.90

	backtrackTolMiles  = 0.01 // monotone "closer to office" tolerance
	nonMonotoneAllowMi = 2.0  // small non-monotone step allowance
	lambdaProgress     = 0.8  // weight for office progress in backhaul scoring
)

// Long-haul day policy (first stop far from office, e.g. a San Diego run).
const (
	LongHaulThresholdMiles = 80.0
	LongHaulMinPMs         = 2
	LongHaulMaxPMs         = 3
	LongHaulOTBufferMin    = 90
	LongHaulClusterRadius  = 20.0
)

// IsWorkday reports whether the date falls Monday through Friday.
func IsWorkday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// InPhase reports whether a day of month satisfies a phase tag.
// Blank, "any" and "weekly" are unconstrained.
func InPhase(d time.Time, phase string) bool {
	switch phase {
	case "", "any", "weekly":
		return true
	}
	day := d.Day()
	switch phase {
	case "early":
		return day >= 1 && day <= 10
	case "mid":
		return day >= 11 && day <= 20
	case "late":
		return day >= 21
	}
	return true
}

// IsLastThursday reports whether d is the last Thursday of its month.
func IsLastThursday(d time.Time) bool {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	lastDay := first.AddDate(0, 1, -1)
	offset := (int(lastDay.Weekday()) - int(time.Thursday) + 7) % 7
	lastThu := lastDay.AddDate(0, 0, -offset)
	return d.Year() == lastThu.Year() && d.YearDay() == lastThu.YearDay()
}

// MonthDays lists every calendar day of the given month at midnight UTC.
func MonthDays(year int, month time.Month) []time.Time {
	var out []time.Time
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Month() == month {
		out = append(out, d)
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// FirstNWorkdays returns the first n non-holiday workdays of the month.
func FirstNWorkdays(year int, month time.Month, holidays map[string]struct{}, n int) []time.Time {
	var out []time.Time
	for _, d := range MonthDays(year, month) {
		if !IsWorkday(d) {
			continue
		}
		if _, ok := holidays[d.Format("2006-01-02")]; ok {
			continue
		}
		out = append(out, d)
		if len(out) >= n {
			break
		}
	}
	return out
}
