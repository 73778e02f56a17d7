package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"field-service-scheduler/internal/domain"
	"field-service-scheduler/internal/ports"
)

// ScheduleRequest parameterizes one month run for one technician/region.
type ScheduleRequest struct {
	Month      string // "YYYY-MM"
	Region     string
	Technician string

	// PMCapDefault overrides the technician's daily PM cap when positive.
	PMCapDefault int
	// Holidays are skipped dates, ISO "YYYY-MM-DD".
	Holidays map[string]struct{}
	// HoldOpenWorkdays keeps the first N workdays of the month unscheduled.
	HoldOpenWorkdays int
	// PMCapOverrides maps ISO dates to a per-day PM cap.
	PMCapOverrides map[string]int
}

// Schedule is the computed month plan. Days maps ISO dates to ordered
// stops; dates that are not workdays are absent. Skips lists the jobs
// that failed a placement attempt, for diagnostics.
type Schedule struct {
	Days  map[string][]domain.Placed
	Skips []string
}

// SkipSummary aggregates Skips into a count-by-reason diagnostic line.
func (s *Schedule) SkipSummary() string { return SummarizeSkips(s.Skips, MaxSkipNotes) }

// ScheduleMonth assigns the month's jobs to the technician's workdays.
//
// Each workday picks a farthest-first anchor (bundles preferred), then
// works back toward the office scoring candidates by drive time plus
// office progress. A first stop beyond the long-haul threshold activates
// the long-haul policy for the rest of that day. The algorithm is a
// greedy heuristic: once a stop is placed it is never undone, and a
// rejected candidate simply stays in the pool for a later pass or day.
func ScheduleMonth(ctx context.Context, repo ports.ScheduleRepository, req ScheduleRequest) (*Schedule, error) {
	var year int
	var monthNum int
	if _, err := fmt.Sscanf(req.Month, "%d-%d", &year, &monthNum); err != nil || monthNum < 1 || monthNum > 12 {
		return nil, fmt.Errorf("schedule month: invalid month %q (want YYYY-MM)", req.Month)
	}
	month := time.Month(monthNum)

	office, err := repo.FetchOffice(ctx, req.Region)
	if err != nil {
		return nil, fmt.Errorf("schedule month: fetch office for region %q: %w", req.Region, err)
	}
	tech, err := repo.FetchTechnician(ctx, req.Technician)
	if err != nil {
		return nil, fmt.Errorf("schedule month: fetch technician %q: %w", req.Technician, err)
	}

	visits, err := repo.ListMonthJobs(ctx, req.Month, req.Region)
	if err != nil {
		return nil, fmt.Errorf("schedule month: list jobs: %w", err)
	}
	eligible := visits[:0:0]
	for _, v := range visits {
		if v.Job.AssignedTo(req.Technician) {
			eligible = append(eligible, v)
		}
	}

	firstAppt, ok := domain.ParseClock(tech.FirstAppt)
	if !ok {
		firstAppt = StartHour*60 + StartMinute
	}
	latestReturn, ok := domain.ParseClock(tech.LatestReturn)
	if !ok {
		return nil, fmt.Errorf("schedule month: technician %q has invalid latest return %q", tech.Name, tech.LatestReturn)
	}

	baseCap := tech.MaxPMsPerDay
	if req.PMCapDefault > 0 {
		baseCap = req.PMCapDefault
	}

	capByDay := make(map[string]int, len(req.PMCapOverrides))
	for k, v := range req.PMCapOverrides {
		if d, ok := domain.ParseDay(k); ok {
			capByDay[d.Format("2006-01-02")] = v
		}
	}

	holidays := req.Holidays
	if holidays == nil {
		holidays = map[string]struct{}{}
	}
	heldOpen := map[string]struct{}{}
	if req.HoldOpenWorkdays > 0 {
		for _, d := range FirstNWorkdays(year, month, holidays, req.HoldOpenWorkdays) {
			heldOpen[d.Format("2006-01-02")] = struct{}{}
		}
	}

	var officeCoord *domain.Coordinates
	if c, ok := office.Coord(); ok {
		officeCoord = &c
	}

	sched := &monthScheduler{
		office:          office,
		officeCoord:     officeCoord,
		tech:            tech,
		firstApptMin:    firstAppt,
		latestReturnMin: latestReturn,
		remaining:       BuildBundles(eligible, office),
	}

	out := &Schedule{Days: make(map[string][]domain.Placed)}
	for _, d := range MonthDays(year, month) {
		key := d.Format("2006-01-02")
		if !IsWorkday(d) {
			continue
		}
		if _, ok := holidays[key]; ok {
			out.Days[key] = []domain.Placed{domain.DayNote(d, "Holiday")}
			continue
		}
		if _, ok := heldOpen[key]; ok {
			note := fmt.Sprintf("First %d working days held open", req.HoldOpenWorkdays)
			out.Days[key] = []domain.Placed{domain.DayNote(d, note)}
			continue
		}

		capForDay := baseCap
		if v, ok := capByDay[key]; ok {
			capForDay = v
		}

		plan := sched.scheduleDay(d, capForDay)
		if len(plan) > 0 {
			out.Days[key] = plan
		}
	}
	out.Skips = sched.skips
	return out, nil
}

// monthScheduler owns the mutable remaining pool across the month's days.
type monthScheduler struct {
	office          *domain.Office
	officeCoord     *domain.Coordinates
	tech            *domain.Technician
	firstApptMin    int
	latestReturnMin int
	remaining       []Unit
	skips           []string
}

// dayState is the per-day feasibility state machine.
type dayState struct {
	day           time.Time
	clock         time.Time
	at            *domain.Coordinates // last visited location, office at day start
	lunchTaken    bool
	pmCount       int
	prevOffDist   float64
	prevKnown     bool
	longHaul      bool
	longHaulPivot *domain.Property
	minPMs        int
	maxPMs        int
	latestReturn  time.Time
	plan          []domain.Placed
}

// stopRequest describes one stop to check for feasibility: either a real
// job visit or a synthetic bundle arrival. Placement does not care which.
type stopRequest struct {
	jobID       int
	typeLabel   string
	durationHrs float64 // <=0 falls back to the default
	windowStart string
	windowEnd   string
	propName    string
	customer    string
	coord       *domain.Coordinates
}

func requestForVisit(v domain.JobVisit) stopRequest {
	r := stopRequest{
		jobID:       v.Job.ID,
		typeLabel:   v.Job.Type,
		durationHrs: v.Job.DurationHours,
		windowStart: v.Job.WindowStart,
		windowEnd:   v.Job.WindowEnd,
		propName:    v.Property.Name,
		customer:    v.Property.Customer,
	}
	if r.typeLabel == "" {
		r.typeLabel = "monthly"
	}
	if c, ok := v.Property.Coord(); ok {
		r.coord = &c
	}
	return r
}

func requestForBundleArrival(b *domain.Bundle) stopRequest {
	r := stopRequest{
		jobID:       domain.NoteJobID,
		typeLabel:   b.TypeLabel,
		durationHrs: b.TotalHours,
		windowStart: b.WindowStart,
		windowEnd:   b.WindowEnd,
		propName:    "[Campus]",
		customer:    b.Anchor.Customer,
	}
	if c, ok := b.Anchor.Coord(); ok {
		r.coord = &c
	}
	return r
}

func (m *monthScheduler) eligibleOn(u Unit, d time.Time) bool {
	fixed, lastThu, phase := u.constraints()
	if fixed != "" {
		if fd, ok := domain.ParseDay(fixed); ok {
			if fd.Year() != d.Year() || fd.YearDay() != d.YearDay() {
				return false
			}
		}
	}
	if lastThu && !IsLastThursday(d) {
		return false
	}
	if !InPhase(d, normPhase(phase)) {
		return false
	}
	return true
}

func normPhase(p string) string { return strings.ToLower(strings.TrimSpace(p)) }

func (m *monthScheduler) eligiblePool(d time.Time) []Unit {
	pool := make([]Unit, 0, len(m.remaining))
	for _, u := range m.remaining {
		if m.eligibleOn(u, d) {
			pool = append(pool, u)
		}
	}
	return pool
}

func (m *monthScheduler) removeUnit(u Unit) {
	for i := range m.remaining {
		if m.remaining[i] == u {
			m.remaining = append(m.remaining[:i], m.remaining[i+1:]...)
			return
		}
	}
}

func (m *monthScheduler) skip(name, reason string) {
	m.skips = append(m.skips, fmt.Sprintf("%s (%s)", name, reason))
}

// scheduleDay runs the per-day placement algorithm: anchor, long-haul
// activation, then the backhaul loop. It returns the day's stops, or a
// synthetic note when nothing could be scheduled.
func (m *monthScheduler) scheduleDay(d time.Time, capForDay int) []domain.Placed {
	pool := m.eligiblePool(d)
	if len(pool) == 0 {
		return []domain.Placed{domain.DayNote(d, "No eligible job for this date.")}
	}

	st := &dayState{
		day:          d,
		clock:        dayAt(d, StartHour*60+StartMinute),
		at:           m.officeCoord,
		maxPMs:       math.MaxInt32,
		latestReturn: dayAt(d, m.latestReturnMin),
	}

	// Anchor: bundles before singles, farthest from office first. Burn the
	// long drive while the day is fresh instead of leaving it for the
	// return trip.
	slices.SortStableFunc(pool, func(a, b Unit) int {
		if a.IsBundle() != b.IsBundle() {
			if a.IsBundle() {
				return -1
			}
			return 1
		}
		da := OfficeDistance(a.Anchor(), m.office)
		db := OfficeDistance(b.Anchor(), m.office)
		if da > db {
			return -1
		}
		if da < db {
			return 1
		}
		return 0
	})

	placedAnchor := false
	for _, u := range pool {
		if st.pmCount+u.PMNeed() > capForDay {
			m.skip(u.Anchor().Name, "pm cap reached")
			continue
		}
		if u.IsBundle() {
			if m.placeBundleUnit(st, u, "farthest-first (bundle)") {
				placedAnchor = true
			}
		} else {
			if m.placeSingleUnit(st, u, "farthest-first (single)") {
				placedAnchor = true
			}
		}
		if placedAnchor {
			m.activateLongHaul(st, firstRealProperty(u))
			break
		}
	}
	if !placedAnchor {
		return []domain.Placed{domain.DayNote(d, "No eligible job fit constraints for first stop.")}
	}

	// Backhaul: score remaining candidates by drive-from-here plus weighted
	// office distance, preferring strictly-closer stops over soft ones.
	for {
		pool = m.eligiblePool(d)
		if len(pool) == 0 {
			break
		}

		constrained := pool
		if st.longHaul && st.pmCount < st.minPMs {
			clustered := make([]Unit, 0, len(pool))
			for _, u := range pool {
				if WithinCluster(st.longHaulPivot, u.Anchor(), LongHaulClusterRadius) {
					clustered = append(clustered, u)
				}
			}
			// Never deadlock: an empty cluster falls back to the full pool.
			if len(clustered) > 0 {
				constrained = clustered
			}
		}

		type scored struct {
			unit  Unit
			dOff  float64
			score float64
		}
		var closer, soft []scored

		for _, u := range constrained {
			need := u.PMNeed()
			if st.longHaul && st.pmCount+need > st.maxPMs {
				continue
			}
			if st.pmCount+need > capForDay {
				continue
			}

			prop := u.Anchor()
			var cand *domain.Coordinates
			if c, ok := prop.Coord(); ok {
				cand = &c
			}
			drv := LegDistance(st.at, cand)
			drvMin := 0.0
			if drv < unknownLegMiles/10 {
				drvMin = DriveMinutes(drv)
			}
			dOff := OfficeDistance(prop, m.office)
			prog := dOff
			if prog < 0 {
				prog = 0
			}
			sc := scored{unit: u, dOff: dOff, score: drvMin + lambdaProgress*prog}

			switch {
			case !st.prevKnown || dOff < 0:
				soft = append(soft, sc)
			case dOff <= st.prevOffDist-backtrackTolMiles:
				closer = append(closer, sc)
			case dOff <= st.prevOffDist+nonMonotoneAllowMi:
				soft = append(soft, sc)
			}
		}

		byScore := func(a, b scored) int {
			if a.score < b.score {
				return -1
			}
			if a.score > b.score {
				return 1
			}
			return 0
		}
		slices.SortStableFunc(closer, byScore)
		slices.SortStableFunc(soft, byScore)

		picked := false
		for _, set := range []struct {
			cands []scored
			tag   string
		}{{closer, "back-toward-office"}, {soft, "soft-backhaul"}} {
			for _, c := range set.cands {
				if c.unit.IsBundle() {
					if !m.placeBundleBackhaul(st, c.unit, set.tag, c.dOff) {
						continue
					}
				} else {
					if !m.placeSingleBackhaul(st, c.unit, set.tag, c.dOff) {
						continue
					}
				}
				picked = true
				break
			}
			if picked {
				break
			}
		}
		if !picked {
			break
		}
	}

	return st.plan
}

func firstRealProperty(u Unit) *domain.Property {
	if u.Bundle != nil {
		if len(u.Bundle.Members) > 0 {
			return u.Bundle.Members[0].Property
		}
		return u.Bundle.Anchor
	}
	return u.Visit.Property
}

// activateLongHaul switches the day to long-haul policy when the first
// placed stop is beyond the threshold: extended return bound, a minimum PM
// target near the anchor, and a lowered PM ceiling.
func (m *monthScheduler) activateLongHaul(st *dayState, prop *domain.Property) {
	if st.longHaul || prop == nil {
		return
	}
	d := OfficeDistance(prop, m.office)
	if d < 0 || d < LongHaulThresholdMiles {
		return
	}
	st.longHaul = true
	st.longHaulPivot = prop
	st.minPMs = LongHaulMinPMs
	st.maxPMs = LongHaulMaxPMs
	st.latestReturn = dayAt(st.day, m.latestReturnMin).Add(LongHaulOTBufferMin * time.Minute)
}

func (m *monthScheduler) placeSingleUnit(st *dayState, u Unit, tag string) bool {
	pl, reason := m.placeStop(st, requestForVisit(*u.Visit), st.at, st.clock, tag)
	if pl == nil {
		m.skip(u.Visit.Property.Name, reason)
		return false
	}
	st.plan = append(st.plan, *pl)
	if u.Visit.Job.IsPM() {
		st.pmCount++
	}
	st.clock = pl.End
	if c, ok := u.Visit.Property.Coord(); ok {
		st.at = &c
	}
	m.removeUnit(u)
	if d := OfficeDistance(u.Visit.Property, m.office); d >= 0 {
		st.prevOffDist, st.prevKnown = d, true
	}
	return true
}

func (m *monthScheduler) placeBundleUnit(st *dayState, u Unit, tag string) bool {
	seq, reason := m.placeBundle(st, u.Bundle, st.at, tag)
	if seq == nil {
		m.skip(u.Bundle.Anchor.Name, reason)
		return false
	}
	st.plan = append(st.plan, seq...)
	st.pmCount += u.Bundle.PMCount
	last := u.Bundle.Members[len(u.Bundle.Members)-1].Property
	if c, ok := last.Coord(); ok {
		st.at = &c
	}
	m.removeUnit(u)
	if d := OfficeDistance(last, m.office); d >= 0 {
		st.prevOffDist, st.prevKnown = d, true
	}
	return true
}

// Backhaul variants track progress with the candidate's pre-scored office
// distance rather than recomputing it from the final stop.
func (m *monthScheduler) placeSingleBackhaul(st *dayState, u Unit, tag string, dOff float64) bool {
	pl, reason := m.placeStop(st, requestForVisit(*u.Visit), st.at, st.clock, tag)
	if pl == nil {
		m.skip(u.Visit.Property.Name, reason)
		return false
	}
	st.plan = append(st.plan, *pl)
	if u.Visit.Job.IsPM() {
		st.pmCount++
	}
	st.clock = pl.End
	if c, ok := u.Visit.Property.Coord(); ok {
		st.at = &c
	}
	m.removeUnit(u)
	if dOff >= 0 {
		st.prevOffDist, st.prevKnown = dOff, true
	}
	return true
}

func (m *monthScheduler) placeBundleBackhaul(st *dayState, u Unit, tag string, dOff float64) bool {
	seq, reason := m.placeBundle(st, u.Bundle, st.at, tag)
	if seq == nil {
		m.skip(u.Bundle.Anchor.Name, reason)
		return false
	}
	st.plan = append(st.plan, seq...)
	st.pmCount += u.Bundle.PMCount
	last := u.Bundle.Members[len(u.Bundle.Members)-1].Property
	if c, ok := last.Coord(); ok {
		st.at = &c
	}
	m.removeUnit(u)
	if dOff >= 0 {
		st.prevOffDist, st.prevKnown = dOff, true
	}
	return true
}

// placeStop checks door-to-door feasibility for one stop from a given
// location and clock. On rejection it returns a nil record and the reason.
//
// A missing endpoint coordinate is treated as zero drive here; the
// leg-feasibility helper treats it as an infinite leg instead. The
// asymmetry is long-standing, relied on by bundle arrivals, and kept as is.
func (m *monthScheduler) placeStop(st *dayState, req stopRequest, from *domain.Coordinates, clock time.Time, tag string) (*domain.Placed, string) {
	driveMin := 0.0
	driveReason := "no coords, assumed 0 drive"
	if from != nil && req.coord != nil {
		miles := HaversineMiles(*from, *req.coord)
		driveMin = DriveMinutes(miles)
		driveReason = fmt.Sprintf("drive=%.1f min", driveMin)
	}

	earliest := clock
	if fa := dayAt(st.day, m.firstApptMin); fa.After(earliest) {
		earliest = fa
	}
	if ws, ok := domain.ParseClock(req.windowStart); ok {
		if w := dayAt(st.day, ws); w.After(earliest) {
			earliest = w
		}
	}
	arrive := earliest.Add(minutesDur(driveMin))

	// Lunch stays consumed even when the stop is later rejected: the
	// technician has taken the break either way.
	lunchStart := dayAt(st.day, LunchWindowStartMin)
	lunchEnd := dayAt(st.day, LunchWindowEndMin)
	if !st.lunchTaken && !arrive.Before(lunchStart) && !arrive.After(lunchEnd) {
		arrive = arrive.Add(LunchMinutes * time.Minute)
		st.lunchTaken = true
	}

	if we, ok := domain.ParseClock(req.windowEnd); ok {
		if arrive.After(dayAt(st.day, we)) {
			return nil, "time window end exceeded"
		}
	}

	durationHrs := req.durationHrs
	if durationHrs <= 0 {
		durationHrs = domain.DefaultDurationHours
	}
	end := arrive.Add(minutesDur(durationHrs * 60))

	backDrive := 0.0
	if req.coord != nil && m.officeCoord != nil {
		backDrive = DriveMinutes(HaversineMiles(*req.coord, *m.officeCoord))
	}
	if end.Add(minutesDur(backDrive)).After(st.latestReturn) {
		return nil, "return bound exceeded"
	}

	return &domain.Placed{
		JobID:            req.jobID,
		Property:         req.propName,
		Customer:         req.customer,
		Type:             req.typeLabel,
		Start:            arrive,
		End:              end,
		DriveMinFromPrev: driveMin,
		Reasoning:        fmt.Sprintf("%s: %s; %s; windows/lunch/return honored.", req.propName, tag, driveReason),
	}, ""
}

var driveNoteRe = regexp.MustCompile(`drive=\s*[\d.]+\s*min`)

// placeBundle places a whole campus as one contiguous sequence. A synthetic
// arrival stop charges the true first leg and gates the bundle door to
// door; members then expand nearest-to-anchor with in-campus hops. Any
// member failure abandons the entire bundle for this attempt.
func (m *monthScheduler) placeBundle(st *dayState, b *domain.Bundle, from *domain.Coordinates, tag string) ([]domain.Placed, string) {
	first, reason := m.placeStop(st, requestForBundleArrival(b), from, st.clock, tag+" (bundle arrival)")
	if first == nil {
		return nil, reason
	}

	var anchorCoord *domain.Coordinates
	if c, ok := b.Anchor.Coord(); ok {
		anchorCoord = &c
	}

	inner := slices.Clone(b.Members)
	slices.SortStableFunc(inner, func(x, y domain.JobVisit) int {
		var xc, yc *domain.Coordinates
		if c, ok := x.Property.Coord(); ok {
			xc = &c
		}
		if c, ok := y.Property.Coord(); ok {
			yc = &c
		}
		dx := LegDistance(anchorCoord, xc)
		dy := LegDistance(anchorCoord, yc)
		if dx < dy {
			return -1
		}
		if dx > dy {
			return 1
		}
		return 0
	})

	currCoord := anchorCoord
	if currCoord == nil {
		currCoord = from
	}
	currTime := first.Start

	seq := make([]domain.Placed, 0, len(inner))
	for idx, v := range inner {
		pl, reason := m.placeStop(st, requestForVisit(v), currCoord, currTime, "in-campus hop")
		if pl == nil {
			return nil, reason
		}
		if idx == 0 {
			// The first member reports the true first-leg drive, not the
			// near-zero in-campus distance.
			pl.DriveMinFromPrev = math.Round(first.DriveMinFromPrev*10) / 10
			pl.Reasoning = driveNoteRe.ReplaceAllString(pl.Reasoning, fmt.Sprintf("drive=%.1f min", pl.DriveMinFromPrev))
		}
		seq = append(seq, *pl)
		if c, ok := v.Property.Coord(); ok {
			currCoord = &c
		}
		currTime = pl.End
	}

	st.clock = seq[len(seq)-1].End
	return seq, ""
}

func dayAt(d time.Time, minutes int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, d.Location())
}

func minutesDur(min float64) time.Duration {
	return time.Duration(min * float64(time.Minute))
}
