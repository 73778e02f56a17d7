package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"field-service-scheduler/internal/domain"
	"field-service-scheduler/internal/ports"
)

type stubRepo struct {
	office *domain.Office
	tech   *domain.Technician
	visits []domain.JobVisit
}

func (s *stubRepo) FetchOffice(_ context.Context, region string) (*domain.Office, error) {
	if s.office == nil || s.office.Region != region {
		return nil, fmt.Errorf("office %q: %w", region, ports.ErrNotFound)
	}
	return s.office, nil
}

func (s *stubRepo) FetchTechnician(_ context.Context, name string) (*domain.Technician, error) {
	if s.tech == nil || s.tech.Name != name {
		return nil, fmt.Errorf("technician %q: %w", name, ports.ErrNotFound)
	}
	return s.tech, nil
}

func (s *stubRepo) ListMonthJobs(_ context.Context, _, _ string) ([]domain.JobVisit, error) {
	return s.visits, nil
}

func testTech(maxPMs int) *domain.Technician {
	return &domain.Technician{
		Name:         "Amador",
		Region:       "LA",
		FirstAppt:    "08:30",
		LatestReturn: "15:30",
		MaxPMsPerDay: maxPMs,
	}
}

func marchRequest() ScheduleRequest {
	return ScheduleRequest{Month: "2026-03", Region: "LA", Technician: "Amador"}
}

func realStops(plan []domain.Placed) []domain.Placed {
	out := make([]domain.Placed, 0, len(plan))
	for _, p := range plan {
		if !p.IsNote() {
			out = append(out, p)
		}
	}
	return out
}

func placedIDCounts(s *Schedule) map[int]int {
	counts := map[int]int{}
	for _, plan := range s.Days {
		for _, p := range realStops(plan) {
			counts[p.JobID]++
		}
	}
	return counts
}

func at(day string, hh, mm int) time.Time {
	d, _ := domain.ParseDay(day)
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, d.Location())
}

func skipsContain(s *Schedule, substr string) bool {
	for _, sk := range s.Skips {
		if strings.Contains(sk, substr) {
			return true
		}
	}
	return false
}

func TestScheduleMonthInvalidMonth(t *testing.T) {
	repo := &stubRepo{office: laOffice(), tech: testTech(3)}
	req := marchRequest()
	req.Month = "March 2026"
	if _, err := ScheduleMonth(context.Background(), repo, req); err == nil {
		t.Fatal("expected an error for a malformed month")
	}
}

func TestScheduleMonthUnknownRegion(t *testing.T) {
	repo := &stubRepo{office: laOffice(), tech: testTech(3)}
	req := marchRequest()
	req.Region = "SF"
	_, err := ScheduleMonth(context.Background(), repo, req)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestScheduleMonthWindowEndRejection(t *testing.T) {
	// 16.6 miles out at city speed is about 45 minutes of driving; with the
	// 08:30 first appointment the arrival lands past the 09:00 window end.
	p := prop(1, "Early Bird Plant", 34.24, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", WindowEnd: "09:00"}, p),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	if counts := placedIDCounts(s); len(counts) != 0 {
		t.Errorf("nothing should be placed, got %v", counts)
	}
	if !skipsContain(s, "time window end exceeded") {
		t.Errorf("skips = %v, want a window-end rejection", s.Skips)
	}
	// Every workday reports that nothing fit the first stop.
	plan := s.Days["2026-03-02"]
	if len(plan) != 1 || !plan[0].IsNote() {
		t.Fatalf("day plan = %+v, want a single note", plan)
	}
	if plan[0].Reasoning != "No eligible job fit constraints for first stop." {
		t.Errorf("note = %q", plan[0].Reasoning)
	}
}

func TestScheduleMonthPMCap(t *testing.T) {
	far := prop(1, "Far Plant", 34.15, -118.0)
	mid := prop(2, "Mid Plant", 34.10, -118.0)
	near := prop(3, "Near Plant", 34.05, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(8),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM"}, far),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM"}, mid),
			visit(&domain.MonthJob{ID: 3, Type: "Monthly PM"}, near),
		},
	}

	req := marchRequest()
	req.PMCapDefault = 2
	s, err := ScheduleMonth(context.Background(), repo, req)
	if err != nil {
		t.Fatal(err)
	}

	day1 := realStops(s.Days["2026-03-02"])
	if len(day1) != 2 {
		t.Fatalf("first day has %d stops, want 2 (PM cap)", len(day1))
	}
	// Farthest-first anchor, then backhaul toward the office.
	if day1[0].JobID != 1 || day1[1].JobID != 2 {
		t.Errorf("first day order = %d, %d; want 1, 2", day1[0].JobID, day1[1].JobID)
	}
	// The second arrival falls in the lunch window and absorbs the break.
	if day1[1].Start.Before(at("2026-03-02", 11, 0)) {
		t.Errorf("second stop start = %v, want pushed past lunch", day1[1].Start)
	}

	day2 := realStops(s.Days["2026-03-03"])
	if len(day2) != 1 || day2[0].JobID != 3 {
		t.Fatalf("second day = %+v, want job 3 alone", day2)
	}

	for id, n := range placedIDCounts(s) {
		if n != 1 {
			t.Errorf("job %d placed %d times", id, n)
		}
	}
}

func TestScheduleMonthLongHaul(t *testing.T) {
	// The anchor sits 95 miles out; a neighbor 5 miles from it is reachable
	// only through the long-haul return extension. The near-office job must
	// wait for the next day.
	anchor := prop(1, "Desert Plant", 35.375, -118.0)
	neighbor := prop(2, "Desert Annex", 35.300, -118.0)
	near := prop(3, "City Plant", 34.05, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", DurationHours: 1.0}, anchor),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM", DurationHours: 1.0}, neighbor),
			visit(&domain.MonthJob{ID: 3, Type: "Monthly PM", DurationHours: 1.0}, near),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	day1 := realStops(s.Days["2026-03-02"])
	if len(day1) != 2 {
		t.Fatalf("long-haul day has %d stops, want 2", len(day1))
	}
	if day1[0].JobID != 1 || day1[1].JobID != 2 {
		t.Errorf("long-haul day order = %d, %d; want 1, 2", day1[0].JobID, day1[1].JobID)
	}

	// Arrival at the anchor lands in the lunch window and takes the break.
	if day1[0].Start.Before(at("2026-03-02", 11, 30)) {
		t.Errorf("anchor start = %v, want at or after 11:30", day1[0].Start)
	}

	// The neighbor's return would blow the base 15:30 bound; it fits only
	// inside the extended long-haul window.
	backMin := DriveMinutes(OfficeDistance(neighbor, repo.office))
	ret := day1[1].End.Add(time.Duration(backMin * float64(time.Minute)))
	if !ret.After(at("2026-03-02", 15, 30)) {
		t.Error("expected the neighbor to need the long-haul extension")
	}
	if ret.After(at("2026-03-02", 17, 0)) {
		t.Errorf("return %v exceeds the extended bound", ret)
	}

	// The near-office job was rejected on the long-haul day and lands next day.
	if !skipsContain(s, "return bound exceeded") {
		t.Errorf("skips = %v, want a return-bound rejection", s.Skips)
	}
	day2 := realStops(s.Days["2026-03-03"])
	if len(day2) != 1 || day2[0].JobID != 3 {
		t.Fatalf("second day = %+v, want job 3 alone", day2)
	}
}

func TestScheduleMonthLongHaulClusterGate(t *testing.T) {
	// Until the long-haul day has two PMs, candidates are restricted to a
	// 20-mile cluster around the first stop. The out-of-cluster job scores
	// better (shorter combined drive plus office progress) and would be
	// picked first without the restriction.
	// Anchor ~95 mi out; annex ~15 mi from it, valley ~30 mi from it.
	anchor := prop(1, "Desert Plant", 35.375, -118.0)
	inCluster := prop(2, "Desert Annex", 35.158, -118.0)
	outCluster := prop(3, "Valley Plant", 34.941, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", DurationHours: 1.0}, anchor),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM", DurationHours: 1.0}, inCluster),
			visit(&domain.MonthJob{ID: 3, Type: "Monthly PM", DurationHours: 1.0}, outCluster),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	day1 := realStops(s.Days["2026-03-02"])
	if len(day1) != 2 {
		t.Fatalf("long-haul day has %d stops, want 2", len(day1))
	}
	if day1[0].JobID != 1 || day1[1].JobID != 2 {
		t.Errorf("long-haul day order = %d, %d; want the clustered job second", day1[0].JobID, day1[1].JobID)
	}

	// Once the minimum is met the out-of-cluster job is considered, but its
	// return no longer fits even the extended bound; it lands next day.
	if !skipsContain(s, "return bound exceeded") {
		t.Errorf("skips = %v, want a return-bound rejection", s.Skips)
	}
	day2 := realStops(s.Days["2026-03-03"])
	if len(day2) != 1 || day2[0].JobID != 3 {
		t.Fatalf("second day = %+v, want job 3 alone", day2)
	}
}

func TestScheduleMonthLongHaulEmptyClusterFallback(t *testing.T) {
	// No candidate lies within the cluster radius of the long-haul anchor;
	// the restriction falls back to the full pool instead of stranding the
	// day after one stop.
	// Anchor ~95 mi out; the only other job ~55 mi from it.
	anchor := prop(1, "Desert Plant", 35.375, -118.0)
	lone := prop(2, "Halfway Plant", 34.579, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", DurationHours: 1.0}, anchor),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM", DurationHours: 1.0}, lone),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	day1 := realStops(s.Days["2026-03-02"])
	if len(day1) != 2 {
		t.Fatalf("long-haul day has %d stops, want 2", len(day1))
	}
	if day1[0].JobID != 1 || day1[1].JobID != 2 {
		t.Errorf("day order = %d, %d; want 1, 2", day1[0].JobID, day1[1].JobID)
	}
}

func TestScheduleMonthFixedDate(t *testing.T) {
	p := prop(1, "Contract Site", 34.05, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", FixedDate: "2026-03-12"}, p),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	for key, plan := range s.Days {
		stops := realStops(plan)
		if key == "2026-03-12" {
			if len(stops) != 1 || stops[0].JobID != 1 {
				t.Errorf("fixed date plan = %+v", plan)
			}
			continue
		}
		if len(stops) != 0 {
			t.Errorf("job placed on %s, want only 2026-03-12", key)
		}
		if len(plan) != 1 || plan[0].Reasoning != "No eligible job for this date." {
			t.Errorf("day %s = %+v, want the empty-pool note", key, plan)
		}
	}
}

func TestScheduleMonthLastThursday(t *testing.T) {
	p := prop(1, "Board Room Chiller", 34.05, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", LastThursday: true}, p),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	for key, plan := range s.Days {
		stops := realStops(plan)
		if key == "2026-03-26" {
			if len(stops) != 1 || stops[0].JobID != 1 {
				t.Errorf("last Thursday plan = %+v", plan)
			}
		} else if len(stops) != 0 {
			t.Errorf("job placed on %s, want only the last Thursday", key)
		}
	}
}

func TestScheduleMonthHolidayAndHeldOpen(t *testing.T) {
	p := prop(1, "City Plant", 34.05, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM"}, p),
		},
	}

	req := marchRequest()
	req.HoldOpenWorkdays = 2
	req.Holidays = map[string]struct{}{"2026-03-04": {}}
	s, err := ScheduleMonth(context.Background(), repo, req)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"2026-03-02", "2026-03-03"} {
		plan := s.Days[key]
		if len(plan) != 1 || plan[0].Reasoning != "First 2 working days held open" {
			t.Errorf("day %s = %+v, want held-open note", key, plan)
		}
	}
	if plan := s.Days["2026-03-04"]; len(plan) != 1 || plan[0].Reasoning != "Holiday" {
		t.Errorf("holiday day = %+v", plan)
	}

	day := realStops(s.Days["2026-03-05"])
	if len(day) != 1 || day[0].JobID != 1 {
		t.Fatalf("first open day = %+v, want job 1", day)
	}
}

func TestScheduleMonthAssignedTechFilter(t *testing.T) {
	mine := prop(1, "Mine", 34.05, -118.0)
	theirs := prop(2, "Theirs", 34.06, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM", AssignedTech: "Amador"}, mine),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM", AssignedTech: "Juan"}, theirs),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	counts := placedIDCounts(s)
	if counts[1] != 1 {
		t.Errorf("assigned job placed %d times, want 1", counts[1])
	}
	if counts[2] != 0 {
		t.Error("another technician's job must not be placed")
	}
}

func TestScheduleMonthBundleExpansion(t *testing.T) {
	p1 := prop(11, "North Tower", 34.100, -118.0)
	p2 := prop(12, "South Tower", 34.107, -118.0)
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(3),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 11, Type: "Monthly PM", DurationHours: 1.0}, p1),
			visit(&domain.MonthJob{ID: 12, Type: "Monthly PM", DurationHours: 1.0}, p2),
		},
	}

	s, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	day := realStops(s.Days["2026-03-02"])
	if len(day) != 2 {
		t.Fatalf("campus day has %d stops, want 2", len(day))
	}
	// Anchor member (farther from the office) goes first and carries the
	// true first-leg drive; the second stop is a short in-campus hop.
	if day[0].JobID != 12 || day[1].JobID != 11 {
		t.Errorf("bundle order = %d, %d; want 12, 11", day[0].JobID, day[1].JobID)
	}
	if day[0].DriveMinFromPrev < 10 {
		t.Errorf("first member drive = %v min, want the full first leg", day[0].DriveMinFromPrev)
	}
	if day[1].DriveMinFromPrev > 2 {
		t.Errorf("in-campus hop drive = %v min, want under 2", day[1].DriveMinFromPrev)
	}
	if !strings.Contains(day[1].Reasoning, "in-campus hop") {
		t.Errorf("second member reasoning = %q", day[1].Reasoning)
	}
	if day[1].Start.Before(day[0].End) {
		t.Error("bundle members must be contiguous in time")
	}
}

func TestScheduleMonthDeterministic(t *testing.T) {
	repo := &stubRepo{
		office: laOffice(),
		tech:   testTech(2),
		visits: []domain.JobVisit{
			visit(&domain.MonthJob{ID: 1, Type: "Monthly PM"}, prop(1, "A", 34.15, -118.0)),
			visit(&domain.MonthJob{ID: 2, Type: "Monthly PM"}, prop(2, "B", 34.10, -118.0)),
			visit(&domain.MonthJob{ID: 3, Type: "Monthly PM"}, prop(3, "C", 34.05, -118.0)),
			visit(&domain.MonthJob{ID: 4, Type: "Monthly PM", Phase: "late"}, prop(4, "D", 34.06, -118.05)),
		},
	}

	first, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := ScheduleMonth(context.Background(), repo, marchRequest())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Days, second.Days) {
		t.Error("two runs over the same inputs should produce identical plans")
	}
	if !reflect.DeepEqual(first.Skips, second.Skips) {
		t.Error("two runs over the same inputs should produce identical skips")
	}
}
