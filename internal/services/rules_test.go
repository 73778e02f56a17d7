package services

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkday(t *testing.T) {
	if !IsWorkday(day(2026, time.March, 2)) { // Monday
		t.Error("Monday should be a workday")
	}
	if IsWorkday(day(2026, time.March, 7)) { // Saturday
		t.Error("Saturday should not be a workday")
	}
	if IsWorkday(day(2026, time.March, 8)) { // Sunday
		t.Error("Sunday should not be a workday")
	}
}

func TestInPhase(t *testing.T) {
	cases := []struct {
		dom   int
		phase string
		want  bool
	}{
		{5, "early", true},
		{10, "early", true},
		{11, "early", false},
		{11, "mid", true},
		{20, "mid", true},
		{21, "mid", false},
		{21, "late", true},
		{31, "late", true},
		{20, "late", false},
		{3, "", true},
		{3, "any", true},
		{3, "weekly", true},
		{3, "unknown-tag", true},
	}
	for _, c := range cases {
		d := day(2026, time.March, c.dom)
		if got := InPhase(d, c.phase); got != c.want {
			t.Errorf("InPhase(day %d, %q) = %v, want %v", c.dom, c.phase, got, c.want)
		}
	}
}

func TestIsLastThursday(t *testing.T) {
	// March 2026: the 26th is the last Thursday.
	if !IsLastThursday(day(2026, time.March, 26)) {
		t.Error("2026-03-26 should be the last Thursday")
	}
	if IsLastThursday(day(2026, time.March, 19)) {
		t.Error("2026-03-19 is a Thursday but not the last one")
	}
	if IsLastThursday(day(2026, time.March, 27)) {
		t.Error("2026-03-27 is a Friday")
	}
}

func TestMonthDays(t *testing.T) {
	days := MonthDays(2026, time.February)
	if len(days) != 28 {
		t.Fatalf("February 2026 has %d days, want 28", len(days))
	}
	if days[0].Day() != 1 || days[27].Day() != 28 {
		t.Errorf("unexpected endpoints: %v .. %v", days[0], days[27])
	}

	leap := MonthDays(2028, time.February)
	if len(leap) != 29 {
		t.Errorf("February 2028 has %d days, want 29", len(leap))
	}
}

func TestFirstNWorkdays(t *testing.T) {
	// March 2026 starts on a Sunday; first workday is Monday the 2nd.
	got := FirstNWorkdays(2026, time.March, nil, 3)
	if len(got) != 3 {
		t.Fatalf("got %d days, want 3", len(got))
	}
	for i, want := range []int{2, 3, 4} {
		if got[i].Day() != want {
			t.Errorf("day %d = %d, want %d", i, got[i].Day(), want)
		}
	}

	// A holiday on the 3rd pushes the window out by one workday.
	holidays := map[string]struct{}{"2026-03-03": {}}
	got = FirstNWorkdays(2026, time.March, holidays, 3)
	for i, want := range []int{2, 4, 5} {
		if got[i].Day() != want {
			t.Errorf("with holiday, day %d = %d, want %d", i, got[i].Day(), want)
		}
	}
}
