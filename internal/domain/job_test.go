package domain

import "testing"

func TestIsPMLike(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"PM", true},
		{"Monthly PM", true},
		{"  Quarterly   Maintenance ", true},
		{"Bi-Monthly", true},
		{"Semi-Annual", true},
		{"annual inspection", true},
		{"", false},
		{"Repair", false},
		{"PM repair follow-up", false},
		{"Emergency PM", false},
		{"Service Call", false},
		{"door adjustment", false},
	}

	for _, c := range cases {
		if got := IsPMLike(c.label); got != c.want {
			t.Errorf("IsPMLike(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestAssignedTo(t *testing.T) {
	j := &MonthJob{AssignedTech: ""}
	if !j.AssignedTo("Amador") {
		t.Error("blank assignment should be eligible for any technician")
	}

	j.AssignedTech = " amador "
	if !j.AssignedTo("Amador") {
		t.Error("assignment match should be case-insensitive and trimmed")
	}

	j.AssignedTech = "Juan"
	if j.AssignedTo("Amador") {
		t.Error("job assigned to another technician should not be eligible")
	}
}

func TestEffectiveDuration(t *testing.T) {
	j := &MonthJob{DurationHours: 2.5}
	if got := j.EffectiveDuration(); got != 2.5 {
		t.Errorf("EffectiveDuration = %v, want 2.5", got)
	}

	j.DurationHours = 0
	if got := j.EffectiveDuration(); got != DefaultDurationHours {
		t.Errorf("EffectiveDuration = %v, want default %v", got, DefaultDurationHours)
	}

	j.DurationHours = -1
	if got := j.EffectiveDuration(); got != DefaultDurationHours {
		t.Errorf("EffectiveDuration = %v, want default %v", got, DefaultDurationHours)
	}
}

func TestParseClock(t *testing.T) {
	if m, ok := ParseClock("08:30"); !ok || m != 8*60+30 {
		t.Errorf("ParseClock(08:30) = %d, %v", m, ok)
	}
	if m, ok := ParseClock("00:00"); !ok || m != 0 {
		t.Errorf("ParseClock(00:00) = %d, %v", m, ok)
	}

	for _, bad := range []string{"", "25:00", "12:75", "noon", "12"} {
		if _, ok := ParseClock(bad); ok {
			t.Errorf("ParseClock(%q) unexpectedly ok", bad)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(9*60 + 5); got != "09:05" {
		t.Errorf("FormatClock = %q, want 09:05", got)
	}
}

func TestParseDay(t *testing.T) {
	d, ok := ParseDay("2026-03-26")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 26 {
		t.Errorf("ParseDay = %v", d)
	}

	for _, bad := range []string{"", "03/26/2026", "2026-13-01", "soon"} {
		if _, ok := ParseDay(bad); ok {
			t.Errorf("ParseDay(%q) unexpectedly ok", bad)
		}
	}
}
