package services

import (
	"fmt"
	"slices"

	"field-service-scheduler/internal/domain"
)

// Unit is one element of the scheduling pool: either a single job visit or
// a campus bundle. Exactly one of the two fields is set.
type Unit struct {
	Visit  *domain.JobVisit
	Bundle *domain.Bundle
}

// IsBundle reports whether the unit is a campus bundle.
func (u Unit) IsBundle() bool { return u.Bundle != nil }

// Anchor returns the property used for first-leg drive accounting: the
// bundle anchor, or the visit's own property.
func (u Unit) Anchor() *domain.Property {
	if u.Bundle != nil {
		return u.Bundle.Anchor
	}
	return u.Visit.Property
}

// PMNeed is the PM-count this unit consumes from a day's cap if placed.
func (u Unit) PMNeed() int {
	if u.Bundle != nil {
		return u.Bundle.PMCount
	}
	if u.Visit.Job.IsPM() {
		return 1
	}
	return 0
}

// day constraints, merged for bundles.
func (u Unit) constraints() (fixedDate string, lastThursday bool, phase string) {
	if u.Bundle != nil {
		return u.Bundle.FixedDate, u.Bundle.LastThursday, u.Bundle.Phase
	}
	return u.Visit.Job.FixedDate, u.Visit.Job.LastThursday, u.Visit.Job.Phase
}

// MergeBundle computes composite constraints for a set of campus members.
// It returns nil when the members cannot coexist as one stop sequence:
// conflicting non-blank fixed dates, or an empty time-window intersection.
// Callers then schedule the members individually instead.
func MergeBundle(members []domain.JobVisit) *domain.Bundle {
	if len(members) == 0 {
		return nil
	}

	totalHours := 0.0
	pmCount := 0
	for _, m := range members {
		totalHours += m.Job.EffectiveDuration()
		if m.Job.IsPM() {
			pmCount++
		}
	}

	// Fixed date: all non-blank values must agree.
	fixed := ""
	for _, m := range members {
		fd := m.Job.FixedDate
		if fd == "" {
			continue
		}
		if fixed != "" && fixed != fd {
			return nil
		}
		fixed = fd
	}

	// Last Thursday: required only if every member requires it.
	lastThu := true
	for _, m := range members {
		if !m.Job.LastThursday {
			lastThu = false
			break
		}
	}

	// Phase: kept only when all non-blank phases are the same one.
	// Compared normalized, the same way day eligibility reads them.
	phase := ""
	uniform := true
	for _, m := range members {
		p := normPhase(m.Job.Phase)
		if p == "" {
			continue
		}
		if phase != "" && phase != p {
			uniform = false
			break
		}
		phase = p
	}
	if !uniform {
		phase = ""
	}

	// Time window: max of starts, min of ends. Empty intersection rejects.
	winStart, winEnd := "", ""
	startMin, endMin := -1, -1
	for _, m := range members {
		if v, ok := domain.ParseClock(m.Job.WindowStart); ok && v > startMin {
			startMin = v
		}
		if v, ok := domain.ParseClock(m.Job.WindowEnd); ok && (endMin < 0 || v < endMin) {
			endMin = v
		}
	}
	if startMin >= 0 && endMin >= 0 && startMin > endMin {
		return nil
	}
	if startMin >= 0 {
		winStart = domain.FormatClock(startMin)
	}
	if endMin >= 0 {
		winEnd = domain.FormatClock(endMin)
	}

	return &domain.Bundle{
		Members:      members,
		TotalHours:   totalHours,
		TypeLabel:    fmt.Sprintf("PM Bundle (%d)", len(members)),
		Phase:        phase,
		WindowStart:  winStart,
		WindowEnd:    winEnd,
		FixedDate:    fixed,
		LastThursday: lastThu,
		Anchor:       members[0].Property, // replaced with the farthest member by BuildBundles
		PMCount:      pmCount,
	}
}

// BuildBundles groups visits into campus bundles by pure proximity: any
// visits whose properties chain together within CampusRadiusMiles become one
// bundle. Visits without coordinates stay singles. The result is sorted
// farthest-from-office first so distant work is considered for day anchors.
func BuildBundles(visits []domain.JobVisit, office *domain.Office) []Unit {
	n := len(visits)
	out := make([]Unit, 0, n)
	if n == 0 {
		return out
	}

	coords := make([]*domain.Coordinates, n)
	for i, v := range visits {
		if c, ok := v.Property.Coord(); ok {
			coords[i] = &c
		}
	}

	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		if coords[i] == nil {
			continue
		}
		for j := i + 1; j < n; j++ {
			if coords[j] == nil {
				continue
			}
			if HaversineMiles(*coords[i], *coords[j]) <= CampusRadiusMiles {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		seen[i] = true
		if coords[i] == nil {
			out = append(out, Unit{Visit: &visits[i]})
			continue
		}

		// Depth-first component walk; transitive chaining is allowed.
		comp := []int{i}
		stack := []int{i}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, w := range adj[v] {
				if !seen[w] {
					seen[w] = true
					stack = append(stack, w)
					comp = append(comp, w)
				}
			}
		}

		if len(comp) == 1 {
			out = append(out, Unit{Visit: &visits[i]})
			continue
		}

		members := make([]domain.JobVisit, 0, len(comp))
		for _, k := range comp {
			members = append(members, visits[k])
		}
		b := MergeBundle(members)
		if b == nil {
			// Constraint conflict: schedule the campus members individually.
			for _, k := range comp {
				out = append(out, Unit{Visit: &visits[k]})
			}
			continue
		}

		// Anchor: farthest member from the office, first maximal one wins.
		best := b.Anchor
		bestDist := OfficeDistance(best, office)
		for _, m := range members[1:] {
			if d := OfficeDistance(m.Property, office); d > bestDist {
				best, bestDist = m.Property, d
			}
		}
		b.Anchor = best
		out = append(out, Unit{Bundle: b})
	}

	slices.SortStableFunc(out, func(a, b Unit) int {
		da := OfficeDistance(a.Anchor(), office)
		db := OfficeDistance(b.Anchor(), office)
		if da > db {
			return -1
		}
		if da < db {
			return 1
		}
		return 0
	})
	return out
}
