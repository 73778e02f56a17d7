package services

import (
	"fmt"
	"sort"
	"strings"
)

// MaxSkipNotes caps how many raw skip messages a summary lists verbatim.
const MaxSkipNotes = 25

// SummarizeSkips renders skip messages ("Name (reason)") as a diagnostic
// line: the first maxItems messages, then per-reason counts in descending
// order, then an overflow marker. Messages without a parenthesized reason
// count under "other".
func SummarizeSkips(skips []string, maxItems int) string {
	if len(skips) == 0 {
		return ""
	}

	byReason := map[string]int{}
	for _, s := range skips {
		i := strings.Index(s, "(")
		j := strings.LastIndex(s, ")")
		reason := "other"
		if i != -1 && j > i {
			reason = strings.TrimSpace(s[i+1 : j])
		}
		byReason[reason]++
	}

	shown := skips
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}
	extra := len(skips) - len(shown)

	type rc struct {
		reason string
		count  int
	}
	counts := make([]rc, 0, len(byReason))
	for r, c := range byReason {
		counts = append(counts, rc{r, c})
	}
	sort.Slice(counts, func(a, b int) bool {
		if counts[a].count != counts[b].count {
			return counts[a].count > counts[b].count
		}
		return counts[a].reason < counts[b].reason
	})

	var parts []string
	if len(shown) > 0 {
		parts = append(parts, strings.Join(shown, " | "))
	}
	reasonParts := make([]string, 0, len(counts))
	for _, c := range counts {
		reasonParts = append(reasonParts, fmt.Sprintf("%d skipped (%s)", c.count, c.reason))
	}
	parts = append(parts, strings.Join(reasonParts, " ; "))
	if extra > 0 {
		parts = append(parts, fmt.Sprintf("... and %d more skipped.", extra))
	}
	return strings.Join(parts, " | ")
}
