package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"field-service-scheduler/internal/domain"
)

// WriteCSV renders a computed schedule as CSV: one row per real stop in
// date order. Synthetic day notes are excluded.
func WriteCSV(w io.Writer, days map[string][]domain.Placed) error {
	cw := csv.NewWriter(w)

	header := []string{"Date", "Property", "Type", "Start", "End", "DriveFromPrev(min)", "Reasoning"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write schedule csv: header: %w", err)
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		for _, p := range days[d] {
			if p.IsNote() {
				continue
			}
			row := []string{
				d,
				p.Property,
				p.Type,
				p.Start.Format("15:04"),
				p.End.Format("15:04"),
				fmt.Sprintf("%.1f", p.DriveMinFromPrev),
				p.Reasoning,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write schedule csv: row for %s: %w", d, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write schedule csv: flush: %w", err)
	}
	return nil
}
