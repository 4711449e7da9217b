package offline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/internal/domain/skill"
)

// RenderText writes a human-readable report: the snapshot table, the gains
// log, transfers and the scout summary.
func RenderText(w io.Writer, r *app.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s (%s)\n", r.Name, r.EntityID)
	fmt.Fprintf(tw, "Season %d\tAge %d\tSpeed %s\tGains %d\n\n", r.CurrentSeason, r.CurrentAge, r.SpeedLabel, r.TotalGains)

	header := []string{"Season"}
	for _, s := range skill.Ordered() {
		header = append(header, abbrev(s))
	}
	header = append(header, "Balls", "+")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, snap := range r.Snapshots {
		row := []string{snap.Label}
		for _, s := range skill.Ordered() {
			row = append(row, strconv.Itoa(snap.Distribution.Get(s)))
		}
		row = append(row, strconv.Itoa(snap.Balls), strconv.Itoa(snap.Increase.Total()))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if len(r.Log) > 0 {
		fmt.Fprintln(tw, "\nGains")
		for _, entry := range r.Log {
			names := make([]string, 0, len(entry.Gains))
			for _, g := range entry.Gains {
				n := g.Skill.String()
				if g.Maxed {
					n += " (max)"
				}
				names = append(names, n)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", entry.Label, len(entry.Gains), strings.Join(names, ", "))
			for _, c := range entry.Chips {
				fmt.Fprintf(tw, "\tchip\t%s\n", c.Name)
			}
		}
	}

	if len(r.Chips) > 0 {
		fmt.Fprintln(tw, "\nChips")
		for _, c := range r.Chips {
			fmt.Fprintf(tw, "%s\t%s\tSeason %d\t%s\n", c.Date.Format("2006-01-02"), c.Icon.Title, c.Season, c.Icon.Path())
		}
	}

	if len(r.Prices) > 0 {
		fmt.Fprintf(tw, "\nTransfers (%s)\n", r.Currency)
		for _, t := range r.Prices {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", t.Date.Format("2006-01-02"), t.Season, t.From, t.To, t.Display)
		}
	}

	if len(r.Markers) > 0 {
		fmt.Fprintln(tw, "\nPotential")
		for _, m := range r.Markers {
			fmt.Fprintf(tw, "%s\t%s\n", m.Skill, m.Marker)
		}
	}

	if n := r.Skipped.SeriesPoints + r.Skipped.Transfers + r.Skipped.Prices + r.Skipped.ScoutSkills; n > 0 {
		fmt.Fprintf(tw, "\nSkipped %d malformed records\n", n)
	}
	return tw.Flush()
}

// abbrev shortens a skill name to its initials, or three letters for
// single-word names.
func abbrev(s skill.Skill) string {
	words := strings.Fields(s.String())
	if len(words) == 1 {
		w := words[0]
		if len(w) > 3 {
			w = w[:3]
		}
		return w
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteByte(w[0])
	}
	return b.String()
}
