// Package history buckets classified events by season and derives the
// per-skill tallies the reconstruction walks over.
package history

import (
	"fmt"
	"sort"

	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/skill"
)

// Aggregate is the season-bucketed view of one entity's events.
type Aggregate struct {
	BySeason      map[int][]model.GainEvent
	ChipsBySeason map[int][]model.ChipEvent
	// Totals counts gains per skill over all seasons, Unknown included.
	Totals map[skill.Skill]int
	Total  int
	// FirstMaxed is the earliest season each known skill was flagged maxed.
	FirstMaxed map[skill.Skill]int

	earliestGain     int
	hasGains         bool
	earliestTransfer int
	hasTransfers     bool
}

// Build aggregates gains and chips. transferSeasons lists the season of every
// transfer record; only its minimum matters.
func Build(gains []model.GainEvent, chips []model.ChipEvent, transferSeasons []int) *Aggregate {
	a := &Aggregate{
		BySeason:      make(map[int][]model.GainEvent),
		ChipsBySeason: make(map[int][]model.ChipEvent),
		Totals:        make(map[skill.Skill]int),
		FirstMaxed:    make(map[skill.Skill]int),
	}
	for _, g := range gains {
		a.BySeason[g.Season] = append(a.BySeason[g.Season], g)
		a.Totals[g.Skill]++
		a.Total++
		if g.Maxed && g.Skill.Known() {
			if s, ok := a.FirstMaxed[g.Skill]; !ok || g.Season < s {
				a.FirstMaxed[g.Skill] = g.Season
			}
		}
		if !a.hasGains || g.Season < a.earliestGain {
			a.earliestGain = g.Season
			a.hasGains = true
		}
	}
	for _, c := range chips {
		a.ChipsBySeason[c.Season] = append(a.ChipsBySeason[c.Season], c)
	}
	for _, s := range transferSeasons {
		if !a.hasTransfers || s < a.earliestTransfer {
			a.earliestTransfer = s
			a.hasTransfers = true
		}
	}
	return a
}

// EarliestGain returns the first season with a gain.
func (a *Aggregate) EarliestGain() (int, bool) { return a.earliestGain, a.hasGains }

// EarliestTransfer returns the first season with a transfer.
func (a *Aggregate) EarliestTransfer() (int, bool) { return a.earliestTransfer, a.hasTransfers }

// Earliest is the first season the reconstruction covers: the smaller of the
// earliest gain and earliest transfer, kept within [1, current]. With neither,
// it is the current season.
func (a *Aggregate) Earliest(current int) int {
	var (
		e     int
		found bool
	)
	if a.hasGains {
		e, found = a.earliestGain, true
	}
	if a.hasTransfers && (!found || a.earliestTransfer < e) {
		e, found = a.earliestTransfer, true
	}
	if !found {
		return current
	}
	return min(max(e, 1), current)
}

// SeasonGains tallies the known-skill gains of season s.
func (a *Aggregate) SeasonGains(s int) skill.Vector {
	var v skill.Vector
	for _, g := range a.BySeason[s] {
		v.Add(g.Skill, 1)
	}
	return v
}

// UnknownGains counts gains of season s whose skill is not in the table.
func (a *Aggregate) UnknownGains(s int) int {
	n := 0
	for _, g := range a.BySeason[s] {
		if !g.Skill.Known() {
			n++
		}
	}
	return n
}

// GainsBySeason returns the known-skill tallies for every season in [from, to].
func (a *Aggregate) GainsBySeason(from, to int) map[int]skill.Vector {
	out := make(map[int]skill.Vector, max(to-from+1, 0))
	for s := from; s <= to; s++ {
		out[s] = a.SeasonGains(s)
	}
	return out
}

// Seasons lists seasons with at least one gain, ascending.
func (a *Aggregate) Seasons() []int {
	out := make([]int, 0, len(a.BySeason))
	for s := range a.BySeason {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// SkillCount pairs a skill with a tally.
type SkillCount struct {
	Skill skill.Skill `json:"skill"`
	Count int         `json:"count"`
}

// SortedTotals lists non-zero totals by count descending, ties in skill order
// with Unknown last.
func (a *Aggregate) SortedTotals() []SkillCount {
	out := make([]SkillCount, 0, len(a.Totals))
	for s, n := range a.Totals {
		if n > 0 {
			out = append(out, SkillCount{Skill: s, Count: n})
		}
	}
	rank := func(s skill.Skill) int {
		if !s.Known() {
			return skill.Count
		}
		return s.Index()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return rank(out[i].Skill) < rank(out[j].Skill)
	})
	return out
}

// LogEntry is one season of the chronological gains log.
type LogEntry struct {
	Season int               `json:"season"`
	Label  string            `json:"label"`
	Gains  []model.GainEvent `json:"gains"`
	Chips  []model.ChipEvent `json:"chips,omitempty"`
}

// Log lists every season with gains in ascending order, labelled with the
// historical age when currentAge is known.
func (a *Aggregate) Log(currentAge, currentSeason int) []LogEntry {
	seasons := a.Seasons()
	out := make([]LogEntry, 0, len(seasons))
	for _, s := range seasons {
		label := fmt.Sprintf("Season %d", s)
		if age, ok := season.HistoricalAge(currentAge, currentSeason, s); ok {
			label = fmt.Sprintf("Season %d (Age %d)", s, age)
		}
		out = append(out, LogEntry{
			Season: s,
			Label:  label,
			Gains:  a.BySeason[s],
			Chips:  a.ChipsBySeason[s],
		})
	}
	return out
}

// Chips lists all chips in date order, whether or not their season has gains.
func (a *Aggregate) Chips() []model.ChipEvent {
	var out []model.ChipEvent
	for _, cs := range a.ChipsBySeason {
		out = append(out, cs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
