// Package scout models the scouted growth-potential report.
package scout

import (
	"fmt"
	"slices"

	"github.com/okian/trainhist/internal/domain/skill"
)

// MaxStars is the highest tier a report shows.
const MaxStars = 5

const maxTierSkills = 2

// Fragment is one tier of the report as read from the page.
type Fragment struct {
	Stars int `json:"stars" yaml:"stars"`
	// Skills are the skill names listed under the tier.
	Skills []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	// Starred are positions in skill display order marked with a lit star.
	Starred []int `json:"starred,omitempty" yaml:"starred,omitempty"`
}

// Report is the resolved scout report. The zero value is the empty default
// used when the report is unavailable.
type Report struct {
	SpeedTier   int           `json:"speed_tier"`
	HighTier    int           `json:"high_tier"`
	LowTier     int           `json:"low_tier"`
	HighSkills  []skill.Skill `json:"high_skills,omitempty"`
	LowSkills   []skill.Skill `json:"low_skills,omitempty"`
	HighStarred []int         `json:"high_starred,omitempty"`
	LowStarred  []int         `json:"low_starred,omitempty"`
	// Unresolved counts skill names that matched no known skill.
	Unresolved int `json:"unresolved,omitempty"`
}

// Build resolves raw fragments into a report. Star counts are clamped to
// [0, MaxStars] and at most two skills are kept per tier.
func Build(speed, high, low Fragment) Report {
	r := Report{
		SpeedTier: clampStars(speed.Stars),
		HighTier:  clampStars(high.Stars),
		LowTier:   clampStars(low.Stars),
	}
	var n int
	r.HighSkills, n = resolve(high.Skills)
	r.Unresolved += n
	r.LowSkills, n = resolve(low.Skills)
	r.Unresolved += n
	r.HighStarred = validIndices(high.Starred)
	r.LowStarred = validIndices(low.Starred)
	return r
}

func clampStars(n int) int {
	return min(max(n, 0), MaxStars)
}

func resolve(names []string) ([]skill.Skill, int) {
	var (
		out        []skill.Skill
		unresolved int
	)
	for _, name := range names {
		if len(out) == maxTierSkills {
			break
		}
		s, ok := skill.Resolve(name)
		if !ok {
			unresolved++
			continue
		}
		out = append(out, s)
	}
	return out, unresolved
}

func validIndices(idx []int) []int {
	var out []int
	for _, i := range idx {
		if i >= 0 && i < skill.Count && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

// Kind distinguishes high- from low-potential markers.
type Kind string

// Potential kinds.
const (
	High Kind = "HP"
	Low  Kind = "LP"
)

// Potential is the marker a skill carries in the report.
type Potential struct {
	Kind Kind `json:"kind"`
	Tier int  `json:"tier"`
}

// String renders the marker, e.g. "HP4".
func (p Potential) String() string { return fmt.Sprintf("%s%d", p.Kind, p.Tier) }

// PotentialOf returns the marker for s. High potential wins: a skill is
// marked high when the high tier is set and the skill is named under it or
// starred at its position; low potential follows the same rule.
func (r Report) PotentialOf(s skill.Skill) (Potential, bool) {
	if !s.Known() {
		return Potential{}, false
	}
	if r.HighTier > 0 && (slices.Contains(r.HighSkills, s) || slices.Contains(r.HighStarred, s.Index())) {
		return Potential{Kind: High, Tier: r.HighTier}, true
	}
	if r.LowTier > 0 && (slices.Contains(r.LowSkills, s) || slices.Contains(r.LowStarred, s.Index())) {
		return Potential{Kind: Low, Tier: r.LowTier}, true
	}
	return Potential{}, false
}

// Markers lists the marker of every marked skill.
func (r Report) Markers() map[skill.Skill]Potential {
	out := make(map[skill.Skill]Potential)
	for _, s := range skill.Ordered() {
		if p, ok := r.PotentialOf(s); ok {
			out[s] = p
		}
	}
	return out
}

// SpeedLabel renders the training speed tier, "S3", or "N/A" when unknown.
func (r Report) SpeedLabel() string {
	if r.SpeedTier <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("S%d", r.SpeedTier)
}
