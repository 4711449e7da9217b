// Package skill holds the closed table of trainable skills and the fixed-size
// vector of their values.
package skill

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// Skill identifies one of the trainable attributes. The zero value is Unknown.
type Skill int

// Skills in display order. The numeric value is the upstream identifier.
const (
	Unknown Skill = iota
	Speed
	Stamina
	PlayIntelligence
	Passing
	Shooting
	Heading
	Keeping
	BallControl
	Tackling
	AerialPassing
	SetPlays
)

// Count is the number of known skills.
const Count = 11

// Value bounds for a single skill.
const (
	MinValue = 0
	MaxValue = 10
)

var names = [...]string{
	"Unknown",
	"Speed",
	"Stamina",
	"Play Intelligence",
	"Passing",
	"Shooting",
	"Heading",
	"Keeping",
	"Ball Control",
	"Tackling",
	"Aerial Passing",
	"Set Plays",
}

// String returns the display name.
func (s Skill) String() string {
	if s < Unknown || s > SetPlays {
		return names[Unknown]
	}
	return names[s]
}

// Known reports whether s is one of the eleven table entries.
func (s Skill) Known() bool { return s >= Speed && s <= SetPlays }

// Index is the position in display order, or -1 for Unknown.
func (s Skill) Index() int {
	if !s.Known() {
		return -1
	}
	return int(s) - 1
}

// MarshalText encodes the skill as its display name.
func (s Skill) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a display name, case-insensitively.
func (s *Skill) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSkill, string(b))
	}
	*s = v
	return nil
}

// FromID maps an upstream skill identifier. Unmapped ids yield Unknown.
func FromID(id int) Skill {
	if id < int(Speed) || id > int(SetPlays) {
		return Unknown
	}
	return Skill(id)
}

// FromIndex maps a display-order position back to a skill.
func FromIndex(i int) Skill {
	return FromID(i + 1)
}

// Ordered returns the known skills in display order.
func Ordered() []Skill {
	out := make([]Skill, 0, Count)
	for s := Speed; s <= SetPlays; s++ {
		out = append(out, s)
	}
	return out
}

// Parse matches a display name exactly, ignoring case and surrounding space.
// "Unknown" parses to Unknown.
func Parse(name string) (Skill, bool) {
	n := strings.TrimSpace(name)
	for i, candidate := range names {
		if strings.EqualFold(candidate, n) {
			return Skill(i), true
		}
	}
	return Unknown, false
}

// source adapts the known names to fuzzy.Source.
type source []Skill

func (s source) Len() int            { return len(s) }
func (s source) String(i int) string { return strings.ToLower(s[i].String()) }

// Resolve maps free text, such as a scout report fragment, onto a skill.
// Exact names win; otherwise the best fuzzy match is used.
func Resolve(name string) (Skill, bool) {
	if s, ok := Parse(name); ok && s.Known() {
		return s, true
	}
	q := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == ' ' {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	q = strings.Join(strings.Fields(q), " ")
	if q == "" {
		return Unknown, false
	}
	known := source(Ordered())
	matches := fuzzy.FindFrom(q, known)
	if len(matches) == 0 {
		return Unknown, false
	}
	return known[matches[0].Index], true
}
