package skill

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Vector holds one value per known skill, indexed by display order.
type Vector [Count]int

// Get returns the value for s; Unknown reads as zero.
func (v Vector) Get(s Skill) int {
	if !s.Known() {
		return 0
	}
	return v[s.Index()]
}

// Set assigns the value for s. Unknown is ignored.
func (v *Vector) Set(s Skill, val int) {
	if !s.Known() {
		return
	}
	v[s.Index()] = val
}

// Add increments the value for s by n. Unknown is ignored.
func (v *Vector) Add(s Skill, n int) {
	if !s.Known() {
		return
	}
	v[s.Index()] += n
}

// Total sums all values.
func (v Vector) Total() int {
	t := 0
	for _, x := range v {
		t += x
	}
	return t
}

// Bounded returns a copy with every value forced into [MinValue, MaxValue].
func (v Vector) Bounded() Vector {
	for i, x := range v {
		v[i] = min(max(x, MinValue), MaxValue)
	}
	return v
}

// Valid reports whether every value lies in [MinValue, MaxValue].
func (v Vector) Valid() bool {
	for _, x := range v {
		if x < MinValue || x > MaxValue {
			return false
		}
	}
	return true
}

// PositiveDelta returns max(0, v-prev) per skill.
func (v Vector) PositiveDelta(prev Vector) Vector {
	var out Vector
	for i := range v {
		if d := v[i] - prev[i]; d > 0 {
			out[i] = d
		}
	}
	return out
}

// Map returns the vector keyed by display name.
func (v Vector) Map() map[string]int {
	out := make(map[string]int, Count)
	for _, s := range Ordered() {
		out[s.String()] = v.Get(s)
	}
	return out
}

// FromMap builds a vector from display names. Every known skill must be
// present; unknown names are rejected.
func FromMap(m map[string]int) (Vector, error) {
	var v Vector
	seen := 0
	for name, val := range m {
		s, ok := Parse(name)
		if !ok || !s.Known() {
			return Vector{}, fmt.Errorf("%w: %q", ErrUnknownSkill, name)
		}
		v.Set(s, val)
		seen++
	}
	if seen != Count {
		return Vector{}, fmt.Errorf("%w: got %d of %d skills", ErrIncompleteVector, seen, Count)
	}
	return v, nil
}

// MarshalJSON writes the vector as an object in display order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range Ordered() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", v[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by display name.
func (v *Vector) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out, err := FromMap(m)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
