// Package model contains domain records passed between layers.
package model

import (
	"encoding/json"
	"time"

	"github.com/okian/trainhist/internal/domain/skill"
)

// Marker is the icon attached to a raw series point.
type Marker struct {
	Symbol string `json:"symbol"`
}

// RawPoint is one untyped point of the upstream training series.
// X is a unix timestamp in milliseconds. A "name" key on the point that
// follows a gain icon flags the gain as maxed, even when its value is null.
type RawPoint struct {
	X      float64  `json:"x"`
	Y      *float64 `json:"y,omitempty"`
	Marker *Marker  `json:"marker,omitempty"`
	Name   *string  `json:"name,omitempty"`
	// HasName records that the decoded object carried a "name" key.
	HasName bool `json:"-"`
}

// Named reports whether the point carries a name key.
func (p RawPoint) Named() bool { return p.HasName || p.Name != nil }

type rawPoint RawPoint

// UnmarshalJSON keeps track of a "name" key whose value is null or not a
// string; only string values populate Name.
func (p *RawPoint) UnmarshalJSON(data []byte) error {
	var aux struct {
		rawPoint
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = RawPoint(aux.rawPoint)
	p.Name = nil
	p.HasName = aux.Name != nil
	var name string
	if p.HasName && json.Unmarshal(aux.Name, &name) == nil && string(aux.Name) != "null" {
		p.Name = &name
	}
	return nil
}

// MarshalJSON writes "name":null for a point decoded with a null name.
func (p RawPoint) MarshalJSON() ([]byte, error) {
	aux := struct {
		rawPoint
		Name json.RawMessage `json:"name,omitempty"`
	}{rawPoint: rawPoint(p)}
	switch {
	case p.Name != nil:
		b, err := json.Marshal(*p.Name)
		if err != nil {
			return nil, err
		}
		aux.Name = b
	case p.HasName:
		aux.Name = json.RawMessage("null")
	}
	return json.Marshal(aux)
}

// Time converts X to a time value.
func (p RawPoint) Time() time.Time {
	return time.UnixMilli(int64(p.X))
}

// RawSeries is a named subseries of points.
type RawSeries struct {
	Name string     `json:"name,omitempty"`
	Data []RawPoint `json:"data"`
}

// GainEvent is one skill point gained.
type GainEvent struct {
	Date   time.Time   `json:"date"`
	Season int         `json:"season"`
	Skill  skill.Skill `json:"skill"`
	Maxed  bool        `json:"maxed"`
}

// ChipEvent is one applied training chip.
type ChipEvent struct {
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Season int       `json:"season"`
}

// Price is an amount in whole units of Currency. The zero value means "not applicable".
type Price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// IsZero reports whether the price carries no amount.
func (p Price) IsZero() bool { return p.Amount == 0 || p.Currency == "" }

// TransferRecord is one ownership change.
type TransferRecord struct {
	Date     time.Time `json:"date"`
	Season   int       `json:"season"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Price    Price     `json:"price"`
	RawPrice string    `json:"raw_price"`
}

// SeasonSnapshot is the skill vector at the start of a season, or the
// current vector for the current season.
type SeasonSnapshot struct {
	Season       int           `json:"season"`
	Label        string        `json:"label"`
	Current      bool          `json:"current"`
	Age          int           `json:"age,omitempty"`
	Distribution skill.Vector  `json:"distribution"`
	Increase     skill.Vector  `json:"increase"`
	Balls        int           `json:"balls"`
	Maxed        []skill.Skill `json:"maxed,omitempty"`
}

// AgeCell aggregates one entity's activity at one relative age.
type AgeCell struct {
	Gains int      `json:"gains"`
	Chips []string `json:"chips,omitempty"`
}

// ComparisonRecord is one entity's history keyed by relative age.
type ComparisonRecord struct {
	EntityID   string          `json:"entity_id"`
	Name       string          `json:"name"`
	SpeedTier  int             `json:"speed_tier"`
	GainsByAge map[int]AgeCell `json:"gains_by_age"`
	TotalGains int             `json:"total_gains"`
}
