package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/trainhist/internal/adapters/upstream"
	"github.com/okian/trainhist/internal/config"
	"github.com/okian/trainhist/internal/domain/classify"
	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/internal/domain/transfer"
)

// BundleAnchor pins the season calendar of a bundle.
type BundleAnchor struct {
	Date   string `json:"date" yaml:"date"`
	Season int    `json:"season" yaml:"season"`
	Day    int    `json:"day" yaml:"day"`
}

// Bundle is a self-contained set of raw inputs for one entity, as posted to
// the service or stored in a local file.
type Bundle struct {
	EntityID  string             `json:"entity_id" yaml:"entity_id"`
	Name      string             `json:"name" yaml:"name"`
	Age       int                `json:"age" yaml:"age"`
	Timezone  string             `json:"timezone" yaml:"timezone"`
	Anchor    BundleAnchor       `json:"anchor" yaml:"anchor"`
	Skills    map[string]int     `json:"skills" yaml:"skills"`
	Series    string             `json:"series" yaml:"series"`
	Transfers []transfer.Row     `json:"transfers" yaml:"transfers"`
	Scout     upstream.ScoutPage `json:"scout" yaml:"scout"`
	Currency  string             `json:"currency" yaml:"currency"`
}

// Clock builds the bundle's season clock. An empty timezone means UTC.
func (b Bundle) Clock() (*season.Clock, error) {
	loc := time.UTC
	if tz := strings.TrimSpace(b.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone: %w", ErrInvalidBundle, err)
		}
		loc = l
	}
	date, err := time.ParseInLocation(config.AnchorDateLayout, b.Anchor.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: anchor date: %w", season.ErrAnchorUnavailable, err)
	}
	a, err := season.NewAnchor(date, b.Anchor.Season, b.Anchor.Day)
	if err != nil {
		return nil, err
	}
	return season.NewClock(a, loc), nil
}

// Input validates the bundle and turns it into computation input.
func (b Bundle) Input() (Input, error) {
	if strings.TrimSpace(b.EntityID) == "" {
		return Input{}, fmt.Errorf("%w: entity_id is required", ErrInvalidBundle)
	}
	current, err := skill.FromMap(b.Skills)
	if err != nil {
		return Input{}, unavailable(b.EntityID, "current skills", err)
	}
	series, err := classify.ExtractSeries(b.Series)
	if err != nil {
		return Input{}, unavailable(b.EntityID, "training series", err)
	}
	if b.Currency != "" && !currency.Known(b.Currency) {
		return Input{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, b.Currency)
	}
	return Input{
		EntityID:   b.EntityID,
		Name:       b.Name,
		CurrentAge: b.Age,
		Current:    current,
		Series:     series,
		Transfers:  b.Transfers,
		Scout:      b.Scout.Report(),
	}, nil
}
