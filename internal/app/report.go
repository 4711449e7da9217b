package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/okian/trainhist/internal/domain/classify"
	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/history"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/reconstruct"
	"github.com/okian/trainhist/internal/domain/scout"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/internal/domain/transfer"
	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// Input is everything one detail computation reads. It is already fetched;
// computing from it never touches the network.
type Input struct {
	EntityID   string
	Name       string
	CurrentAge int
	Current    skill.Vector
	Series     []model.RawSeries
	Transfers  []transfer.Row
	Scout      scout.Report
	// Partial lists the sources that fell back to defaults.
	Partial []string
}

// Skipped counts malformed records dropped while computing a report.
type Skipped struct {
	SeriesPoints int `json:"series_points"`
	Transfers    int `json:"transfers"`
	Prices       int `json:"prices"`
	ScoutSkills  int `json:"scout_skills"`
}

// Marker is a skill's scout potential as shown next to the skill.
type Marker struct {
	Skill  skill.Skill `json:"skill"`
	Marker string      `json:"marker"`
}

// ChipView is one applied chip with its display icon.
type ChipView struct {
	Name   string            `json:"name"`
	Date   time.Time         `json:"date"`
	Season int               `json:"season"`
	Icon   classify.ChipIcon `json:"icon"`
}

// Report is the single-entity detail result.
type Report struct {
	ID            string    `json:"id"`
	EntityID      string    `json:"entity_id"`
	Name          string    `json:"name"`
	GeneratedAt   time.Time `json:"generated_at"`
	CurrentSeason int       `json:"current_season"`
	CurrentAge    int       `json:"current_age,omitempty"`

	Snapshots         []model.SeasonSnapshot `json:"snapshots"`
	Arrival           skill.Vector           `json:"arrival"`
	SinceArrival      skill.Vector           `json:"since_arrival"`
	SinceArrivalTotal int                    `json:"since_arrival_total"`
	StartOfCurrent    skill.Vector           `json:"start_of_current"`
	Clamps            []reconstruct.Clamp    `json:"clamps,omitempty"`

	Log        []history.LogEntry   `json:"log"`
	Totals     []history.SkillCount `json:"totals"`
	TotalGains int                  `json:"total_gains"`

	// Chips lists every applied chip, including those in seasons without gains.
	Chips []ChipView `json:"chips"`

	Transfers []model.TransferRecord `json:"-"`
	Prices    []TransferView         `json:"transfers"`

	Scout      scout.Report `json:"scout"`
	SpeedLabel string       `json:"speed_label"`
	Markers    []Marker     `json:"markers,omitempty"`

	Currency string   `json:"currency"`
	Skipped  Skipped  `json:"skipped"`
	Partial  []string `json:"partial,omitempty"`
}

// TransferView is a transfer with its price in the view currency.
type TransferView struct {
	model.TransferRecord
	Display string `json:"display"`
	// Converted is false when the price kept its original currency.
	Converted bool `json:"converted"`
}

// Compute runs classify, aggregate and reconstruct over in. The clock's
// anchor season is the current season.
func Compute(ctx context.Context, log logger.Logger, clock *season.Clock, in Input) *Report {
	if log == nil {
		log = logger.Discard()
	}
	current := clock.Current()

	classified := classify.New(clock).Classify(in.Series)
	transfers := transfer.Build(in.Transfers, clock, clock.Location())
	agg := history.Build(classified.Gains, classified.Chips, transfers.Seasons())
	earliest := agg.Earliest(current)

	res := reconstruct.New(reconstruct.WithLogger(log)).Run(ctx, reconstruct.Input{
		EntityID:      in.EntityID,
		Current:       in.Current,
		CurrentAge:    in.CurrentAge,
		CurrentSeason: current,
		Earliest:      earliest,
		Gains:         agg.GainsBySeason(earliest, current),
		FirstMaxed:    agg.FirstMaxed,
	})

	r := &Report{
		ID:                uuid.NewString(),
		EntityID:          in.EntityID,
		Name:              in.Name,
		GeneratedAt:       time.Now().UTC(),
		CurrentSeason:     current,
		CurrentAge:        in.CurrentAge,
		Snapshots:         res.Snapshots,
		Arrival:           res.Arrival,
		SinceArrival:      res.SinceArrival,
		SinceArrivalTotal: res.SinceArrivalTotal,
		StartOfCurrent:    res.StartOfCurrent,
		Clamps:            res.Clamps,
		Log:               agg.Log(in.CurrentAge, current),
		Totals:            agg.SortedTotals(),
		TotalGains:        agg.Total,
		Chips:             chipViews(agg.Chips()),
		Transfers:         transfers.All(),
		Scout:             in.Scout,
		SpeedLabel:        in.Scout.SpeedLabel(),
		Skipped: Skipped{
			SeriesPoints: classified.Skipped,
			Transfers:    transfers.Skipped,
			Prices:       transfers.BadPrices,
			ScoutSkills:  in.Scout.Unresolved,
		},
		Partial: in.Partial,
	}
	for _, s := range skill.Ordered() {
		if p, ok := in.Scout.PotentialOf(s); ok {
			r.Markers = append(r.Markers, Marker{Skill: s, Marker: p.String()})
		}
	}

	metrics.RecordRecordsSkipped("series_point", classified.Skipped)
	metrics.RecordRecordsSkipped("transfer_row", transfers.Skipped)
	metrics.RecordRecordsSkipped("price", transfers.BadPrices)
	metrics.RecordRecordsSkipped("scout_skill", in.Scout.Unresolved)
	if n := classified.Skipped + transfers.Skipped + transfers.BadPrices; n > 0 {
		log.Debug(ctx, "malformed records skipped",
			logger.String("entity", in.EntityID),
			logger.Int("series_points", classified.Skipped),
			logger.Int("transfers", transfers.Skipped),
			logger.Int("prices", transfers.BadPrices),
		)
	}
	return r
}

func chipViews(chips []model.ChipEvent) []ChipView {
	out := make([]ChipView, 0, len(chips))
	for _, c := range chips {
		out = append(out, ChipView{Name: c.Name, Date: c.Date, Season: c.Season, Icon: classify.IconFor(c.Name)})
	}
	return out
}

// Priced returns a copy of r with transfer prices shown in code. Prices that
// cannot be converted keep their original currency.
func (r *Report) Priced(code string) *Report {
	out := *r
	out.Currency = code
	out.Prices = Reprice(r.Transfers, code)
	return &out
}

// Reprice converts every transfer price to code.
func Reprice(records []model.TransferRecord, code string) []TransferView {
	out := make([]TransferView, 0, len(records))
	for _, rec := range records {
		v := TransferView{TransferRecord: rec}
		if !rec.Price.IsZero() {
			p, ok := currency.Reprice(rec.Price, code)
			if !ok {
				metrics.RecordConversionUnsupported(rec.Price.Currency)
			}
			v.Price = p
			v.Converted = ok
		}
		v.Display = currency.Format(v.Price, language.English)
		out = append(out, v)
	}
	return out
}
