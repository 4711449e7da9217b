// Package reconstruct rebuilds an entity's skill vector at the start of every
// season by walking back from the current vector.
package reconstruct

import (
	"context"
	"fmt"

	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// CurrentLabel labels the snapshot holding the current vector.
const CurrentLabel = "Current"

// Input is everything one reconstruction needs.
type Input struct {
	EntityID      string
	Current       skill.Vector
	CurrentAge    int // zero when unknown
	CurrentSeason int
	Earliest      int
	// Gains holds the known-skill gain tallies per season.
	Gains map[int]skill.Vector
	// FirstMaxed is the earliest season each skill was flagged maxed.
	FirstMaxed map[skill.Skill]int
}

// Clamp records a skill forced up to zero because the tallies for a season
// exceeded what the vector could hold.
type Clamp struct {
	Season  int         `json:"season"`
	Skill   skill.Skill `json:"skill"`
	Deficit int         `json:"deficit"`
}

// Result is the reconstructed snapshot sequence.
type Result struct {
	// Snapshots run from the earliest season to the current one; the last
	// element is the current vector.
	Snapshots         []model.SeasonSnapshot `json:"snapshots"`
	Arrival           skill.Vector           `json:"arrival"`
	SinceArrival      skill.Vector           `json:"since_arrival"`
	SinceArrivalTotal int                    `json:"since_arrival_total"`
	// StartOfCurrent is the vector at the start of the current season.
	StartOfCurrent skill.Vector `json:"start_of_current"`
	Clamps         []Clamp      `json:"clamps,omitempty"`
}

// Reconstructor runs reconstructions and reports clamping.
type Reconstructor struct {
	logger logger.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets the logger clamp warnings go to.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconstructor.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{logger: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run walks from the current season down to in.Earliest. For each season the
// season's gains are removed from a working vector and the result is recorded
// as that season's starting state, floored at zero. The current season's
// snapshot is the unmodified current vector.
func (r *Reconstructor) Run(ctx context.Context, in Input) Result {
	current := in.Current.Bounded()
	earliest := min(in.Earliest, in.CurrentSeason)

	starts := make(map[int]skill.Vector, in.CurrentSeason-earliest+1)
	var clamps []Clamp
	working := current
	for s := in.CurrentSeason; s >= earliest; s-- {
		g := in.Gains[s]
		for _, sk := range skill.Ordered() {
			v := working.Get(sk) - g.Get(sk)
			if v < skill.MinValue {
				clamps = append(clamps, Clamp{Season: s, Skill: sk, Deficit: skill.MinValue - v})
				v = skill.MinValue
			}
			working.Set(sk, v)
		}
		starts[s] = working
	}

	res := Result{
		Snapshots:      make([]model.SeasonSnapshot, 0, in.CurrentSeason-earliest+1),
		StartOfCurrent: starts[in.CurrentSeason],
		Clamps:         clamps,
	}
	for s := earliest; s < in.CurrentSeason; s++ {
		snap := model.SeasonSnapshot{Season: s, Label: fmt.Sprint(s), Distribution: starts[s]}
		if age, ok := season.HistoricalAge(in.CurrentAge, in.CurrentSeason, s); ok {
			snap.Age = age
			snap.Label = fmt.Sprintf("%d (%d)", s, age)
		}
		res.Snapshots = append(res.Snapshots, snap)
	}
	cur := model.SeasonSnapshot{
		Season:       in.CurrentSeason,
		Label:        CurrentLabel,
		Current:      true,
		Distribution: current,
	}
	if in.CurrentAge > 0 {
		cur.Age = in.CurrentAge
	}
	res.Snapshots = append(res.Snapshots, cur)

	for i := range res.Snapshots {
		snap := &res.Snapshots[i]
		snap.Balls = snap.Distribution.Total()
		if i > 0 {
			snap.Increase = snap.Distribution.PositiveDelta(res.Snapshots[i-1].Distribution)
		}
		for _, sk := range skill.Ordered() {
			first, ok := in.FirstMaxed[sk]
			if VisuallyMaxed(snap.Distribution.Get(sk), first, ok, snap.Season) {
				snap.Maxed = append(snap.Maxed, sk)
			}
		}
	}

	res.Arrival = res.Snapshots[0].Distribution
	res.SinceArrival = current.PositiveDelta(res.Arrival)
	res.SinceArrivalTotal = res.SinceArrival.Total()

	for _, c := range clamps {
		metrics.RecordReconstructionClamp(c.Skill.String())
		r.logger.Warn(ctx, "reconstructed value clamped at zero",
			logger.String("entity", in.EntityID),
			logger.String("skill", c.Skill.String()),
			logger.Int("season", c.Season),
			logger.Int("deficit", c.Deficit),
		)
	}
	return res
}

// VisuallyMaxed reports whether a skill shows as maxed in a snapshot of
// snapshotSeason: either its value is at the cap or it was first flagged
// maxed in an earlier season.
func VisuallyMaxed(value, firstMaxed int, known bool, snapshotSeason int) bool {
	return value == skill.MaxValue || (known && firstMaxed < snapshotSeason)
}
