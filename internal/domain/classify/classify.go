// Package classify turns the raw training series into typed gain and chip
// events.
package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/skill"
)

// Marker symbols recognised in the series.
const (
	GainMarker = "gained_skill.png"
	ChipMarker = "training_camp_chip.png"
)

// GainOffset is subtracted from the point after a gain icon. The icon is
// recorded slightly after the gain itself.
const GainOffset = time.Second

const seriesVar = "var series ="

// Seasoner maps a date to its season.
type Seasoner interface {
	Of(t time.Time) int
}

// Result is the classified content of one series payload.
type Result struct {
	Gains []model.GainEvent
	Chips []model.ChipEvent
	// Skipped counts malformed points that were dropped.
	Skipped int
}

// Classifier tags events with seasons from its clock.
type Classifier struct {
	clock Seasoner
}

// New returns a classifier using clock for season tagging.
func New(clock Seasoner) *Classifier {
	return &Classifier{clock: clock}
}

// ExtractSeries decodes the series array from the upstream response body.
// The body is either a script containing "var series = [...]" or the bare
// JSON array.
func ExtractSeries(text string) ([]model.RawSeries, error) {
	body := strings.TrimSpace(text)
	if i := strings.Index(body, seriesVar); i >= 0 {
		body = strings.TrimSpace(body[i+len(seriesVar):])
	}
	if !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("%w: no series array", ErrSeriesUnavailable)
	}
	return DecodeSeries(body)
}

// DecodeSeries decodes a JSON series array. Trailing script text after the
// array is ignored.
func DecodeSeries(data string) ([]model.RawSeries, error) {
	var out []model.RawSeries
	if err := json.NewDecoder(strings.NewReader(data)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeriesUnavailable, err)
	}
	return out, nil
}

// Classify walks every subseries. A gain icon takes its skill, maxed flag and
// timestamp from the next point of the same subseries; an icon with no
// successor is not a gain. Chip points need a display name.
func (c *Classifier) Classify(series []model.RawSeries) Result {
	var res Result
	for _, s := range series {
		for i, pt := range s.Data {
			if pt.Marker == nil {
				continue
			}
			switch {
			case strings.Contains(pt.Marker.Symbol, GainMarker):
				if i+1 >= len(s.Data) {
					continue
				}
				g, ok := c.gain(s.Data[i+1])
				if !ok {
					res.Skipped++
					continue
				}
				res.Gains = append(res.Gains, g)
			case strings.Contains(pt.Marker.Symbol, ChipMarker):
				if pt.Name == nil || *pt.Name == "" {
					continue
				}
				name := SanitizeChipName(*pt.Name)
				if name == "" {
					res.Skipped++
					continue
				}
				at := pt.Time()
				res.Chips = append(res.Chips, model.ChipEvent{Name: name, Date: at, Season: c.clock.Of(at)})
			}
		}
	}
	sort.SliceStable(res.Gains, func(i, j int) bool { return res.Gains[i].Date.Before(res.Gains[j].Date) })
	sort.SliceStable(res.Chips, func(i, j int) bool { return res.Chips[i].Date.Before(res.Chips[j].Date) })
	return res
}

func (c *Classifier) gain(next model.RawPoint) (model.GainEvent, bool) {
	if next.Y == nil || math.IsNaN(*next.Y) || next.X <= 0 {
		return model.GainEvent{}, false
	}
	at := next.Time().Add(-GainOffset)
	return model.GainEvent{
		Date:   at,
		Season: c.clock.Of(at),
		Skill:  skill.FromID(int(math.Round(*next.Y))),
		Maxed:  next.Named(),
	}, true
}
