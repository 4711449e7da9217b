package reconstruct_test

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/okian/trainhist/internal/domain/reconstruct"
	"github.com/okian/trainhist/internal/domain/skill"
	"github.com/okian/trainhist/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func vec(pairs map[skill.Skill]int) skill.Vector {
	var v skill.Vector
	for s, n := range pairs {
		v.Set(s, n)
	}
	return v
}

func TestRunScenario(t *testing.T) {
	Convey("Given Speed 8 now and one Speed gain in season 98", t, func() {
		ctx := context.Background()
		current := vec(map[skill.Skill]int{skill.Speed: 8, skill.Passing: 4})
		in := reconstruct.Input{
			EntityID:      "1",
			Current:       current,
			CurrentAge:    20,
			CurrentSeason: 100,
			Earliest:      98,
			Gains:         map[int]skill.Vector{98: vec(map[skill.Skill]int{skill.Speed: 1})},
		}
		res := reconstruct.New().Run(ctx, in)

		Convey("Season 98 starts at 7 and seasons 99 and 100 show 8", func() {
			So(len(res.Snapshots), ShouldEqual, 3)
			So(res.Snapshots[0].Season, ShouldEqual, 98)
			So(res.Snapshots[0].Distribution.Get(skill.Speed), ShouldEqual, 7)
			So(res.Snapshots[1].Season, ShouldEqual, 99)
			So(res.Snapshots[1].Distribution.Get(skill.Speed), ShouldEqual, 8)
			So(res.Snapshots[2].Season, ShouldEqual, 100)
			So(res.Snapshots[2].Distribution.Get(skill.Speed), ShouldEqual, 8)
		})

		Convey("Only the last snapshot is the current vector", func() {
			So(res.Snapshots[2].Current, ShouldBeTrue)
			So(res.Snapshots[2].Label, ShouldEqual, reconstruct.CurrentLabel)
			So(res.Snapshots[2].Distribution, ShouldResemble, current)
			So(res.Snapshots[0].Current, ShouldBeFalse)
			So(res.StartOfCurrent, ShouldResemble, current)
		})

		Convey("Labels carry the historical age", func() {
			So(res.Snapshots[0].Label, ShouldEqual, "98 (18)")
			So(res.Snapshots[1].Label, ShouldEqual, "99 (19)")
			So(res.Snapshots[0].Age, ShouldEqual, 18)
		})

		Convey("Without an age the label is the season alone", func() {
			in.CurrentAge = 0
			res := reconstruct.New().Run(ctx, in)
			So(res.Snapshots[0].Label, ShouldEqual, "98")
			So(res.Snapshots[0].Age, ShouldEqual, 0)
		})

		Convey("Arrival and since-arrival come from the earliest snapshot", func() {
			So(res.Arrival.Get(skill.Speed), ShouldEqual, 7)
			So(res.SinceArrival.Get(skill.Speed), ShouldEqual, 1)
			So(res.SinceArrival.Get(skill.Passing), ShouldEqual, 0)
			So(res.SinceArrivalTotal, ShouldEqual, 1)
		})

		Convey("Per-snapshot increases and ball counts", func() {
			So(res.Snapshots[1].Increase.Get(skill.Speed), ShouldEqual, 1)
			So(res.Snapshots[2].Increase.Total(), ShouldEqual, 0)
			So(res.Snapshots[0].Balls, ShouldEqual, 11)
			So(res.Snapshots[2].Balls, ShouldEqual, 12)
			So(res.Clamps, ShouldBeEmpty)
		})
	})
}

func TestRunSingleSnapshot(t *testing.T) {
	Convey("Given no history at all", t, func() {
		current := vec(map[skill.Skill]int{skill.Keeping: 9})
		res := reconstruct.New().Run(context.Background(), reconstruct.Input{
			Current: current, CurrentSeason: 100, Earliest: 100,
		})
		So(len(res.Snapshots), ShouldEqual, 1)
		So(res.Snapshots[0].Current, ShouldBeTrue)
		So(res.Arrival, ShouldResemble, current)
		So(res.SinceArrivalTotal, ShouldEqual, 0)
	})
}

func TestRunCurrentSeasonGains(t *testing.T) {
	Convey("Given gains in the current season", t, func() {
		current := vec(map[skill.Skill]int{skill.Stamina: 6})
		res := reconstruct.New().Run(context.Background(), reconstruct.Input{
			Current: current, CurrentSeason: 100, Earliest: 99,
			Gains: map[int]skill.Vector{100: vec(map[skill.Skill]int{skill.Stamina: 2})},
		})
		So(res.StartOfCurrent.Get(skill.Stamina), ShouldEqual, 4)
		So(res.Snapshots[0].Distribution.Get(skill.Stamina), ShouldEqual, 4)
		So(res.Snapshots[1].Distribution.Get(skill.Stamina), ShouldEqual, 6)
		So(res.Snapshots[1].Increase.Get(skill.Stamina), ShouldEqual, 2)
	})
}

func TestClamping(t *testing.T) {
	Convey("Given gain tallies larger than the current value", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithOutput(&buf)), ShouldBeNil)
		r := reconstruct.New(reconstruct.WithLogger(logger.Get()))

		res := r.Run(context.Background(), reconstruct.Input{
			EntityID:      "77",
			Current:       vec(map[skill.Skill]int{skill.Heading: 2}),
			CurrentSeason: 100,
			Earliest:      98,
			Gains: map[int]skill.Vector{
				99: vec(map[skill.Skill]int{skill.Heading: 3}),
				98: vec(map[skill.Skill]int{skill.Heading: 1}),
			},
		})

		Convey("Values floor at zero and each clamp is recorded", func() {
			So(res.Snapshots[0].Distribution.Get(skill.Heading), ShouldEqual, 0)
			So(res.Snapshots[1].Distribution.Get(skill.Heading), ShouldEqual, 0)
			So(res.Clamps, ShouldResemble, []reconstruct.Clamp{
				{Season: 99, Skill: skill.Heading, Deficit: 1},
				{Season: 98, Skill: skill.Heading, Deficit: 1},
			})
		})

		Convey("Clamping is logged as a warning naming the entity", func() {
			So(buf.String(), ShouldContainSubstring, "clamped at zero")
			So(buf.String(), ShouldContainSubstring, "entity=77")
			So(buf.String(), ShouldContainSubstring, "level=WARN")
		})
	})
}

func TestInvariants(t *testing.T) {
	Convey("Given random vectors and tallies", t, func() {
		rng := rand.New(rand.NewSource(7))

		for round := 0; round < 200; round++ {
			var current skill.Vector
			for i := range current {
				current[i] = rng.Intn(skill.MaxValue + 1)
			}
			gains := map[int]skill.Vector{}
			for s := 90; s <= 100; s++ {
				var g skill.Vector
				for i := range g {
					g[i] = rng.Intn(3)
				}
				gains[s] = g
			}
			res := reconstruct.New().Run(context.Background(), reconstruct.Input{
				Current: current, CurrentSeason: 100, Earliest: 90, Gains: gains,
			})

			clamped := map[skill.Skill]bool{}
			for _, c := range res.Clamps {
				clamped[c.Skill] = true
			}

			for _, snap := range res.Snapshots {
				So(snap.Distribution.Valid(), ShouldBeTrue)
			}
			for _, sk := range skill.Ordered() {
				if clamped[sk] {
					continue
				}
				sum := res.Arrival.Get(sk)
				for _, snap := range res.Snapshots {
					sum += snap.Increase.Get(sk)
				}
				So(sum, ShouldEqual, current.Get(sk))
			}
		}
	})
}

func TestVisuallyMaxed(t *testing.T) {
	Convey("Given a skill first maxed in season 99", t, func() {
		So(reconstruct.VisuallyMaxed(8, 99, true, 98), ShouldBeFalse)
		So(reconstruct.VisuallyMaxed(8, 99, true, 99), ShouldBeFalse)
		So(reconstruct.VisuallyMaxed(8, 99, true, 100), ShouldBeTrue)
		So(reconstruct.VisuallyMaxed(10, 0, false, 90), ShouldBeTrue)
		So(reconstruct.VisuallyMaxed(9, 0, false, 100), ShouldBeFalse)

		res := reconstruct.New().Run(context.Background(), reconstruct.Input{
			Current:       vec(map[skill.Skill]int{skill.Tackling: 9}),
			CurrentSeason: 100,
			Earliest:      98,
			FirstMaxed:    map[skill.Skill]int{skill.Tackling: 99},
		})
		So(res.Snapshots[0].Maxed, ShouldBeEmpty)
		So(res.Snapshots[2].Maxed, ShouldResemble, []skill.Skill{skill.Tackling})
	})
}
