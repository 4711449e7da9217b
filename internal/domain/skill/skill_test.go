package skill_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/trainhist/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillTable(t *testing.T) {
	Convey("Given the skill table", t, func() {
		Convey("Identifiers 1..11 map to the eleven skills in order", func() {
			ordered := skill.Ordered()
			So(len(ordered), ShouldEqual, skill.Count)
			for i, s := range ordered {
				So(skill.FromID(i+1), ShouldEqual, s)
				So(s.Index(), ShouldEqual, i)
				So(skill.FromIndex(i), ShouldEqual, s)
			}
			So(skill.FromID(1).String(), ShouldEqual, "Speed")
			So(skill.FromID(11).String(), ShouldEqual, "Set Plays")
		})

		Convey("Unmapped identifiers fall back to Unknown", func() {
			for _, id := range []int{0, -3, 12, 99} {
				s := skill.FromID(id)
				So(s, ShouldEqual, skill.Unknown)
				So(s.String(), ShouldEqual, "Unknown")
				So(s.Known(), ShouldBeFalse)
				So(s.Index(), ShouldEqual, -1)
			}
		})

		Convey("Parse is case-insensitive and exact", func() {
			s, ok := skill.Parse("  ball control ")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, skill.BallControl)
			_, ok = skill.Parse("ball")
			So(ok, ShouldBeFalse)
		})

		Convey("Resolve falls back to fuzzy matching", func() {
			s, ok := skill.Resolve("Ball ctrl")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, skill.BallControl)

			s, ok = skill.Resolve("Play intel.")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, skill.PlayIntelligence)

			_, ok = skill.Resolve("zzz")
			So(ok, ShouldBeFalse)
			_, ok = skill.Resolve("   ")
			So(ok, ShouldBeFalse)
		})

		Convey("Skills encode as their names", func() {
			b, err := json.Marshal(map[skill.Skill]int{skill.Speed: 2})
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"Speed":2}`)

			var back map[skill.Skill]int
			So(json.Unmarshal(b, &back), ShouldBeNil)
			So(back[skill.Speed], ShouldEqual, 2)

			var bad skill.Skill
			So(errors.Is(bad.UnmarshalText([]byte("Juggling")), skill.ErrUnknownSkill), ShouldBeTrue)
		})
	})
}

func TestVector(t *testing.T) {
	Convey("Given a skill vector", t, func() {
		var v skill.Vector
		v.Set(skill.Speed, 8)
		v.Set(skill.Keeping, 3)
		v.Add(skill.Speed, 1)
		v.Set(skill.Unknown, 5)

		Convey("Get, Total and Unknown handling", func() {
			So(v.Get(skill.Speed), ShouldEqual, 9)
			So(v.Get(skill.Unknown), ShouldEqual, 0)
			So(v.Total(), ShouldEqual, 12)
			So(v.Valid(), ShouldBeTrue)
		})

		Convey("Bounded clamps into range without touching the original", func() {
			w := v
			w.Set(skill.Stamina, -2)
			w.Set(skill.Passing, 14)
			So(w.Valid(), ShouldBeFalse)
			b := w.Bounded()
			So(b.Get(skill.Stamina), ShouldEqual, 0)
			So(b.Get(skill.Passing), ShouldEqual, 10)
			So(w.Get(skill.Passing), ShouldEqual, 14)
		})

		Convey("PositiveDelta drops decreases", func() {
			var prev skill.Vector
			prev.Set(skill.Speed, 7)
			prev.Set(skill.Keeping, 5)
			d := v.PositiveDelta(prev)
			So(d.Get(skill.Speed), ShouldEqual, 2)
			So(d.Get(skill.Keeping), ShouldEqual, 0)
		})

		Convey("JSON uses display order and round-trips", func() {
			b, err := json.Marshal(v)
			So(err, ShouldBeNil)
			So(string(b), ShouldStartWith, `{"Speed":9,"Stamina":0,`)

			var back skill.Vector
			So(json.Unmarshal(b, &back), ShouldBeNil)
			So(back, ShouldResemble, v)
		})

		Convey("FromMap requires every skill", func() {
			_, err := skill.FromMap(map[string]int{"Speed": 1})
			So(errors.Is(err, skill.ErrIncompleteVector), ShouldBeTrue)

			m := v.Map()
			m["Juggling"] = 1
			_, err = skill.FromMap(m)
			So(errors.Is(err, skill.ErrUnknownSkill), ShouldBeTrue)
		})
	})
}
