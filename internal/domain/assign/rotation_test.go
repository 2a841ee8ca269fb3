package assign_test

import (
	"testing"

	"github.com/openscout/scoutcore/internal/domain/assign"
	"github.com/openscout/scoutcore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpandRotations(t *testing.T) {
	Convey("Given scouting pairs of various sizes", t, func() {
		Convey("When the pair has a single member", func() {
			rots := assign.ExpandRotations(model.ScoutingPair{Member1: "Ada"})
			So(rots, ShouldResemble, []assign.Rotation{{Primary: "Ada"}})
		})

		Convey("When the pair has two members", func() {
			rots := assign.ExpandRotations(model.ScoutingPair{Member1: "Ada", Member2: "Ben"})
			So(rots, ShouldResemble, []assign.Rotation{
				{Primary: "Ada", Secondary: "Ben"},
				{Primary: "Ben", Secondary: "Ada"},
			})
		})

		Convey("When the pair has three members", func() {
			rots := assign.ExpandRotations(model.ScoutingPair{Member1: "Ada", Member2: "Ben", Member3: "Cal"})
			So(rots, ShouldResemble, []assign.Rotation{
				{Primary: "Ada", Secondary: "Ben", Tertiary: "Cal"},
				{Primary: "Ben", Secondary: "Cal", Tertiary: "Ada"},
				{Primary: "Cal", Secondary: "Ada", Tertiary: "Ben"},
			})
		})

		Convey("Then every member primaries exactly once", func() {
			rots := assign.ExpandRotations(model.ScoutingPair{Member1: "Ada", Member2: "Ben", Member3: "Cal"})
			seen := make(map[string]int)
			for _, r := range rots {
				seen[r.Primary]++
			}
			So(seen, ShouldResemble, map[string]int{"Ada": 1, "Ben": 1, "Cal": 1})
		})
	})
}

func TestExpandAllRotations(t *testing.T) {
	Convey("Given multiple pairs", t, func() {
		pairs := []model.ScoutingPair{
			{Member1: "Ada", Member2: "Ben"},
			{Member1: "Cal"},
		}
		rots := assign.ExpandAllRotations(pairs)

		Convey("Then pair order is preserved in the flat list", func() {
			So(rots, ShouldHaveLength, 3)
			So(rots[0].Primary, ShouldEqual, "Ada")
			So(rots[1].Primary, ShouldEqual, "Ben")
			So(rots[2].Primary, ShouldEqual, "Cal")
		})
	})
}

func TestOrderRoster(t *testing.T) {
	Convey("Given a member roster", t, func() {
		members := []model.Member{
			{Name: "Ada", Seniority: "10", Present: true},
			{Name: "Ben", Seniority: "2.1", Present: true},
			{Name: "Cal", Seniority: "2", Present: true},
			{Name: "Dee", Seniority: "1", Present: false},
			{Name: "Eli", Seniority: "mentor", Present: true},
		}
		roster := assign.OrderRoster(members)

		Convey("Then absent members are dropped", func() {
			for _, m := range roster {
				So(m.Name, ShouldNotEqual, "Dee")
			}
		})

		Convey("Then seniority sorts numerically, subcodes between whole grades", func() {
			// "2" < "2.1" < "10"; lexicographic order would put "10" first.
			So(roster[0].Name, ShouldEqual, "Cal")
			So(roster[1].Name, ShouldEqual, "Ben")
			So(roster[2].Name, ShouldEqual, "Ada")
		})

		Convey("Then unparsable seniority sorts last", func() {
			So(roster[len(roster)-1].Name, ShouldEqual, "Eli")
		})

		Convey("Then equal seniority falls back to subteam, then name", func() {
			tied := []model.Member{
				{Name: "Zed", Seniority: "3", SubteamKey: "drive", Present: true},
				{Name: "Amy", Seniority: "3", SubteamKey: "drive", Present: true},
				{Name: "Bob", Seniority: "3", SubteamKey: "build", Present: true},
			}
			ordered := assign.OrderRoster(tied)
			So(ordered[0].Name, ShouldEqual, "Bob")
			So(ordered[1].Name, ShouldEqual, "Amy")
			So(ordered[2].Name, ShouldEqual, "Zed")
		})
	})
}
