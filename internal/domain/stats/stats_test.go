package stats_test

import (
	"testing"

	"github.com/openscout/scoutcore/internal/domain/model"
	"github.com/openscout/scoutcore/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(team string, t int64, data map[string]any) model.MatchScoutingEntry {
	return model.MatchScoutingEntry{
		OrgKey:   "org1",
		EventKey: "2026test",
		TeamKey:  team,
		Time:     t,
		Data:     data,
	}
}

func TestEMA(t *testing.T) {
	Convey("Given a chronological value sequence", t, func() {
		Convey("Then a single value is its own average", func() {
			So(stats.EMA([]float64{7}, 0.3), ShouldEqual, 7)
		})

		Convey("Then the average is seeded with the first value and folds forward", func() {
			// seed 2, then 0.5*4+0.5*2=3, then 0.5*6+0.5*3=4.5
			So(stats.EMA([]float64{2, 4, 6}, 0.5), ShouldEqual, 4.5)
		})

		Convey("Then a larger alpha ends closer to the most recent value", func() {
			values := []float64{1, 3, 2, 10}
			low := stats.EMA(values, 0.2)
			high := stats.EMA(values, 0.8)
			recent := values[len(values)-1]
			So(recent-high, ShouldBeLessThan, recent-low)
		})
	})
}

func TestTeamStats(t *testing.T) {
	Convey("Given scouting entries for one team", t, func() {
		Convey("When entries arrive out of chronological order", func() {
			// Sorted by time the series is 2, 4, 6; alpha 0.5 gives 4.5.
			// Folding in submission order would give a different figure.
			entries := []model.MatchScoutingEntry{
				entry("frc254", 300, map[string]any{"autoScore": 6.0}),
				entry("frc254", 100, map[string]any{"autoScore": 2.0}),
				entry("frc254", 200, map[string]any{"autoScore": 4.0}),
			}
			out := stats.TeamStats(entries, []string{"autoScore"}, 0.5)
			So(out, ShouldHaveLength, 1)
			So(out[0].Avg, ShouldEqual, 4.5)
			So(out[0].Min, ShouldEqual, 2.0)
			So(out[0].Max, ShouldEqual, 6.0)
		})

		Convey("When some entries are unscouted or hold junk values", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc254", 100, map[string]any{"autoScore": 3.0}),
				entry("frc254", 200, nil),
				entry("frc254", 300, map[string]any{"autoScore": "broke down"}),
				entry("frc254", 400, map[string]any{"autoScore": 5.0}),
			}
			out := stats.TeamStats(entries, []string{"autoScore"}, 0.5)
			So(out, ShouldHaveLength, 1)
			So(out[0].Min, ShouldEqual, 3.0)
			So(out[0].Max, ShouldEqual, 5.0)
		})

		Convey("When a field holds checkbox booleans they count as 1 and 0", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc254", 100, map[string]any{"climbed": true}),
				entry("frc254", 200, map[string]any{"climbed": false}),
			}
			out := stats.TeamStats(entries, []string{"climbed"}, 0.5)
			So(out, ShouldHaveLength, 1)
			So(out[0].Min, ShouldEqual, 0.0)
			So(out[0].Max, ShouldEqual, 1.0)
		})

		Convey("When the standard deviation has under two observations it is 0", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc254", 100, map[string]any{"autoScore": 9.0}),
			}
			out := stats.TeamStats(entries, []string{"autoScore"}, 0.5)
			So(out, ShouldHaveLength, 1)
			So(out[0].Var, ShouldEqual, 0.0)
		})

		Convey("When an invalid alpha is passed the default takes over", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc254", 100, map[string]any{"autoScore": 0.0}),
				entry("frc254", 200, map[string]any{"autoScore": 10.0}),
			}
			out := stats.TeamStats(entries, []string{"autoScore"}, 0)
			So(out, ShouldHaveLength, 1)
			So(out[0].Avg, ShouldEqual, 3.0) // 0.3*10 + 0.7*0
		})

		Convey("Then every figure is rounded to one decimal", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc254", 100, map[string]any{"autoScore": 2.36}),
			}
			out := stats.TeamStats(entries, []string{"autoScore"}, 0.5)
			So(out, ShouldHaveLength, 1)
			So(out[0].Avg, ShouldEqual, 2.4)
			So(out[0].Min, ShouldEqual, 2.4)
			So(out[0].Max, ShouldEqual, 2.4)
		})
	})
}

func TestRanges(t *testing.T) {
	Convey("Given per-team stats for an event", t, func() {
		Convey("When two teams differ on a field", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc100", 100, map[string]any{"autoScore": 10.0}),
				entry("frc200", 100, map[string]any{"autoScore": 12.5}),
			}
			teamStats := stats.TeamStats(entries, []string{"autoScore"}, 0.3)
			ranges := stats.Ranges("org1", "2026test", []string{"autoScore"}, teamStats)

			So(ranges, ShouldHaveLength, 1)
			So(ranges[0].Key, ShouldEqual, "autoScore")
			So(ranges[0].AvgMin, ShouldEqual, 10.0)
			So(ranges[0].AvgMax, ShouldEqual, 12.5)
			So(ranges[0].MaxMax, ShouldEqual, 12.5)
			So(ranges[0].MinMin, ShouldEqual, 10.0)
		})

		Convey("When extrema fold over rounded figures, not raw ones", func() {
			entries := []model.MatchScoutingEntry{
				entry("frc100", 100, map[string]any{"autoScore": 2.34}),
				entry("frc200", 100, map[string]any{"autoScore": 2.36}),
			}
			teamStats := stats.TeamStats(entries, []string{"autoScore"}, 0.3)
			ranges := stats.Ranges("org1", "2026test", []string{"autoScore"}, teamStats)

			So(ranges, ShouldHaveLength, 1)
			So(ranges[0].AvgMin, ShouldEqual, 2.3)
			So(ranges[0].AvgMax, ShouldEqual, 2.4)
		})

		Convey("When a field has no observations its accumulator bounds survive", func() {
			ranges := stats.Ranges("org1", "2026test", []string{"ghostField"}, nil)
			So(ranges, ShouldHaveLength, 1)
			So(ranges[0].MinMin, ShouldEqual, 999999.0)
			So(ranges[0].MinMax, ShouldEqual, 0.0)
			So(ranges[0].AvgMin, ShouldEqual, 999999.0)
			So(ranges[0].AvgMax, ShouldEqual, 0.0)
		})

		Convey("Then output order follows the field list", func() {
			ranges := stats.Ranges("org1", "2026test", []string{"b", "a"}, nil)
			So(ranges, ShouldHaveLength, 2)
			So(ranges[0].Key, ShouldEqual, "b")
			So(ranges[1].Key, ShouldEqual, "a")
		})
	})
}
