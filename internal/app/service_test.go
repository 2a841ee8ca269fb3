package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openscout/scoutcore/internal/adapters/repository"
	"github.com/openscout/scoutcore/internal/app"
	"github.com/openscout/scoutcore/internal/domain/model"
	"github.com/openscout/scoutcore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeSchedule is a canned ScheduleSource.
type fakeSchedule struct {
	matches []model.Match
	err     error
}

func (f *fakeSchedule) EventMatches(_ context.Context, _ string) ([]model.Match, error) {
	return f.matches, f.err
}

func matchLayout() []model.LayoutElement {
	return []model.LayoutElement{
		{ID: "autoScore", Type: model.ElementCounter, Order: 1},
		{ID: "climbed", Type: model.ElementCheckbox, Order: 2},
		{ID: "notes", Type: model.ElementTextBlock, Order: 3},
		{ID: "totalScore", Type: model.ElementDerived, Order: 4, Operations: []model.Operation{
			{Operator: model.OpSum, Operands: []any{"autoScore", "climbed"}},
		}},
	}
}

func seedLayout(ctx context.Context, store repository.Store) {
	if err := store.ReplaceLayout(ctx, "org1", 2026, model.FormMatchScouting, matchLayout()); err != nil {
		panic(err)
	}
}

func TestService_SubmitMatchData(t *testing.T) {
	Convey("Given a service over a seeded store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedLayout(ctx, store)
		So(store.ReplaceMatchScouting(ctx, "org1", "2026test", []model.MatchScoutingEntry{
			{OrgKey: "org1", EventKey: "2026test", MatchKey: "2026test_qm1", MatchTeamKey: "2026test_qm1_frc1", TeamKey: "frc1", AssignedScorer: "Ada"},
		}), ShouldBeNil)
		svc := app.New(store)

		Convey("When a scout submits raw form values", func() {
			err := svc.SubmitMatchData(ctx, "org1", 2026, "2026test_qm1_frc1", map[string]any{
				"autoScore": "4",
				"climbed":   "true",
				"notes":     "fast cycles",
			}, "Ben")

			Convey("Then the stored record is normalized and augmented", func() {
				So(err, ShouldBeNil)
				entries, _ := store.MatchScouting(ctx, "org1", "2026test")
				So(entries[0].Data["autoScore"], ShouldEqual, 4)
				So(entries[0].Data["climbed"], ShouldEqual, 1)
				So(entries[0].Data["notes"], ShouldEqual, "fast cycles")
				So(entries[0].Data["totalScore"], ShouldEqual, 5.0)
				So(entries[0].ActualScorer, ShouldEqual, "Ben")
				So(entries[0].Scouted(), ShouldBeTrue)
			})
		})

		Convey("When the match-team key is unknown", func() {
			err := svc.SubmitMatchData(ctx, "org1", 2026, "2026test_qm9_frc9", map[string]any{}, "Ben")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_CalculateDerivedMetrics(t *testing.T) {
	Convey("Given a layout with a derived element", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedLayout(ctx, store)
		svc := app.New(store)

		Convey("When recomputing one match's metrics", func() {
			data := map[string]any{"autoScore": 3.0, "climbed": 1.0}
			out, err := svc.CalculateDerivedMetrics(ctx, "org1", 2026, data)

			Convey("Then the map is augmented in place", func() {
				So(err, ShouldBeNil)
				So(out["totalScore"], ShouldEqual, 4.0)
				So(data["totalScore"], ShouldEqual, 4.0)
			})
		})
	})
}

func TestService_CalculateAndStoreAggRanges(t *testing.T) {
	Convey("Given scouted entries for two teams", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedLayout(ctx, store)
		So(store.ReplaceMatchScouting(ctx, "org1", "2026test", []model.MatchScoutingEntry{
			{OrgKey: "org1", EventKey: "2026test", MatchTeamKey: "2026test_qm1_frc100", TeamKey: "frc100", Time: 100,
				Data: map[string]any{"autoScore": 10.0}},
			{OrgKey: "org1", EventKey: "2026test", MatchTeamKey: "2026test_qm1_frc200", TeamKey: "frc200", Time: 100,
				Data: map[string]any{"autoScore": 12.5}},
		}), ShouldBeNil)
		svc := app.New(store)

		Convey("When aggregate ranges are recomputed", func() {
			So(svc.CalculateAndStoreAggRanges(ctx, "org1", 2026, "2026test"), ShouldBeNil)
			ranges, err := store.AggRanges(ctx, "org1", "2026test")
			So(err, ShouldBeNil)

			Convey("Then one range per quantifiable field is stored", func() {
				// autoScore, climbed, totalScore; notes is not quantifiable.
				So(ranges, ShouldHaveLength, 3)
			})

			Convey("Then the scouted field spans both teams' averages", func() {
				var auto model.AggRange
				for _, r := range ranges {
					if r.Key == "autoScore" {
						auto = r
					}
				}
				So(auto.AvgMin, ShouldEqual, 10.0)
				So(auto.AvgMax, ShouldEqual, 12.5)
			})

			Convey("Then unobserved fields keep their initial bounds", func() {
				var climbed model.AggRange
				for _, r := range ranges {
					if r.Key == "climbed" {
						climbed = r
					}
				}
				So(climbed.AvgMin, ShouldEqual, 999999.0)
				So(climbed.AvgMax, ShouldEqual, 0.0)
			})

			Convey("Then a re-run replaces rather than accumulates", func() {
				So(svc.CalculateAndStoreAggRanges(ctx, "org1", 2026, "2026test"), ShouldBeNil)
				again, _ := store.AggRanges(ctx, "org1", "2026test")
				So(again, ShouldHaveLength, 3)
			})
		})
	})
}

func TestService_GenerateTeamAllocations(t *testing.T) {
	Convey("Given scouting pairs and a stored schedule", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.ReplaceScoutingPairs(ctx, "org1", []model.ScoutingPair{
			{OrgKey: "org1", Member1: "Ada", Member2: "Ben"},
		}), ShouldBeNil)
		So(store.UpsertMember(ctx, model.Member{OrgKey: "org1", Name: "Ada", Present: true}), ShouldBeNil)
		So(store.UpsertMember(ctx, model.Member{OrgKey: "org1", Name: "Cal", Present: true}), ShouldBeNil)
		So(store.ReplaceMatches(ctx, "2026test", []model.Match{
			{Key: "2026test_qm1", EventKey: "2026test", Time: 100,
				RedTeams: []string{"frc3", "frc1"}, BlueTeams: []string{"frc2"}},
		}), ShouldBeNil)
		svc := app.New(store)

		Convey("When team allocations are generated", func() {
			So(svc.GenerateTeamAllocations(ctx, "org1", "2026test", "frc2"), ShouldBeNil)

			Convey("Then pit assignments cover every team but the org's own", func() {
				pits, err := store.PitAssignments(ctx, "org1", "2026test")
				So(err, ShouldBeNil)
				So(pits, ShouldHaveLength, 2)
				for _, p := range pits {
					So(p.TeamKey, ShouldNotEqual, "frc2")
					So(p.Primary, ShouldBeIn, "Ada", "Ben")
				}
			})

			Convey("Then pair members are marked as committed", func() {
				members, _ := store.Members(ctx, "org1")
				byName := make(map[string]model.Member)
				for _, m := range members {
					byName[m.Name] = m
				}
				So(byName["Ada"].Assigned, ShouldBeTrue)
				So(byName["Cal"].Assigned, ShouldBeFalse)
			})
		})
	})
}

func TestService_GenerateMatchAllocations(t *testing.T) {
	Convey("Given match slots and pit assignments", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.ReplaceMatchScouting(ctx, "org1", "2026test", []model.MatchScoutingEntry{
			{OrgKey: "org1", EventKey: "2026test", MatchKey: "2026test_qm1", MatchTeamKey: "2026test_qm1_frc1",
				TeamKey: "frc1", Time: 100, Alliance: model.AllianceRed, AssignedScorer: "Stale"},
			{OrgKey: "org1", EventKey: "2026test", MatchKey: "2026test_qm1", MatchTeamKey: "2026test_qm1_frc2",
				TeamKey: "frc2", Time: 100, Alliance: model.AllianceBlue},
		}), ShouldBeNil)
		So(store.ReplacePitAssignments(ctx, "org1", "2026test", []model.PitAssignment{
			{OrgKey: "org1", EventKey: "2026test", TeamKey: "frc1", Primary: "Ada", Secondary: "Ben"},
			{OrgKey: "org1", EventKey: "2026test", TeamKey: "frc2", Primary: "Ada", Secondary: "Cal"},
		}), ShouldBeNil)
		svc := app.New(store)

		Convey("When preference allocation runs", func() {
			So(svc.GenerateMatchAllocations(ctx, "org1", "2026test"), ShouldBeNil)
			entries, _ := store.MatchScouting(ctx, "org1", "2026test")

			Convey("Then stale assignments are cleared and replaced", func() {
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
			})

			Convey("Then no scout is booked twice in one match", func() {
				So(entries[1].AssignedScorer, ShouldEqual, "Cal")
			})
		})

		Convey("When block allocation runs with a roster", func() {
			So(store.UpsertMember(ctx, model.Member{OrgKey: "org1", Name: "Dee", Seniority: "1", Present: true}), ShouldBeNil)
			So(store.UpsertMember(ctx, model.Member{OrgKey: "org1", Name: "Eli", Seniority: "2", Present: true}), ShouldBeNil)
			So(svc.GenerateMatchAllocationsByBlock(ctx, "org1", "2026test"), ShouldBeNil)
			entries, _ := store.MatchScouting(ctx, "org1", "2026test")

			Convey("Then slots fill from the seniority pool", func() {
				So(entries[0].AssignedScorer, ShouldEqual, "Dee")
				So(entries[1].AssignedScorer, ShouldEqual, "Eli")
			})
		})
	})
}

func TestService_SwapScorers(t *testing.T) {
	Convey("Given pending and scouted assignments", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.ReplaceMatchScouting(ctx, "org1", "2026test", []model.MatchScoutingEntry{
			{OrgKey: "org1", EventKey: "2026test", MatchKey: "2026test_qm1", MatchTeamKey: "2026test_qm1_frc1",
				TeamKey: "frc1", Time: 100, AssignedScorer: "Ada", ActualScorer: "Ada",
				Data: map[string]any{"autoScore": 3.0}},
			{OrgKey: "org1", EventKey: "2026test", MatchKey: "2026test_qm2", MatchTeamKey: "2026test_qm2_frc1",
				TeamKey: "frc1", Time: 200, AssignedScorer: "Ada"},
		}), ShouldBeNil)
		svc := app.New(store)

		Convey("When Ada is swapped out for Cal", func() {
			So(svc.SwapScorers(ctx, "org1", "2026test", "Ada", "Cal"), ShouldBeNil)
			entries, _ := store.MatchScouting(ctx, "org1", "2026test")

			Convey("Then only the pending slot changes", func() {
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
				So(entries[1].AssignedScorer, ShouldEqual, "Cal")
			})
		})
	})
}

func TestService_SyncEventMatches(t *testing.T) {
	Convey("Given an external schedule source", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		schedule := &fakeSchedule{matches: []model.Match{
			{Key: "2026test_qm1", EventKey: "2026test", MatchNumber: 1, Time: 100,
				RedTeams: []string{"frc1", "frc2", "frc3"}, BlueTeams: []string{"frc4", "frc5", "frc6"}},
		}}
		svc := app.New(store, app.WithScheduleSource(schedule))

		Convey("When the event is synced", func() {
			So(svc.SyncEventMatches(ctx, "org1", 2026, "2026test"), ShouldBeNil)

			Convey("Then the schedule and one entry per team slot are stored", func() {
				matches, _ := store.Matches(ctx, "2026test")
				So(matches, ShouldHaveLength, 1)

				entries, _ := store.MatchScouting(ctx, "org1", "2026test")
				So(entries, ShouldHaveLength, 6)
				So(entries[0].MatchTeamKey, ShouldEqual, "2026test_qm1_frc1")
				So(entries[0].Alliance, ShouldEqual, model.AllianceRed)
			})

			Convey("And a re-sync after a submission keeps the scouted record", func() {
				So(store.SaveMatchData(ctx, "org1", "2026test_qm1_frc1", map[string]any{"autoScore": 4.0}, "Ada"), ShouldBeNil)

				schedule.matches[0].Time = 150 // schedule shift
				So(svc.SyncEventMatches(ctx, "org1", 2026, "2026test"), ShouldBeNil)

				entries, _ := store.MatchScouting(ctx, "org1", "2026test")
				So(entries, ShouldHaveLength, 6)
				var synced model.MatchScoutingEntry
				for _, e := range entries {
					if e.MatchTeamKey == "2026test_qm1_frc1" {
						synced = e
					}
				}
				So(synced.Time, ShouldEqual, 150)
				So(synced.Data["autoScore"], ShouldEqual, 4.0)
				So(synced.ActualScorer, ShouldEqual, "Ada")
			})
		})

		Convey("When no schedule source is configured", func() {
			bare := app.New(store)
			err := bare.SyncEventMatches(ctx, "org1", 2026, "2026test")
			So(errors.Is(err, app.ErrNoScheduleSource), ShouldBeTrue)
		})

		Convey("When the provider fails the stored data is untouched", func() {
			schedule.err = errors.New("rate limited")
			err := svc.SyncEventMatches(ctx, "org1", 2026, "2026test")
			So(err, ShouldNotBeNil)
		})
	})
}
