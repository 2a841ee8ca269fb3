package assign_test

import (
	"testing"

	"github.com/openscout/scoutcore/internal/domain/assign"
	"github.com/openscout/scoutcore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func slot(matchKey string, t int64, alliance, team string) model.MatchScoutingEntry {
	return model.MatchScoutingEntry{
		OrgKey:       "org1",
		EventKey:     "2026test",
		MatchKey:     matchKey,
		MatchTeamKey: matchKey + "_" + team,
		Time:         t,
		Alliance:     alliance,
		TeamKey:      team,
	}
}

func pit(team, primary, secondary, tertiary string) model.PitAssignment {
	return model.PitAssignment{
		OrgKey: "org1", EventKey: "2026test", TeamKey: team,
		Primary: primary, Secondary: secondary, Tertiary: tertiary,
	}
}

func TestAllocateMatchesByPreference(t *testing.T) {
	Convey("Given match slots and pit assignments", t, func() {
		Convey("When every team's primary is free", func() {
			entries := []model.MatchScoutingEntry{
				slot("2026test_qm1", 100, model.AllianceRed, "frc1"),
				slot("2026test_qm1", 100, model.AllianceBlue, "frc2"),
			}
			pits := []model.PitAssignment{
				pit("frc1", "Ada", "Ben", ""),
				pit("frc2", "Cal", "Dee", ""),
			}
			n := assign.AllocateMatchesByPreference(entries, pits)
			So(n, ShouldEqual, 2)
			So(entries[0].AssignedScorer, ShouldEqual, "Ada")
			So(entries[1].AssignedScorer, ShouldEqual, "Cal")
		})

		Convey("When two teams in one match share a primary", func() {
			entries := []model.MatchScoutingEntry{
				slot("2026test_qm1", 100, model.AllianceRed, "frc1"),
				slot("2026test_qm1", 100, model.AllianceBlue, "frc2"),
			}
			pits := []model.PitAssignment{
				pit("frc1", "Ada", "Ben", ""),
				pit("frc2", "Ada", "Cal", ""),
			}
			n := assign.AllocateMatchesByPreference(entries, pits)

			Convey("Then the second falls through to its secondary", func() {
				So(n, ShouldEqual, 2)
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
				So(entries[1].AssignedScorer, ShouldEqual, "Cal")
			})
		})

		Convey("When an entry in the match is already scouted", func() {
			done := slot("2026test_qm1", 100, model.AllianceRed, "frc1")
			done.AssignedScorer = "Ada"
			done.ActualScorer = "Ada"
			done.Data = map[string]any{"autoScore": 3.0}
			entries := []model.MatchScoutingEntry{
				done,
				slot("2026test_qm1", 100, model.AllianceBlue, "frc2"),
			}
			pits := []model.PitAssignment{pit("frc2", "Ada", "Ben", "")}
			n := assign.AllocateMatchesByPreference(entries, pits)

			Convey("Then its scorer is locked in and cannot be double-booked", func() {
				So(n, ShouldEqual, 1)
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
				So(entries[1].AssignedScorer, ShouldEqual, "Ben")
			})
		})

		Convey("When a scout appears in two different matches", func() {
			entries := []model.MatchScoutingEntry{
				slot("2026test_qm1", 100, model.AllianceRed, "frc1"),
				slot("2026test_qm2", 200, model.AllianceRed, "frc1"),
			}
			pits := []model.PitAssignment{pit("frc1", "Ada", "", "")}
			n := assign.AllocateMatchesByPreference(entries, pits)

			Convey("Then both slots get them; the claim is per-match only", func() {
				So(n, ShouldEqual, 2)
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
				So(entries[1].AssignedScorer, ShouldEqual, "Ada")
			})
		})

		Convey("When a team has no pit assignment or every candidate is claimed", func() {
			entries := []model.MatchScoutingEntry{
				slot("2026test_qm1", 100, model.AllianceRed, "frc1"),
				slot("2026test_qm1", 100, model.AllianceBlue, "frc9"),
			}
			pits := []model.PitAssignment{
				pit("frc1", "Ada", "", ""),
				pit("frc9", "Ada", "", ""),
			}
			n := assign.AllocateMatchesByPreference(entries, pits)

			Convey("Then the slot stays unassigned rather than erroring", func() {
				So(n, ShouldEqual, 1)
				So(entries[1].AssignedScorer, ShouldBeEmpty)
			})
		})
	})
}

func TestSwapScorer(t *testing.T) {
	Convey("Given a mix of scouted and pending entries", t, func() {
		done := slot("2026test_qm1", 100, model.AllianceRed, "frc1")
		done.AssignedScorer = "Ada"
		done.Data = map[string]any{"autoScore": 1.0}

		pending := slot("2026test_qm2", 200, model.AllianceRed, "frc1")
		pending.AssignedScorer = "Ada"

		other := slot("2026test_qm2", 200, model.AllianceBlue, "frc2")
		other.AssignedScorer = "Ben"

		entries := []model.MatchScoutingEntry{done, pending, other}

		Convey("When swapping Ada out for Cal", func() {
			n := assign.SwapScorer(entries, "Ada", "Cal")

			Convey("Then only the pending entry changes", func() {
				So(n, ShouldEqual, 1)
				So(entries[0].AssignedScorer, ShouldEqual, "Ada")
				So(entries[1].AssignedScorer, ShouldEqual, "Cal")
				So(entries[2].AssignedScorer, ShouldEqual, "Ben")
			})
		})
	})
}
