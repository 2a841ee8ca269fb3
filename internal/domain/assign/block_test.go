package assign_test

import (
	"strconv"
	"testing"

	"github.com/openscout/scoutcore/internal/domain/assign"
	"github.com/openscout/scoutcore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// roster returns present members whose seniority matches their position in
// names, handed over in reverse to prove ordering is not positional.
func roster(names ...string) []model.Member {
	members := make([]model.Member, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		members = append(members, model.Member{
			Name:      names[i],
			Seniority: strconv.Itoa(i + 1),
			Present:   true,
		})
	}
	return members
}

// twoSlotMatches builds one red and one blue slot per match at 300s spacing.
func twoSlotMatches(n int) []model.MatchScoutingEntry {
	entries := make([]model.MatchScoutingEntry, 0, 2*n)
	for i := 0; i < n; i++ {
		key := "2026test_qm" + strconv.Itoa(i+1)
		t := int64(300 * i)
		entries = append(entries,
			slot(key, t, model.AllianceRed, "frc"+strconv.Itoa(2*i+1)),
			slot(key, t, model.AllianceBlue, "frc"+strconv.Itoa(2*i+2)),
		)
	}
	return entries
}

func TestAllocateMatchesByBlock(t *testing.T) {
	Convey("Given a seniority queue and a block schedule", t, func() {
		members := roster("Ada", "Ben", "Cal", "Dee")

		Convey("When blocks of two matches draw pools of two scouts", func() {
			entries := twoSlotMatches(4)
			cfg := assign.BlockConfig{BlockSize: 2, PoolSize: 2, BreakThreshold: 100000}
			n := assign.AllocateMatchesByBlock(entries, nil, members, cfg)

			Convey("Then the first block is covered by the two most senior", func() {
				So(n, ShouldEqual, 8)
				So(entries[0].AssignedScorer, ShouldEqual, "Ada") // qm1 red
				So(entries[1].AssignedScorer, ShouldEqual, "Ben") // qm1 blue
			})

			Convey("Then slot priority flips alliances between matches", func() {
				So(entries[3].AssignedScorer, ShouldEqual, "Ada") // qm2 blue goes first
				So(entries[2].AssignedScorer, ShouldEqual, "Ben")
			})

			Convey("Then the next block rotates in the next scouts in the queue", func() {
				So(entries[4].AssignedScorer, ShouldEqual, "Cal") // qm3 red
				So(entries[5].AssignedScorer, ShouldEqual, "Dee")
				So(entries[7].AssignedScorer, ShouldEqual, "Cal") // qm4 blue goes first
				So(entries[6].AssignedScorer, ShouldEqual, "Dee")
			})
		})

		Convey("When the queue is shorter than the blocks demand it wraps", func() {
			three := roster("Ada", "Ben", "Cal")
			entries := []model.MatchScoutingEntry{
				slot("2026test_qm1", 0, model.AllianceRed, "frc1"),
				slot("2026test_qm2", 300, model.AllianceRed, "frc2"),
				slot("2026test_qm3", 600, model.AllianceRed, "frc3"),
			}
			cfg := assign.BlockConfig{BlockSize: 1, PoolSize: 2, BreakThreshold: 100000}
			n := assign.AllocateMatchesByBlock(entries, nil, three, cfg)

			So(n, ShouldEqual, 3)
			So(entries[0].AssignedScorer, ShouldEqual, "Ada")
			So(entries[1].AssignedScorer, ShouldEqual, "Cal") // queue wrapped past Ben
			So(entries[2].AssignedScorer, ShouldEqual, "Ben")
		})

		Convey("When the schedule has a major break", func() {
			entries := twoSlotMatches(3)
			// Push the last match past the default break threshold.
			for i := 4; i < 6; i++ {
				entries[i].Time += 2000
			}
			n := assign.AllocateMatchesByBlock(entries, nil, members, assign.BlockConfig{})

			Convey("Then matches after the break stay untouched", func() {
				So(n, ShouldEqual, 4)
				So(entries[4].AssignedScorer, ShouldBeEmpty)
				So(entries[5].AssignedScorer, ShouldBeEmpty)
			})
		})

		Convey("When a pit preference points inside the active pool", func() {
			entries := twoSlotMatches(1)
			pits := []model.PitAssignment{pit(entries[0].TeamKey, "Ben", "", "")}
			cfg := assign.BlockConfig{BlockSize: 2, PoolSize: 2, BreakThreshold: 100000}
			n := assign.AllocateMatchesByBlock(entries, pits, members, cfg)

			Convey("Then it wins over round-robin fill order", func() {
				So(n, ShouldEqual, 2)
				So(entries[0].AssignedScorer, ShouldEqual, "Ben")
				So(entries[1].AssignedScorer, ShouldEqual, "Ada")
			})
		})

		Convey("When a pit preference points outside the pool it is ignored", func() {
			entries := twoSlotMatches(1)
			pits := []model.PitAssignment{pit(entries[0].TeamKey, "Dee", "", "")}
			cfg := assign.BlockConfig{BlockSize: 2, PoolSize: 2, BreakThreshold: 100000}
			n := assign.AllocateMatchesByBlock(entries, pits, members, cfg)

			So(n, ShouldEqual, 2)
			So(entries[0].AssignedScorer, ShouldEqual, "Ada")
		})

		Convey("When there are no present members nothing is assigned", func() {
			entries := twoSlotMatches(1)
			So(assign.AllocateMatchesByBlock(entries, nil, nil, assign.BlockConfig{}), ShouldEqual, 0)
			So(entries[0].AssignedScorer, ShouldBeEmpty)
		})
	})
}
