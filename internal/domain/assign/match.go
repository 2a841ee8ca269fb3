package assign

import (
	"sort"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// preferenceRanks walks primary, then secondary, then tertiary.
const preferenceRanks = 3

// AllocateMatchesByPreference fills the AssignedScorer of every unscouted
// match-team slot from that team's pit assignment, walking roles in
// priority order. A scout is never booked twice within one match: the
// primary pass claims names first, and later passes only take slots and
// names still free. Teams without a pit assignment, and slots whose every
// candidate is already claimed, stay unassigned.
//
// Entries are mutated in place; already-scouted entries are never touched.
// Returns the number of slots assigned.
func AllocateMatchesByPreference(entries []model.MatchScoutingEntry, pits []model.PitAssignment) int {
	pitByTeam := pitIndex(pits)
	assigned := 0

	for _, match := range groupByMatch(entries) {
		taken := claimedScorers(entries, match.slots)
		for rank := 0; rank < preferenceRanks; rank++ {
			for _, i := range match.slots {
				e := &entries[i]
				if e.Scouted() || e.AssignedScorer != "" {
					continue
				}
				pit, ok := pitByTeam[e.TeamKey]
				if !ok {
					continue
				}
				name := pitRole(pit, rank)
				if name == "" || taken[name] {
					continue
				}
				e.AssignedScorer = name
				taken[name] = true
				assigned++
			}
		}
	}
	return assigned
}

// SwapScorer substitutes newName for oldName on every not-yet-scouted
// entry, for last-minute substitutions without re-running an allocation.
// Returns the number of entries changed.
func SwapScorer(entries []model.MatchScoutingEntry, oldName, newName string) int {
	changed := 0
	for i := range entries {
		e := &entries[i]
		if e.Scouted() || e.AssignedScorer != oldName {
			continue
		}
		e.AssignedScorer = newName
		changed++
	}
	return changed
}

type matchGroup struct {
	key   string
	time  int64
	slots []int // indices into the entries slice
}

// groupByMatch buckets entry indices per match key, ordered chronologically.
func groupByMatch(entries []model.MatchScoutingEntry) []matchGroup {
	byKey := make(map[string]*matchGroup)
	order := make([]*matchGroup, 0)
	for i, e := range entries {
		g, ok := byKey[e.MatchKey]
		if !ok {
			g = &matchGroup{key: e.MatchKey, time: e.Time}
			byKey[e.MatchKey] = g
			order = append(order, g)
		}
		g.slots = append(g.slots, i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].time != order[j].time {
			return order[i].time < order[j].time
		}
		return order[i].key < order[j].key
	})
	groups := make([]matchGroup, len(order))
	for i, g := range order {
		groups[i] = *g
	}
	return groups
}

// claimedScorers seeds a match's taken set with scorers already locked in
// by historical (scouted) entries, so a fresh run cannot double-book them.
func claimedScorers(entries []model.MatchScoutingEntry, slots []int) map[string]bool {
	taken := make(map[string]bool)
	for _, i := range slots {
		e := entries[i]
		if e.Scouted() && e.AssignedScorer != "" {
			taken[e.AssignedScorer] = true
		}
	}
	return taken
}

func pitIndex(pits []model.PitAssignment) map[string]model.PitAssignment {
	byTeam := make(map[string]model.PitAssignment, len(pits))
	for _, p := range pits {
		byTeam[p.TeamKey] = p
	}
	return byTeam
}

func pitRole(p model.PitAssignment, rank int) string {
	switch rank {
	case 0:
		return p.Primary
	case 1:
		return p.Secondary
	case 2:
		return p.Tertiary
	default:
		return ""
	}
}
