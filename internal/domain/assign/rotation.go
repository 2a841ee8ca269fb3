// Package assign allocates scouts to pit-scouting teams and to match-team
// slots.
//
// Both allocators are pure over in-memory documents; the app layer owns the
// surrounding reads, the wholesale replacement writes, and the per-run lock.
// Infeasible slots are left unassigned rather than reported as errors.
package assign

import (
	"sort"
	"strconv"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// Rotation designates one pit-scouting coverage ordering: a primary scout
// and, for pairs of two or three, cyclic secondary/tertiary backups.
type Rotation struct {
	Primary   string
	Secondary string
	Tertiary  string
}

// Role returns the rotation's name for a preference rank (0 primary,
// 1 secondary, 2 tertiary); empty when the rotation has no such member.
func (r Rotation) Role(rank int) string {
	switch rank {
	case 0:
		return r.Primary
	case 1:
		return r.Secondary
	case 2:
		return r.Tertiary
	default:
		return ""
	}
}

// ExpandRotations expands a pair of k members into k rotations, each member
// appearing exactly once as primary with the others cyclically shifted
// behind them. {A,B,C} yields (A,B,C), (B,C,A), (C,A,B).
func ExpandRotations(pair model.ScoutingPair) []Rotation {
	members := pair.Members()
	k := len(members)
	rotations := make([]Rotation, 0, k)
	for i := 0; i < k; i++ {
		r := Rotation{Primary: members[i]}
		if k > 1 {
			r.Secondary = members[(i+1)%k]
		}
		if k > 2 {
			r.Tertiary = members[(i+2)%k]
		}
		rotations = append(rotations, r)
	}
	return rotations
}

// ExpandAllRotations expands every pair in order into one flat rotation
// list for round-robin assignment.
func ExpandAllRotations(pairs []model.ScoutingPair) []Rotation {
	var rotations []Rotation
	for _, p := range pairs {
		rotations = append(rotations, ExpandRotations(p)...)
	}
	return rotations
}

// OrderRoster returns the present members ordered by seniority ascending,
// then subteam, then name. Members not at the event are dropped.
func OrderRoster(members []model.Member) []model.Member {
	roster := make([]model.Member, 0, len(members))
	for _, m := range members {
		if m.Present {
			roster = append(roster, m)
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i], roster[j]
		sa, sb := seniorityValue(a.Seniority), seniorityValue(b.Seniority)
		if sa != sb {
			return sa < sb
		}
		if a.SubteamKey != b.SubteamKey {
			return a.SubteamKey < b.SubteamKey
		}
		return a.Name < b.Name
	})
	return roster
}

// seniorityValue parses the numeric-with-subcode seniority string ("2.1"
// sorts between "2" and "3"). Unparsable values sort last.
func seniorityValue(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1e9
	}
	return v
}
