package assign

import (
	"github.com/openscout/scoutcore/internal/domain/model"
)

// Block allocation defaults.
const (
	defaultBlockSize      = 5
	defaultPoolSize       = 6
	defaultBreakThreshold = 1800 // seconds between matches that ends a run
)

// BlockConfig tunes the block/time-based match allocator. Zero values take
// the defaults.
type BlockConfig struct {
	// BlockSize is the number of contiguous matches a scout pool covers
	// before the pool rotates.
	BlockSize int

	// PoolSize is how many scouts form the active pool for one block.
	PoolSize int

	// BreakThreshold is the gap in seconds between consecutive matches
	// that counts as a major break; allocation stops at the first one.
	BreakThreshold int64
}

func (c BlockConfig) withDefaults() BlockConfig {
	if c.BlockSize <= 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.BreakThreshold <= 0 {
		c.BreakThreshold = defaultBreakThreshold
	}
	return c
}

// AllocateMatchesByBlock assigns scorers block by block: every BlockSize
// matches the next PoolSize names are pulled from a seniority-ordered
// rotating queue (wrapping) to form the active pool, keeping each scout on
// a contiguous run of matches. Within a match, pit-assignment preference
// (primary, then secondary, then tertiary) is honored when the preferred
// scout is in the pool; remaining slots fill round-robin from the leftover
// pool. Matches after the first major break are left untouched for a fresh
// run. Red and blue alternate slot priority from match to match so neither
// alliance's teams consistently get the preferred scouts.
//
// Entries are mutated in place; already-scouted entries keep their scorer.
// Returns the number of slots assigned.
func AllocateMatchesByBlock(entries []model.MatchScoutingEntry, pits []model.PitAssignment, members []model.Member, cfg BlockConfig) int {
	cfg = cfg.withDefaults()
	roster := OrderRoster(members)
	names := make([]string, len(roster))
	for i, m := range roster {
		names[i] = m.Name
	}

	matches := groupByMatch(entries)
	matches = untilMajorBreak(matches, cfg.BreakThreshold)
	if len(matches) == 0 || len(names) == 0 {
		return 0
	}

	pitByTeam := pitIndex(pits)
	poolSize := cfg.PoolSize
	if poolSize > len(names) {
		poolSize = len(names)
	}

	assigned := 0
	queuePos := 0
	var pool []string
	redPriority := true

	for mi, match := range matches {
		// Rotate in a fresh pool at each block boundary.
		if mi%cfg.BlockSize == 0 {
			pool = pool[:0]
			for j := 0; j < poolSize; j++ {
				pool = append(pool, names[(queuePos+j)%len(names)])
			}
			queuePos += poolSize
		}

		slots := prioritizeAlliance(entries, match.slots, redPriority)
		redPriority = !redPriority

		taken := claimedScorers(entries, match.slots)
		inPool := make(map[string]bool, len(pool))
		for _, n := range pool {
			inPool[n] = true
		}

		// Preference pass, restricted to the active pool.
		for rank := 0; rank < preferenceRanks; rank++ {
			for _, i := range slots {
				e := &entries[i]
				if e.Scouted() || e.AssignedScorer != "" {
					continue
				}
				pit, ok := pitByTeam[e.TeamKey]
				if !ok {
					continue
				}
				name := pitRole(pit, rank)
				if name == "" || !inPool[name] || taken[name] {
					continue
				}
				e.AssignedScorer = name
				taken[name] = true
				assigned++
			}
		}

		// Fill what preference could not, round-robin over the leftover
		// pool. When the pool runs out the slot stays unassigned.
		fill := 0
		for _, i := range slots {
			e := &entries[i]
			if e.Scouted() || e.AssignedScorer != "" {
				continue
			}
			for fill < len(pool) && taken[pool[fill]] {
				fill++
			}
			if fill >= len(pool) {
				break
			}
			e.AssignedScorer = pool[fill]
			taken[pool[fill]] = true
			assigned++
		}
	}
	return assigned
}

// untilMajorBreak truncates the chronological match list at the first gap
// of at least threshold seconds between consecutive matches.
func untilMajorBreak(matches []matchGroup, threshold int64) []matchGroup {
	for i := 1; i < len(matches); i++ {
		if matches[i].time-matches[i-1].time >= threshold {
			return matches[:i]
		}
	}
	return matches
}

// prioritizeAlliance orders a match's slot indices so the prioritized
// alliance's teams are considered first.
func prioritizeAlliance(entries []model.MatchScoutingEntry, slots []int, redFirst bool) []int {
	first := model.AllianceRed
	if !redFirst {
		first = model.AllianceBlue
	}
	ordered := make([]int, 0, len(slots))
	for _, i := range slots {
		if entries[i].Alliance == first {
			ordered = append(ordered, i)
		}
	}
	for _, i := range slots {
		if entries[i].Alliance != first {
			ordered = append(ordered, i)
		}
	}
	return ordered
}
