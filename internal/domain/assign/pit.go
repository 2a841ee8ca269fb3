package assign

import (
	"github.com/openscout/scoutcore/internal/domain/model"
)

// AllocateTeams walks the event's team list in order and hands each team
// the next rotation round-robin, wrapping over the expanded rotation list.
// activeTeamKey names the organization's own team, which is skipped so a
// team never scouts itself; pass "" when none is set.
//
// With no pairs there are no rotations and the result is empty: pit
// scouting was simply not staffed.
func AllocateTeams(orgKey, eventKey string, pairs []model.ScoutingPair, teamKeys []string, activeTeamKey string) []model.PitAssignment {
	rotations := ExpandAllRotations(pairs)
	if len(rotations) == 0 {
		return nil
	}

	assignments := make([]model.PitAssignment, 0, len(teamKeys))
	next := 0
	for _, team := range teamKeys {
		if activeTeamKey != "" && team == activeTeamKey {
			continue
		}
		rot := rotations[next%len(rotations)]
		next++
		assignments = append(assignments, model.PitAssignment{
			OrgKey:    orgKey,
			EventKey:  eventKey,
			TeamKey:   team,
			Primary:   rot.Primary,
			Secondary: rot.Secondary,
			Tertiary:  rot.Tertiary,
		})
	}
	return assignments
}
