// Package demo seeds a store with a synthetic event so the service can be
// exercised locally without a real schedule provider or scouting crew.
package demo

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/openscout/scoutcore/internal/adapters/repository"
	"github.com/openscout/scoutcore/internal/domain/model"
)

// Default keys for the seeded documents.
const (
	DefaultOrgKey   = "demo"
	DefaultYear     = 2026
	DefaultEventKey = "2026demo"
)

// Synthetic event shape.
const (
	teamCount      = 12
	matchCount     = 12
	memberCount    = 10
	matchSpacing   = 420 // seconds between matches
	scoutedMatches = 4   // how many early matches come pre-submitted
	baseTeamNumber = 6200
)

const randomFloatDivisor = 1000000

// Performance archetypes: each synthetic team draws its figures from one
// band so the stored aggregate ranges spread out the way a real event's do.
const (
	caseAverage = 0
	caseHigh    = 1
	caseLow     = 2
	caseElite   = 3
)

// Seed populates the org/event with a layout, roster, pairs, schedule, and
// a partially scouted opening stretch. Existing documents under the same
// keys are replaced.
func Seed(ctx context.Context, store repository.Store, orgKey string, year int, eventKey string) error {
	if err := store.ReplaceLayout(ctx, orgKey, year, model.FormMatchScouting, seedLayout(orgKey, year)); err != nil {
		return fmt.Errorf("seed layout: %w", err)
	}

	members, pairs := seedRoster(orgKey)
	for _, m := range members {
		if err := store.UpsertMember(ctx, m); err != nil {
			return fmt.Errorf("seed member %s: %w", m.Name, err)
		}
	}
	if err := store.ReplaceScoutingPairs(ctx, orgKey, pairs); err != nil {
		return fmt.Errorf("seed pairs: %w", err)
	}

	teams := seedTeams()
	matches := seedMatches(eventKey, teams)
	if err := store.ReplaceMatches(ctx, eventKey, matches); err != nil {
		return fmt.Errorf("seed matches: %w", err)
	}

	entries := seedEntries(orgKey, year, eventKey, matches, teams)
	if err := store.ReplaceMatchScouting(ctx, orgKey, eventKey, entries); err != nil {
		return fmt.Errorf("seed match scouting: %w", err)
	}
	return nil
}

func seedLayout(orgKey string, year int) []model.LayoutElement {
	return []model.LayoutElement{
		{ID: "header", Type: model.ElementHeader2, Label: "Teleop", Order: 1, OrgKey: orgKey, Year: year, FormType: model.FormMatchScouting},
		{ID: "autoScore", Type: model.ElementCounter, Label: "Auto score", Order: 2, OrgKey: orgKey, Year: year, FormType: model.FormMatchScouting},
		{ID: "teleopScore", Type: model.ElementCounter, Label: "Teleop score", Order: 3, OrgKey: orgKey, Year: year, FormType: model.FormMatchScouting},
		{ID: "climbed", Type: model.ElementCheckbox, Label: "Climbed", Order: 4, OrgKey: orgKey, Year: year, FormType: model.FormMatchScouting},
		{ID: "totalScore", Type: model.ElementDerived, Label: "Total", Order: 5, OrgKey: orgKey, Year: year, FormType: model.FormMatchScouting,
			Operations: []model.Operation{
				{Operator: model.OpSum, Operands: []any{"autoScore", "teleopScore"}, As: "raw"},
				{Operator: model.OpCondition, Operands: []any{"climbed", 5.0, 0.0}, As: "climbBonus"},
				{Operator: model.OpSum, Operands: []any{"$raw", "$climbBonus"}},
			}},
	}
}

func seedRoster(orgKey string) ([]model.Member, []model.ScoutingPair) {
	members := make([]model.Member, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		members = append(members, model.Member{
			OrgKey:    orgKey,
			Name:      fmt.Sprintf("Scout %02d", i+1),
			Seniority: fmt.Sprintf("%d", i%4+1),
			Present:   true,
		})
	}
	pairs := make([]model.ScoutingPair, 0, memberCount/2)
	for i := 0; i+1 < memberCount; i += 2 {
		pairs = append(pairs, model.ScoutingPair{
			OrgKey:  orgKey,
			Member1: members[i].Name,
			Member2: members[i+1].Name,
		})
	}
	return members, pairs
}

func seedTeams() []string {
	teams := make([]string, teamCount)
	for i := range teams {
		teams[i] = fmt.Sprintf("frc%d", baseTeamNumber+i)
	}
	return teams
}

// seedMatches rotates the team pool so each match fields six distinct teams
// and every team plays an even share.
func seedMatches(eventKey string, teams []string) []model.Match {
	matches := make([]model.Match, 0, matchCount)
	for i := 0; i < matchCount; i++ {
		red := make([]string, 3)
		blue := make([]string, 3)
		for s := 0; s < 3; s++ {
			red[s] = teams[(i*6+s)%len(teams)]
			blue[s] = teams[(i*6+s+3)%len(teams)]
		}
		matches = append(matches, model.Match{
			Key:         fmt.Sprintf("%s_qm%d", eventKey, i+1),
			EventKey:    eventKey,
			CompLevel:   "qm",
			MatchNumber: i + 1,
			Time:        int64((i + 1) * matchSpacing),
			RedTeams:    red,
			BlueTeams:   blue,
		})
	}
	return matches
}

func seedEntries(orgKey string, year int, eventKey string, matches []model.Match, teams []string) []model.MatchScoutingEntry {
	archetypes := make(map[string]int, len(teams))
	for i, t := range teams {
		archetypes[t] = i % 4
	}

	entries := make([]model.MatchScoutingEntry, 0, len(matches)*6)
	for mi, m := range matches {
		for _, alliance := range []string{model.AllianceRed, model.AllianceBlue} {
			for _, team := range m.AllianceTeams(alliance) {
				e := model.MatchScoutingEntry{
					OrgKey:       orgKey,
					Year:         year,
					EventKey:     eventKey,
					MatchKey:     m.Key,
					MatchNumber:  m.MatchNumber,
					Time:         m.Time,
					Alliance:     alliance,
					TeamKey:      team,
					MatchTeamKey: m.Key + "_" + team,
				}
				if mi < scoutedMatches {
					e.Data = performance(archetypes[team])
					e.ActualScorer = "Scout 01"
					e.AssignedScorer = "Scout 01"
				}
				entries = append(entries, e)
			}
		}
	}
	return entries
}

// performance draws one match's raw figures from the team's band.
func performance(archetype int) map[string]any {
	var lo, span float64
	switch archetype {
	case caseElite:
		lo, span = 9, 6
	case caseHigh:
		lo, span = 6, 5
	case caseLow:
		lo, span = 0, 3
	default:
		lo, span = 3, 5
	}
	auto := float64(int(lo + randomFloat()*span))
	teleop := float64(int(lo*2 + randomFloat()*span*2))
	return map[string]any{
		"autoScore":   auto,
		"teleopScore": teleop,
		"climbed":     randomFloat() < 0.5,
	}
}

// randomFloat returns a random float64 in [0, 1).
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}
