// Package repository defines the scouting document store interface and its
// implementations.
//
// The store is an explicitly constructed, injected dependency; nothing in
// this module holds a global database handle. Replacement methods follow
// the delete-then-insert pattern the stored data was built around: the two
// steps are not atomic, and a concurrent reader may observe a transient
// empty collection. Writers are expected to be single-run-at-a-time per
// (org, event); the app layer enforces that with an advisory lock.
package repository

import (
	"context"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// Store provides read/write access to the named scouting collections.
type Store interface {
	// Layout returns the form layout for one org/year/form type, ordered
	// by element order.
	Layout(ctx context.Context, orgKey string, year int, formType model.FormType) ([]model.LayoutElement, error)
	// ReplaceLayout wholesale-replaces the layout for one org/year/form type.
	ReplaceLayout(ctx context.Context, orgKey string, year int, formType model.FormType, elements []model.LayoutElement) error

	// MatchScouting returns all match scouting entries for an org/event,
	// ordered by match time then match-team key.
	MatchScouting(ctx context.Context, orgKey, eventKey string) ([]model.MatchScoutingEntry, error)
	// ReplaceMatchScouting wholesale-replaces the entries for an org/event.
	ReplaceMatchScouting(ctx context.Context, orgKey, eventKey string, entries []model.MatchScoutingEntry) error
	// SaveMatchData records a submission: the raw data map and the scout
	// who actually scored the match. Returns ErrNotFound for an unknown
	// match-team key.
	SaveMatchData(ctx context.Context, orgKey, matchTeamKey string, data map[string]any, actualScorer string) error
	// ClearUnscoutedAssignments unsets AssignedScorer on every entry for
	// the org/event that has no submitted data, returning the count.
	ClearUnscoutedAssignments(ctx context.Context, orgKey, eventKey string) (int, error)
	// UpdateAssignedScorers applies assigned-scorer values by match-team
	// key in one bulk write.
	UpdateAssignedScorers(ctx context.Context, orgKey, eventKey string, byMatchTeamKey map[string]string) error

	// PitAssignments returns the pit-scouting assignments for an org/event.
	PitAssignments(ctx context.Context, orgKey, eventKey string) ([]model.PitAssignment, error)
	// ReplacePitAssignments wholesale-replaces them.
	ReplacePitAssignments(ctx context.Context, orgKey, eventKey string, assignments []model.PitAssignment) error

	// AggRanges returns the stored aggregate ranges for an org/event.
	AggRanges(ctx context.Context, orgKey, eventKey string) ([]model.AggRange, error)
	// ReplaceAggRanges wholesale-replaces them.
	ReplaceAggRanges(ctx context.Context, orgKey, eventKey string, ranges []model.AggRange) error

	// Members returns an org's roster.
	Members(ctx context.Context, orgKey string) ([]model.Member, error)
	// UpsertMember inserts or updates one roster member by name.
	UpsertMember(ctx context.Context, member model.Member) error
	// SetMembersAssigned flips the Assigned flag for the named members.
	SetMembersAssigned(ctx context.Context, orgKey string, names []string, assigned bool) error

	// ScoutingPairs returns an org's pit scouting pairs.
	ScoutingPairs(ctx context.Context, orgKey string) ([]model.ScoutingPair, error)
	// ReplaceScoutingPairs wholesale-replaces them.
	ReplaceScoutingPairs(ctx context.Context, orgKey string, pairs []model.ScoutingPair) error

	// Matches returns an event's schedule ordered by time then key.
	Matches(ctx context.Context, eventKey string) ([]model.Match, error)
	// ReplaceMatches wholesale-replaces an event's schedule.
	ReplaceMatches(ctx context.Context, eventKey string, matches []model.Match) error
}
