package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/openscout/scoutcore/internal/domain/model"
)

type layoutKey struct {
	orgKey   string
	year     int
	formType model.FormType
}

type orgEvent struct {
	orgKey   string
	eventKey string
}

// MemStore is a mutex-guarded in-memory Store, used in tests and in
// deployments that run without a database file. All reads return copies so
// callers can mutate results freely.
type MemStore struct {
	mu             sync.RWMutex
	layouts        map[layoutKey][]model.LayoutElement
	matchScouting  map[orgEvent][]model.MatchScoutingEntry
	pitAssignments map[orgEvent][]model.PitAssignment
	aggRanges      map[orgEvent][]model.AggRange
	members        map[string][]model.Member
	pairs          map[string][]model.ScoutingPair
	matches        map[string][]model.Match
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		layouts:        make(map[layoutKey][]model.LayoutElement),
		matchScouting:  make(map[orgEvent][]model.MatchScoutingEntry),
		pitAssignments: make(map[orgEvent][]model.PitAssignment),
		aggRanges:      make(map[orgEvent][]model.AggRange),
		members:        make(map[string][]model.Member),
		pairs:          make(map[string][]model.ScoutingPair),
		matches:        make(map[string][]model.Match),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) Layout(_ context.Context, orgKey string, year int, formType model.FormType) ([]model.LayoutElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elements := copySlice(s.layouts[layoutKey{orgKey, year, formType}])
	sort.SliceStable(elements, func(i, j int) bool { return elements[i].Order < elements[j].Order })
	return elements, nil
}

func (s *MemStore) ReplaceLayout(_ context.Context, orgKey string, year int, formType model.FormType, elements []model.LayoutElement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[layoutKey{orgKey, year, formType}] = copySlice(elements)
	return nil
}

func (s *MemStore) MatchScouting(_ context.Context, orgKey, eventKey string) ([]model.MatchScoutingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := copySlice(s.matchScouting[orgEvent{orgKey, eventKey}])
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Time != entries[j].Time {
			return entries[i].Time < entries[j].Time
		}
		return entries[i].MatchTeamKey < entries[j].MatchTeamKey
	})
	return entries, nil
}

func (s *MemStore) ReplaceMatchScouting(_ context.Context, orgKey, eventKey string, entries []model.MatchScoutingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matchScouting[orgEvent{orgKey, eventKey}] = copySlice(entries)
	return nil
}

func (s *MemStore) SaveMatchData(_ context.Context, orgKey, matchTeamKey string, data map[string]any, actualScorer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entries := range s.matchScouting {
		if key.orgKey != orgKey {
			continue
		}
		for i := range entries {
			if entries[i].MatchTeamKey == matchTeamKey {
				entries[i].Data = data
				entries[i].ActualScorer = actualScorer
				return nil
			}
		}
	}
	return fmt.Errorf("save match data %q: %w", matchTeamKey, ErrNotFound)
}

func (s *MemStore) ClearUnscoutedAssignments(_ context.Context, orgKey, eventKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.matchScouting[orgEvent{orgKey, eventKey}]
	cleared := 0
	for i := range entries {
		if !entries[i].Scouted() && entries[i].AssignedScorer != "" {
			entries[i].AssignedScorer = ""
			cleared++
		}
	}
	return cleared, nil
}

func (s *MemStore) UpdateAssignedScorers(_ context.Context, orgKey, eventKey string, byMatchTeamKey map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.matchScouting[orgEvent{orgKey, eventKey}]
	for i := range entries {
		if name, ok := byMatchTeamKey[entries[i].MatchTeamKey]; ok {
			entries[i].AssignedScorer = name
		}
	}
	return nil
}

func (s *MemStore) PitAssignments(_ context.Context, orgKey, eventKey string) ([]model.PitAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments := copySlice(s.pitAssignments[orgEvent{orgKey, eventKey}])
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].TeamKey < assignments[j].TeamKey })
	return assignments, nil
}

func (s *MemStore) ReplacePitAssignments(_ context.Context, orgKey, eventKey string, assignments []model.PitAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitAssignments[orgEvent{orgKey, eventKey}] = copySlice(assignments)
	return nil
}

func (s *MemStore) AggRanges(_ context.Context, orgKey, eventKey string) ([]model.AggRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.aggRanges[orgEvent{orgKey, eventKey}]), nil
}

func (s *MemStore) ReplaceAggRanges(_ context.Context, orgKey, eventKey string, ranges []model.AggRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggRanges[orgEvent{orgKey, eventKey}] = copySlice(ranges)
	return nil
}

func (s *MemStore) Members(_ context.Context, orgKey string) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := copySlice(s.members[orgKey])
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (s *MemStore) UpsertMember(_ context.Context, member model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.members[member.OrgKey]
	for i := range members {
		if members[i].Name == member.Name {
			members[i] = member
			return nil
		}
	}
	s.members[member.OrgKey] = append(members, member)
	return nil
}

func (s *MemStore) SetMembersAssigned(_ context.Context, orgKey string, names []string, assigned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	named := make(map[string]bool, len(names))
	for _, n := range names {
		named[n] = true
	}
	members := s.members[orgKey]
	for i := range members {
		if named[members[i].Name] {
			members[i].Assigned = assigned
		}
	}
	return nil
}

func (s *MemStore) ScoutingPairs(_ context.Context, orgKey string) ([]model.ScoutingPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.pairs[orgKey]), nil
}

func (s *MemStore) ReplaceScoutingPairs(_ context.Context, orgKey string, pairs []model.ScoutingPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[orgKey] = copySlice(pairs)
	return nil
}

func (s *MemStore) Matches(_ context.Context, eventKey string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := copySlice(s.matches[eventKey])
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Time != matches[j].Time {
			return matches[i].Time < matches[j].Time
		}
		return matches[i].Key < matches[j].Key
	})
	return matches, nil
}

func (s *MemStore) ReplaceMatches(_ context.Context, eventKey string, matches []model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[eventKey] = copySlice(matches)
	return nil
}

func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
