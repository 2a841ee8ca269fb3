// Package app provides the core service that sequences the scouting
// engines over the document store.
//
// Each operation runs to completion as one sequential unit: reads, pure
// computation, then writes, in that order. The store's delete-then-insert
// replacements are not atomic, so the service holds an advisory lock per
// (org, event) to keep two runs from interleaving; it does not guard
// against writers outside this process.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openscout/scoutcore/internal/adapters/repository"
	"github.com/openscout/scoutcore/internal/adapters/tba"
	"github.com/openscout/scoutcore/internal/domain/assign"
	"github.com/openscout/scoutcore/internal/domain/derive"
	"github.com/openscout/scoutcore/internal/domain/layout"
	"github.com/openscout/scoutcore/internal/domain/model"
	"github.com/openscout/scoutcore/internal/domain/stats"
	"github.com/openscout/scoutcore/pkg/logger"
	"github.com/openscout/scoutcore/pkg/metrics"
)

// Allocation run kinds as reported to metrics.
const (
	runKindPit        = "pit"
	runKindPreference = "preference"
	runKindBlock      = "block"
)

// Service sequences derived-metric evaluation, aggregate statistics, and
// scout allocation over an injected document store.
type Service struct {
	store    repository.Store
	schedule ScheduleSource

	emaAlpha float64
	blockCfg assign.BlockConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	log     logger.Logger
	metrics *metrics.Manager
}

// ScheduleSource loads an event's match schedule from an external provider.
// *tba.Client satisfies it.
type ScheduleSource interface {
	EventMatches(ctx context.Context, eventKey string) ([]model.Match, error)
}

var _ ScheduleSource = (*tba.Client)(nil)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEMAAlpha sets the smoothing factor of the per-team moving average.
func WithEMAAlpha(alpha float64) Option {
	return func(s *Service) {
		if alpha > 0 && alpha < 1 {
			s.emaAlpha = alpha
		}
	}
}

// WithBlockConfig tunes the block allocator.
func WithBlockConfig(cfg assign.BlockConfig) Option {
	return func(s *Service) {
		s.blockCfg = cfg
	}
}

// WithScheduleSource sets the external match schedule provider.
func WithScheduleSource(src ScheduleSource) Option {
	return func(s *Service) {
		s.schedule = src
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Service over the given store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		emaAlpha: stats.DefaultAlpha,
		locks:    make(map[string]*sync.Mutex),
		log:      logger.Get(),
		metrics:  metrics.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock acquires the advisory mutex for one (org, event) and returns its
// release func.
func (s *Service) lock(orgKey, eventKey string) func() {
	key := orgKey + "/" + eventKey
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	s.metrics.LockAcquired()
	return func() {
		s.metrics.LockReleased()
		m.Unlock()
	}
}

// CalculateDerivedMetrics runs every derived element of the org/year match
// scouting layout against one match's raw data, augmenting the map in
// place and returning the same reference. Per-record garbage never errors;
// only a failure to fetch the layout does.
func (s *Service) CalculateDerivedMetrics(ctx context.Context, orgKey string, year int, matchData map[string]any) (map[string]any, error) {
	elements, err := s.store.Layout(ctx, orgKey, year, model.FormMatchScouting)
	if err != nil {
		return nil, fmt.Errorf("fetch matchscouting layout for %s/%d: %w", orgKey, year, err)
	}

	derived := 0
	for _, el := range elements {
		if el.Type == model.ElementDerived {
			derived++
		}
	}
	derive.Augment(elements, matchData)
	s.metrics.RecordDerivedEvaluation(derived)
	return matchData, nil
}

// SubmitMatchData records one scouting submission: raw values are
// normalized per their element types, derived metrics are computed, and
// the augmented record is stored with the submitting scout's name.
func (s *Service) SubmitMatchData(ctx context.Context, orgKey string, year int, matchTeamKey string, data map[string]any, scorer string) error {
	elements, err := s.store.Layout(ctx, orgKey, year, model.FormMatchScouting)
	if err != nil {
		return fmt.Errorf("fetch matchscouting layout for %s/%d: %w", orgKey, year, err)
	}

	for _, el := range elements {
		if !layout.IsMetric(el.Type) || el.Type == model.ElementDerived {
			continue
		}
		data[el.ID] = layout.FixDatumType(data[el.ID], el.Type)
	}
	derive.Augment(elements, data)

	if err := s.store.SaveMatchData(ctx, orgKey, matchTeamKey, data, scorer); err != nil {
		return err
	}
	s.log.Info(ctx, "match data submitted",
		logger.String("org_key", orgKey),
		logger.String("match_team_key", matchTeamKey),
		logger.String("scorer", scorer))
	return nil
}

// CalculateAndStoreAggRanges recomputes and wholesale-replaces the
// aggregate range documents for one org/event. Safe to re-run any time; no
// prior state leaks into the result.
func (s *Service) CalculateAndStoreAggRanges(ctx context.Context, orgKey string, year int, eventKey string) error {
	defer s.lock(orgKey, eventKey)()
	start := time.Now()
	runID := uuid.NewString()

	elements, err := s.store.Layout(ctx, orgKey, year, model.FormMatchScouting)
	if err != nil {
		return fmt.Errorf("fetch matchscouting layout for %s/%d: %w", orgKey, year, err)
	}
	fields := make([]string, 0, len(elements))
	for _, el := range elements {
		if layout.IsQuantifiable(el.Type) {
			fields = append(fields, el.ID)
		}
	}

	entries, err := s.store.MatchScouting(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("fetch match scouting for %s/%s: %w", orgKey, eventKey, err)
	}

	teamStats := stats.TeamStats(entries, fields, s.emaAlpha)
	ranges := stats.Ranges(orgKey, eventKey, fields, teamStats)
	if len(teamStats) == 0 {
		s.log.Warn(ctx, "no scouted data; stored ranges carry initial bounds",
			logger.String("run_id", runID),
			logger.String("org_key", orgKey),
			logger.String("event_key", eventKey))
	}

	if err := s.store.ReplaceAggRanges(ctx, orgKey, eventKey, ranges); err != nil {
		return fmt.Errorf("replace agg ranges for %s/%s: %w", orgKey, eventKey, err)
	}

	s.metrics.ObserveAggRecompute(time.Since(start), len(ranges))
	s.log.Info(ctx, "aggregate ranges recomputed",
		logger.String("run_id", runID),
		logger.String("org_key", orgKey),
		logger.String("event_key", eventKey),
		logger.Int("fields", len(fields)),
		logger.Int("team_stats", len(teamStats)))
	return nil
}

// GenerateTeamAllocations expands the org's scouting pairs into rotations
// and hands them round-robin to the event's teams, replacing all pit
// assignments for the org/event. activeTeamKey, when non-empty, names the
// org's own team, which is skipped.
func (s *Service) GenerateTeamAllocations(ctx context.Context, orgKey, eventKey, activeTeamKey string) error {
	defer s.lock(orgKey, eventKey)()
	runID := uuid.NewString()

	pairs, err := s.store.ScoutingPairs(ctx, orgKey)
	if err != nil {
		return fmt.Errorf("fetch scouting pairs for %s: %w", orgKey, err)
	}
	teams, err := s.eventTeams(ctx, eventKey)
	if err != nil {
		return err
	}

	assignments := assign.AllocateTeams(orgKey, eventKey, pairs, teams, activeTeamKey)
	if err := s.store.ReplacePitAssignments(ctx, orgKey, eventKey, assignments); err != nil {
		return fmt.Errorf("replace pit assignments for %s/%s: %w", orgKey, eventKey, err)
	}

	committed := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range pairs {
		for _, name := range p.Members() {
			if !seen[name] {
				seen[name] = true
				committed = append(committed, name)
			}
		}
	}
	if err := s.store.SetMembersAssigned(ctx, orgKey, committed, true); err != nil {
		return fmt.Errorf("mark members assigned for %s: %w", orgKey, err)
	}

	s.metrics.RecordAllocationRun(runKindPit, len(assignments))
	s.log.Info(ctx, "team allocations generated",
		logger.String("run_id", runID),
		logger.String("org_key", orgKey),
		logger.String("event_key", eventKey),
		logger.Int("teams", len(teams)),
		logger.Int("assignments", len(assignments)))
	return nil
}

// GenerateMatchAllocations assigns scorers to every unscouted match-team
// slot from each team's pit assignment, primary first, never booking a
// scout twice in one match. Prior assignments on unscouted slots are
// cleared first; scouted history is untouched.
func (s *Service) GenerateMatchAllocations(ctx context.Context, orgKey, eventKey string) error {
	defer s.lock(orgKey, eventKey)()
	return s.allocateMatches(ctx, orgKey, eventKey, runKindPreference)
}

// GenerateMatchAllocationsByBlock assigns scorers in contiguous blocks
// from a rotating seniority-ordered pool, stopping at the first major
// schedule break. Prior assignments on unscouted slots are cleared first.
func (s *Service) GenerateMatchAllocationsByBlock(ctx context.Context, orgKey, eventKey string) error {
	defer s.lock(orgKey, eventKey)()
	return s.allocateMatches(ctx, orgKey, eventKey, runKindBlock)
}

func (s *Service) allocateMatches(ctx context.Context, orgKey, eventKey, kind string) error {
	runID := uuid.NewString()

	cleared, err := s.store.ClearUnscoutedAssignments(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("clear assignments for %s/%s: %w", orgKey, eventKey, err)
	}

	entries, err := s.store.MatchScouting(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("fetch match scouting for %s/%s: %w", orgKey, eventKey, err)
	}
	pits, err := s.store.PitAssignments(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("fetch pit assignments for %s/%s: %w", orgKey, eventKey, err)
	}

	var assigned int
	switch kind {
	case runKindBlock:
		members, err := s.store.Members(ctx, orgKey)
		if err != nil {
			return fmt.Errorf("fetch members for %s: %w", orgKey, err)
		}
		assigned = assign.AllocateMatchesByBlock(entries, pits, members, s.blockCfg)
	default:
		assigned = assign.AllocateMatchesByPreference(entries, pits)
	}

	byKey := make(map[string]string, assigned)
	for _, e := range entries {
		if !e.Scouted() && e.AssignedScorer != "" {
			byKey[e.MatchTeamKey] = e.AssignedScorer
		}
	}
	if err := s.store.UpdateAssignedScorers(ctx, orgKey, eventKey, byKey); err != nil {
		return fmt.Errorf("update assigned scorers for %s/%s: %w", orgKey, eventKey, err)
	}

	s.metrics.RecordAllocationRun(kind, assigned)
	s.log.Info(ctx, "match allocations generated",
		logger.String("run_id", runID),
		logger.String("org_key", orgKey),
		logger.String("event_key", eventKey),
		logger.String("kind", kind),
		logger.Int("cleared", cleared),
		logger.Int("assigned", assigned))
	return nil
}

// SwapScorers substitutes newName for oldName on every unscouted slot of
// the org/event, without re-running the allocation.
func (s *Service) SwapScorers(ctx context.Context, orgKey, eventKey, oldName, newName string) error {
	defer s.lock(orgKey, eventKey)()

	entries, err := s.store.MatchScouting(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("fetch match scouting for %s/%s: %w", orgKey, eventKey, err)
	}
	changed := assign.SwapScorer(entries, oldName, newName)

	byKey := make(map[string]string, changed)
	for _, e := range entries {
		if !e.Scouted() && e.AssignedScorer == newName {
			byKey[e.MatchTeamKey] = newName
		}
	}
	if err := s.store.UpdateAssignedScorers(ctx, orgKey, eventKey, byKey); err != nil {
		return fmt.Errorf("update assigned scorers for %s/%s: %w", orgKey, eventKey, err)
	}

	s.metrics.RecordSwap(changed)
	s.log.Info(ctx, "scorer swapped",
		logger.String("org_key", orgKey),
		logger.String("event_key", eventKey),
		logger.String("old", oldName),
		logger.String("new", newName),
		logger.Int("changed", changed))
	return nil
}

// SyncEventMatches loads the event's schedule from the external provider,
// replaces the stored schedule, and bulk-recreates the org's match
// scouting entries. Submitted data and scorers carry over by match-team
// key, so re-syncing after a schedule change never loses scouted records.
func (s *Service) SyncEventMatches(ctx context.Context, orgKey string, year int, eventKey string) error {
	if s.schedule == nil {
		return ErrNoScheduleSource
	}
	defer s.lock(orgKey, eventKey)()

	matches, err := s.schedule.EventMatches(ctx, eventKey)
	if err != nil {
		return fmt.Errorf("fetch schedule for %s: %w", eventKey, err)
	}
	if err := s.store.ReplaceMatches(ctx, eventKey, matches); err != nil {
		return fmt.Errorf("replace matches for %s: %w", eventKey, err)
	}

	existing, err := s.store.MatchScouting(ctx, orgKey, eventKey)
	if err != nil {
		return fmt.Errorf("fetch match scouting for %s/%s: %w", orgKey, eventKey, err)
	}
	byKey := make(map[string]model.MatchScoutingEntry, len(existing))
	for _, e := range existing {
		byKey[e.MatchTeamKey] = e
	}

	entries := make([]model.MatchScoutingEntry, 0, len(matches)*6)
	for _, m := range matches {
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
				if prev, ok := byKey[e.MatchTeamKey]; ok {
					e.AssignedScorer = prev.AssignedScorer
					e.ActualScorer = prev.ActualScorer
					e.Data = prev.Data
				}
				entries = append(entries, e)
			}
		}
	}
	if err := s.store.ReplaceMatchScouting(ctx, orgKey, eventKey, entries); err != nil {
		return fmt.Errorf("replace match scouting for %s/%s: %w", orgKey, eventKey, err)
	}

	s.metrics.RecordMatchesSynced(len(matches))
	s.log.Info(ctx, "event matches synced",
		logger.String("org_key", orgKey),
		logger.String("event_key", eventKey),
		logger.Int("matches", len(matches)),
		logger.Int("entries", len(entries)))
	return nil
}

// eventTeams derives the ordered team list from the stored schedule.
func (s *Service) eventTeams(ctx context.Context, eventKey string) ([]string, error) {
	matches, err := s.store.Matches(ctx, eventKey)
	if err != nil {
		return nil, fmt.Errorf("fetch matches for %s: %w", eventKey, err)
	}
	seen := make(map[string]bool)
	teams := make([]string, 0)
	for _, m := range matches {
		for _, t := range append(append([]string{}, m.RedTeams...), m.BlueTeams...) {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	sort.Strings(teams)
	return teams, nil
}
