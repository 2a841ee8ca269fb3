package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openscout/scoutcore/internal/domain/model"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLStore is a sqlite-backed Store. Documents with structured payloads
// (layout operations, submission data, alliance team lists) are stored as
// JSON columns next to the indexed keys.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (creating if needed) the sqlite database at path and
// applies pending migrations. Use ":memory:" for an ephemeral database.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) Layout(ctx context.Context, orgKey string, year int, formType model.FormType) ([]model.LayoutElement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM layout
		WHERE org_key = ? AND year = ? AND form_type = ?
		ORDER BY ord ASC
	`, orgKey, year, string(formType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elements []model.LayoutElement
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var el model.LayoutElement
		if err := json.Unmarshal([]byte(doc), &el); err != nil {
			return nil, fmt.Errorf("decode layout element: %w", err)
		}
		elements = append(elements, el)
	}
	return elements, rows.Err()
}

func (s *SQLStore) ReplaceLayout(ctx context.Context, orgKey string, year int, formType model.FormType, elements []model.LayoutElement) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM layout WHERE org_key = ? AND year = ? AND form_type = ?`, orgKey, year, string(formType)); err != nil {
		return err
	}
	for _, el := range elements {
		doc, err := json.Marshal(el)
		if err != nil {
			return fmt.Errorf("encode layout element %q: %w", el.ID, err)
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO layout (org_key, year, form_type, id, ord, doc) VALUES (?, ?, ?, ?, ?, ?)
		`, orgKey, year, string(formType), el.ID, el.Order, string(doc)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) MatchScouting(ctx context.Context, orgKey, eventKey string) ([]model.MatchScoutingEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_key, event_key, year, match_key, match_number, time, alliance,
		       team_key, match_team_key, assigned_scorer, actual_scorer, data
		FROM matchscouting
		WHERE org_key = ? AND event_key = ?
		ORDER BY time ASC, match_team_key ASC
	`, orgKey, eventKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.MatchScoutingEntry
	for rows.Next() {
		var e model.MatchScoutingEntry
		var data sql.NullString
		if err := rows.Scan(&e.OrgKey, &e.EventKey, &e.Year, &e.MatchKey, &e.MatchNumber, &e.Time,
			&e.Alliance, &e.TeamKey, &e.MatchTeamKey, &e.AssignedScorer, &e.ActualScorer, &data); err != nil {
			return nil, err
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
				return nil, fmt.Errorf("decode match data %q: %w", e.MatchTeamKey, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) ReplaceMatchScouting(ctx context.Context, orgKey, eventKey string, entries []model.MatchScoutingEntry) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM matchscouting WHERE org_key = ? AND event_key = ?`, orgKey, eventKey); err != nil {
		return err
	}
	for _, e := range entries {
		data, err := encodeData(e.Data)
		if err != nil {
			return fmt.Errorf("encode match data %q: %w", e.MatchTeamKey, err)
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO matchscouting (org_key, event_key, year, match_key, match_number, time, alliance,
			                           team_key, match_team_key, assigned_scorer, actual_scorer, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.OrgKey, e.EventKey, e.Year, e.MatchKey, e.MatchNumber, e.Time, e.Alliance,
			e.TeamKey, e.MatchTeamKey, e.AssignedScorer, e.ActualScorer, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) SaveMatchData(ctx context.Context, orgKey, matchTeamKey string, data map[string]any, actualScorer string) error {
	encoded, err := encodeData(data)
	if err != nil {
		return fmt.Errorf("encode match data %q: %w", matchTeamKey, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE matchscouting SET data = ?, actual_scorer = ?
		WHERE org_key = ? AND match_team_key = ?
	`, encoded, actualScorer, orgKey, matchTeamKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("save match data %q: %w", matchTeamKey, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ClearUnscoutedAssignments(ctx context.Context, orgKey, eventKey string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE matchscouting SET assigned_scorer = ''
		WHERE org_key = ? AND event_key = ? AND assigned_scorer != ''
		  AND (data IS NULL OR data = '')
	`, orgKey, eventKey)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) UpdateAssignedScorers(ctx context.Context, orgKey, eventKey string, byMatchTeamKey map[string]string) error {
	stmt, err := s.db.PrepareContext(ctx, `
		UPDATE matchscouting SET assigned_scorer = ?
		WHERE org_key = ? AND event_key = ? AND match_team_key = ?
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for matchTeamKey, name := range byMatchTeamKey {
		if _, err := stmt.ExecContext(ctx, name, orgKey, eventKey, matchTeamKey); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) PitAssignments(ctx context.Context, orgKey, eventKey string) ([]model.PitAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_key, event_key, team_key, primary_name, secondary_name, tertiary_name, data
		FROM pitscouting
		WHERE org_key = ? AND event_key = ?
		ORDER BY team_key ASC
	`, orgKey, eventKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.PitAssignment
	for rows.Next() {
		var a model.PitAssignment
		var data sql.NullString
		if err := rows.Scan(&a.OrgKey, &a.EventKey, &a.TeamKey, &a.Primary, &a.Secondary, &a.Tertiary, &data); err != nil {
			return nil, err
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &a.Data); err != nil {
				return nil, fmt.Errorf("decode pit data %q: %w", a.TeamKey, err)
			}
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *SQLStore) ReplacePitAssignments(ctx context.Context, orgKey, eventKey string, assignments []model.PitAssignment) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pitscouting WHERE org_key = ? AND event_key = ?`, orgKey, eventKey); err != nil {
		return err
	}
	for _, a := range assignments {
		data, err := encodeData(a.Data)
		if err != nil {
			return fmt.Errorf("encode pit data %q: %w", a.TeamKey, err)
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO pitscouting (org_key, event_key, team_key, primary_name, secondary_name, tertiary_name, data)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.OrgKey, a.EventKey, a.TeamKey, a.Primary, a.Secondary, a.Tertiary, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) AggRanges(ctx context.Context, orgKey, eventKey string) ([]model.AggRange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_key, event_key, metric_key, min_min, min_max, avg_min, avg_max,
		       var_min, var_max, max_min, max_max
		FROM aggranges
		WHERE org_key = ? AND event_key = ?
		ORDER BY metric_key ASC
	`, orgKey, eventKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []model.AggRange
	for rows.Next() {
		var r model.AggRange
		if err := rows.Scan(&r.OrgKey, &r.EventKey, &r.Key, &r.MinMin, &r.MinMax, &r.AvgMin, &r.AvgMax,
			&r.VarMin, &r.VarMax, &r.MaxMin, &r.MaxMax); err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}

func (s *SQLStore) ReplaceAggRanges(ctx context.Context, orgKey, eventKey string, ranges []model.AggRange) error {
	// Delete and insert are two separate statements on purpose: readers
	// may observe the transient empty state, which existing deployments
	// tolerate.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM aggranges WHERE org_key = ? AND event_key = ?`, orgKey, eventKey); err != nil {
		return err
	}
	for _, r := range ranges {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO aggranges (org_key, event_key, metric_key, min_min, min_max, avg_min, avg_max,
			                       var_min, var_max, max_min, max_max)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.OrgKey, r.EventKey, r.Key, r.MinMin, r.MinMax, r.AvgMin, r.AvgMax,
			r.VarMin, r.VarMax, r.MaxMin, r.MaxMax); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Members(ctx context.Context, orgKey string) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_key, name, seniority, subteam_key, present, assigned
		FROM members
		WHERE org_key = ?
		ORDER BY name ASC
	`, orgKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.OrgKey, &m.Name, &m.Seniority, &m.SubteamKey, &m.Present, &m.Assigned); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLStore) UpsertMember(ctx context.Context, member model.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (org_key, name, seniority, subteam_key, present, assigned)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_key, name) DO UPDATE SET
			seniority = excluded.seniority,
			subteam_key = excluded.subteam_key,
			present = excluded.present,
			assigned = excluded.assigned
	`, member.OrgKey, member.Name, member.Seniority, member.SubteamKey, member.Present, member.Assigned)
	return err
}

func (s *SQLStore) SetMembersAssigned(ctx context.Context, orgKey string, names []string, assigned bool) error {
	stmt, err := s.db.PrepareContext(ctx, `UPDATE members SET assigned = ? WHERE org_key = ? AND name = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, assigned, orgKey, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) ScoutingPairs(ctx context.Context, orgKey string) ([]model.ScoutingPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_key, member1, member2, member3 FROM scoutingpairs
		WHERE org_key = ?
		ORDER BY id ASC
	`, orgKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []model.ScoutingPair
	for rows.Next() {
		var p model.ScoutingPair
		if err := rows.Scan(&p.OrgKey, &p.Member1, &p.Member2, &p.Member3); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (s *SQLStore) ReplaceScoutingPairs(ctx context.Context, orgKey string, pairs []model.ScoutingPair) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scoutingpairs WHERE org_key = ?`, orgKey); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO scoutingpairs (org_key, member1, member2, member3) VALUES (?, ?, ?, ?)
		`, orgKey, p.Member1, p.Member2, p.Member3); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Matches(ctx context.Context, eventKey string) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, event_key, comp_level, match_number, time, red_teams, blue_teams, winner, red_score, blue_score
		FROM matches
		WHERE event_key = ?
		ORDER BY time ASC, key ASC
	`, eventKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		var red, blue string
		if err := rows.Scan(&m.Key, &m.EventKey, &m.CompLevel, &m.MatchNumber, &m.Time, &red, &blue, &m.Winner, &m.RedScore, &m.BlueScore); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(red), &m.RedTeams); err != nil {
			return nil, fmt.Errorf("decode red teams %q: %w", m.Key, err)
		}
		if err := json.Unmarshal([]byte(blue), &m.BlueTeams); err != nil {
			return nil, fmt.Errorf("decode blue teams %q: %w", m.Key, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLStore) ReplaceMatches(ctx context.Context, eventKey string, matches []model.Match) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE event_key = ?`, eventKey); err != nil {
		return err
	}
	for _, m := range matches {
		red, err := json.Marshal(m.RedTeams)
		if err != nil {
			return err
		}
		blue, err := json.Marshal(m.BlueTeams)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO matches (key, event_key, comp_level, match_number, time, red_teams, blue_teams, winner, red_score, blue_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.Key, m.EventKey, m.CompLevel, m.MatchNumber, m.Time, string(red), string(blue), m.Winner, m.RedScore, m.BlueScore); err != nil {
			return err
		}
	}
	return nil
}

// encodeData marshals a submission map, storing NULL for "not yet scouted".
func encodeData(data map[string]any) (sql.NullString, error) {
	if len(data) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
