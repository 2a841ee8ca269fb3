// Package model contains the scouting document shapes passed between layers.
//
// Field names and JSON tags mirror the stored document format so that data
// written by earlier deployments round-trips unchanged.
package model

// FormType distinguishes the two scouting form families.
type FormType string

// Known form types.
const (
	FormMatchScouting FormType = "matchscouting"
	FormPitScouting   FormType = "pitscouting"
)

// Alliance colors as they appear on match documents.
const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// LayoutElement describes one field of a scouting form.
type LayoutElement struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Label    string      `json:"label,omitempty"`
	Order    int         `json:"order"`
	OrgKey   string      `json:"org_key"`
	Year     int         `json:"year"`
	FormType FormType    `json:"form_type"`

	// Options lists the selectable values of a multiselect element.
	Options []string `json:"options,omitempty"`

	// Operations is the derived-metric pipeline; only set when Type is
	// ElementDerived. The final operation has no As and produces the
	// element's value.
	Operations []Operation `json:"operations,omitempty"`
}

// MatchScoutingEntry is one team's scouting record for one match.
type MatchScoutingEntry struct {
	OrgKey      string `json:"org_key"`
	Year        int    `json:"year"`
	EventKey    string `json:"event_key"`
	MatchKey    string `json:"match_key"`
	MatchNumber int    `json:"match_number"`

	// Time is the scheduled match time in epoch seconds; it orders a
	// team's matches chronologically for the EMA and the block allocator.
	Time int64 `json:"time"`

	Alliance     string `json:"alliance"`
	TeamKey      string `json:"team_key"`
	MatchTeamKey string `json:"match_team_key"`

	// AssignedScorer and ActualScorer are scout names; empty means none.
	AssignedScorer string `json:"assigned_scorer,omitempty"`
	ActualScorer   string `json:"actual_scorer,omitempty"`

	// Data maps field id to raw submitted value. A nil map means the
	// match has not been scouted yet.
	Data map[string]any `json:"data,omitempty"`
}

// Scouted reports whether a submission has been recorded for this entry.
func (e *MatchScoutingEntry) Scouted() bool {
	return len(e.Data) > 0
}

// PitAssignment records which scouts cover one team's pit scouting.
// Primary is always set; Secondary and Tertiary may be empty for pairs of
// fewer than three members.
type PitAssignment struct {
	OrgKey    string         `json:"org_key"`
	EventKey  string         `json:"event_key"`
	TeamKey   string         `json:"team_key"`
	Primary   string         `json:"primary"`
	Secondary string         `json:"secondary,omitempty"`
	Tertiary  string         `json:"tertiary,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// AggRange holds, for one metric at one event, the extrema across all teams
// of each team's own MIN/AVG/VAR/MAX. The JSON tags preserve the historical
// capitalization of the stored documents.
type AggRange struct {
	OrgKey   string  `json:"org_key"`
	EventKey string  `json:"event_key"`
	Key      string  `json:"key"`
	MinMin   float64 `json:"MINmin"`
	MinMax   float64 `json:"MINmax"`
	AvgMin   float64 `json:"AVGmin"`
	AvgMax   float64 `json:"AVGmax"`
	VarMin   float64 `json:"VARmin"`
	VarMax   float64 `json:"VARmax"`
	MaxMin   float64 `json:"MAXmin"`
	MaxMax   float64 `json:"MAXmax"`
}

// Member is one scout on an organization's roster.
type Member struct {
	OrgKey string `json:"org_key"`
	Name   string `json:"name"`

	// Seniority is a sortable numeric-with-subcode string ("2.1" sorts
	// before "10"); lower values are more senior.
	Seniority  string `json:"seniority"`
	SubteamKey string `json:"subteam_key"`

	// Present marks the member as at the event; Assigned marks them as
	// currently committed by the allocator.
	Present  bool `json:"present"`
	Assigned bool `json:"assigned"`
}

// ScoutingPair groups one to three member names for pit scouting.
type ScoutingPair struct {
	OrgKey  string `json:"org_key"`
	Member1 string `json:"member1"`
	Member2 string `json:"member2,omitempty"`
	Member3 string `json:"member3,omitempty"`
}

// Members returns the pair's non-empty member names in order.
func (p ScoutingPair) Members() []string {
	names := make([]string, 0, 3)
	for _, n := range []string{p.Member1, p.Member2, p.Member3} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Match is one row of the event schedule.
type Match struct {
	Key         string   `json:"key"`
	EventKey    string   `json:"event_key"`
	CompLevel   string   `json:"comp_level"`
	MatchNumber int      `json:"match_number"`
	Time        int64    `json:"time"`
	RedTeams    []string `json:"red_teams"`
	BlueTeams   []string `json:"blue_teams"`
	Winner      string   `json:"winner,omitempty"`
	RedScore    int      `json:"red_score"`
	BlueScore   int      `json:"blue_score"`
}

// AllianceTeams returns the match's team keys for one alliance color.
func (m Match) AllianceTeams(alliance string) []string {
	if alliance == AllianceRed {
		return m.RedTeams
	}
	return m.BlueTeams
}
