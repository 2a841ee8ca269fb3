// Package stats computes per-team statistics over scouted matches and folds
// them into event-wide aggregate ranges.
//
// The average is an exponential moving average over the team's matches in
// chronological order, so late-event performance outweighs early matches.
// The "Var" figure is the sample standard deviation; the name is historical
// and preserved on the wire.
package stats

import (
	"math"
	"sort"
	"strconv"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// Aggregate range accumulator bounds. When a field has no observations at
// all these survive into the stored document; downstream readers treat an
// untouched pair as "no data".
const (
	initMin = 999999
	initMax = 0
)

// DefaultAlpha is the EMA smoothing factor used when none is configured.
const DefaultAlpha = 0.3

// TeamStat holds one team's figures for one metric, each already rounded to
// one decimal place.
type TeamStat struct {
	TeamKey string
	Key     string
	Min     float64
	Avg     float64
	Var     float64
	Max     float64
}

// EMA returns the exponential moving average of values in order, seeded
// with the first value. alpha is the weight of each newer value; values
// must be non-empty.
func EMA(values []float64, alpha float64) float64 {
	ema := values[0]
	for _, v := range values[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema
}

// TeamStats computes per-team MIN/AVG/VAR/MAX for each named field across
// the given scouting entries. Entries without submitted data are skipped,
// as are values that do not read as numbers, so partially scouted events
// still produce statistics for the matches that were covered.
//
// Each figure is rounded to one decimal before it is returned. Ranges
// computes event extrema from these rounded figures, not the raw ones; the
// order of rounding is part of the stored-document contract.
func TeamStats(entries []model.MatchScoutingEntry, fields []string, alpha float64) []TeamStat {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}

	byTeam := make(map[string][]model.MatchScoutingEntry)
	teamOrder := make([]string, 0)
	for _, e := range entries {
		if !e.Scouted() {
			continue
		}
		if _, seen := byTeam[e.TeamKey]; !seen {
			teamOrder = append(teamOrder, e.TeamKey)
		}
		byTeam[e.TeamKey] = append(byTeam[e.TeamKey], e)
	}
	sort.Strings(teamOrder)

	var out []TeamStat
	for _, team := range teamOrder {
		matches := byTeam[team]
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Time < matches[j].Time })

		for _, field := range fields {
			values := make([]float64, 0, len(matches))
			for _, m := range matches {
				if v, ok := numeric(m.Data[field]); ok {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				continue
			}
			out = append(out, TeamStat{
				TeamKey: team,
				Key:     field,
				Min:     round1(minOf(values)),
				Avg:     round1(EMA(values, alpha)),
				Var:     round1(stdDevSamp(values)),
				Max:     round1(maxOf(values)),
			})
		}
	}
	return out
}

// Ranges folds per-team stats into one AggRange per metric: the min and max
// across teams of each team's own MIN/AVG/VAR/MAX. Output is ordered by the
// fields slice so recomputation is deterministic.
func Ranges(orgKey, eventKey string, fields []string, teamStats []TeamStat) []model.AggRange {
	ranges := make([]model.AggRange, 0, len(fields))
	for _, field := range fields {
		r := model.AggRange{
			OrgKey: orgKey, EventKey: eventKey, Key: field,
			MinMin: initMin, MinMax: initMax,
			AvgMin: initMin, AvgMax: initMax,
			VarMin: initMin, VarMax: initMax,
			MaxMin: initMin, MaxMax: initMax,
		}
		for _, ts := range teamStats {
			if ts.Key != field {
				continue
			}
			r.MinMin = math.Min(r.MinMin, ts.Min)
			r.MinMax = math.Max(r.MinMax, ts.Min)
			r.AvgMin = math.Min(r.AvgMin, ts.Avg)
			r.AvgMax = math.Max(r.AvgMax, ts.Avg)
			r.VarMin = math.Min(r.VarMin, ts.Var)
			r.VarMax = math.Max(r.VarMax, ts.Var)
			r.MaxMin = math.Min(r.MaxMin, ts.Max)
			r.MaxMax = math.Max(r.MaxMax, ts.Max)
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// stdDevSamp is the sample standard deviation; fewer than two observations
// yield 0.
func stdDevSamp(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}

// numeric reads a raw stored value as a float64. Booleans count as 1/0 to
// match how checkbox submissions were historically stored; NaN and
// non-numeric strings are excluded from statistics.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
