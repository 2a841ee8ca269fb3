// Package layout classifies scouting form field types and normalizes raw
// submitted values.
//
// All functions here are pure and total: any input yields a value, never an
// error, so a single malformed submission cannot abort a batch computation.
package layout

import (
	"strconv"
	"strings"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// NoAnswer is the sentinel stored when a counter-style field was not
// answered or could not be parsed. It is distinct from a real zero.
const NoAnswer = -1

// IsQuantifiable reports whether a field type carries a numeric value that
// the aggregation engine can fold into per-team statistics. Unknown types
// are not quantifiable, so a new form element never pollutes statistics by
// default.
func IsQuantifiable(t model.ElementType) bool {
	switch t {
	case model.ElementCheckbox,
		model.ElementCounter,
		model.ElementCounterAllowNegative,
		model.ElementBadCounter,
		model.ElementDerived,
		model.ElementSlider,
		model.ElementTimeSlider:
		return true
	default:
		return false
	}
}

// IsMetric reports whether a field type holds any submitted value at all,
// i.e. anything that is not a pure layout element. Unknown types ARE
// metrics here, the opposite default from IsQuantifiable, because export
// columns should include a new element even before statistics know how to
// aggregate it. Callers depend on this asymmetry.
func IsMetric(t model.ElementType) bool {
	switch t {
	case model.ElementSpacer, model.ElementHeader2, model.ElementHeader3:
		return false
	default:
		return true
	}
}

// FixDatumType normalizes one raw submitted value according to its declared
// element type.
//
// Checkboxes become 1 or 0. Counter-style types parse to an integer, or the
// NoAnswer sentinel when absent or unparsable. Every other type passes
// through as a string.
func FixDatumType(value any, t model.ElementType) any {
	switch t {
	case model.ElementCheckbox:
		if truthyCheckbox(value) {
			return 1
		}
		return 0
	case model.ElementCounter,
		model.ElementCounterAllowNegative,
		model.ElementBadCounter,
		model.ElementSlider,
		model.ElementTimeSlider:
		return parseCounter(value)
	default:
		return asString(value)
	}
}

func truthyCheckbox(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

func parseCounter(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return NoAnswer
		}
		return n
	default:
		return NoAnswer
	}
}

func asString(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return value
	}
}
