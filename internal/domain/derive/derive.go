// Package derive implements the derived-metric operation pipeline
// interpreter.
//
// A derived layout element carries an ordered list of operations. Each
// operation either assigns its result to a pipeline-local variable ("as")
// or, for the single terminal operation, produces the element's value. The
// interpreter is deliberately forgiving about per-record data: missing or
// unparsable fields flow through as NaN rather than aborting, so one bad
// submission never stops a batch recalculation.
package derive

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openscout/scoutcore/internal/domain/model"
)

// Augment runs every derived element's pipeline against data, writing each
// result into data under the element's id. The map is mutated in place and
// returned; callers rely on the in-place contract. Elements must already be
// in layout order so later elements can read earlier results as raw fields.
func Augment(elements []model.LayoutElement, data map[string]any) map[string]any {
	for _, el := range elements {
		if el.Type != model.ElementDerived {
			continue
		}
		data[el.ID] = EvaluateElement(el, data)
	}
	return data
}

// EvaluateElement executes one derived element's pipeline against a single
// match's raw data and returns the terminal value: a float64 (possibly NaN)
// or nil when the terminal condition picked an explicit null.
//
// The variable scope is fresh per element; an element can reference its own
// earlier variables or raw data fields, never another element's variables.
func EvaluateElement(el model.LayoutElement, data map[string]any) any {
	ev := evaluator{data: data, vars: make(map[string]float64)}

	// If the pipeline is misconfigured and never reaches a terminal
	// operation, the initial NaN is what gets stored. Validating layouts
	// is a config-time concern, not ours.
	var final any = math.NaN()
	for _, op := range el.Operations {
		v := ev.apply(op)
		if op.Terminal() {
			final = v
			continue
		}
		// Intermediate null collapses to 0 so the variable scope only
		// ever holds numbers.
		ev.vars[op.As] = collapse(v)
	}
	return final
}

type evaluator struct {
	data map[string]any
	vars map[string]float64
}

func (e *evaluator) apply(op model.Operation) any {
	switch op.Operator {
	case model.OpSum, model.OpAdd:
		total := 0.0
		for _, o := range op.Operands {
			total += e.number(o)
		}
		return total
	case model.OpMultiply:
		product := 1.0
		for _, o := range op.Operands {
			product *= e.number(o)
		}
		return product
	case model.OpSubtract:
		return e.operand(op, 0) - e.operand(op, 1)
	case model.OpDivide:
		divisor := e.operand(op, 1)
		// Ratio metrics degrade to "no contribution" instead of
		// poisoning downstream averages.
		if divisor == 0 {
			return 0.0
		}
		return e.operand(op, 0) / divisor
	case model.OpMin:
		return math.Min(e.operand(op, 0), e.operand(op, 1))
	case model.OpMax:
		return math.Max(e.operand(op, 0), e.operand(op, 1))
	case model.OpLog:
		return math.Log(e.operand(op, 0)) / math.Log(e.operand(op, 1))
	case model.OpAbs:
		return math.Abs(e.operand(op, 0))
	case model.OpMultiselect:
		return e.multiselect(op)
	case model.OpCondition:
		return e.condition(op)
	case model.OpGt:
		return compare(e.operand(op, 0) > e.operand(op, 1))
	case model.OpGte:
		return compare(e.operand(op, 0) >= e.operand(op, 1))
	case model.OpLt:
		return compare(e.operand(op, 0) < e.operand(op, 1))
	case model.OpLte:
		return compare(e.operand(op, 0) <= e.operand(op, 1))
	case model.OpEq:
		return compare(e.operand(op, 0) == e.operand(op, 1))
	case model.OpNe:
		return compare(e.operand(op, 0) != e.operand(op, 1))
	default:
		return math.NaN()
	}
}

// multiselect maps the raw selected option string through the operation's
// quantifier table. An unknown or missing selection yields NaN.
func (e *evaluator) multiselect(op model.Operation) any {
	if len(op.Operands) == 0 {
		return math.NaN()
	}
	key, ok := op.Operands[0].(string)
	if !ok {
		return math.NaN()
	}
	raw, ok := e.data[key]
	if !ok {
		return math.NaN()
	}
	selected, ok := raw.(string)
	if !ok {
		selected = fmt.Sprint(raw)
	}
	if q, ok := op.Quantifiers[selected]; ok {
		return q
	}
	return math.NaN()
}

// condition evaluates operand 0 under boolean coercion and returns the
// then-branch (operand 1) or else-branch (operand 2). Branches resolve to a
// number or an explicit null.
func (e *evaluator) condition(op model.Operation) any {
	if len(op.Operands) < 3 {
		return math.NaN()
	}
	if truthy(e.raw(op.Operands[0])) {
		return e.branch(op.Operands[1])
	}
	return e.branch(op.Operands[2])
}

// operand resolves op.Operands[i] under numeric coercion; a missing operand
// is NaN.
func (e *evaluator) operand(op model.Operation, i int) float64 {
	if i >= len(op.Operands) {
		return math.NaN()
	}
	return e.number(op.Operands[i])
}

// number resolves one operand to a float64: literals as-is, $-prefixed
// strings from the variable scope (absence is a layout bug and surfaces as
// NaN arithmetic, not a crash), and any other string as a raw data field
// under the numeric coercion rule.
func (e *evaluator) number(operand any) float64 {
	switch v := operand.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if name, isVar := strings.CutPrefix(v, model.VariablePrefix); isVar {
			if val, ok := e.vars[name]; ok {
				return val
			}
			return math.NaN()
		}
		return coerceNumber(e.data[v])
	default:
		return math.NaN()
	}
}

// branch resolves a condition then/else operand, preserving explicit null.
func (e *evaluator) branch(operand any) any {
	if operand == nil {
		return nil
	}
	return e.number(operand)
}

// raw resolves an operand without numeric coercion, for boolean tests:
// variables resolve from scope, other strings read the raw field value (a
// missing field reads as nil).
func (e *evaluator) raw(operand any) any {
	switch v := operand.(type) {
	case string:
		if name, isVar := strings.CutPrefix(v, model.VariablePrefix); isVar {
			if val, ok := e.vars[name]; ok {
				return val
			}
			return nil
		}
		return e.data[v]
	default:
		return operand
	}
}

// coerceNumber applies the field-key numeric coercion rule: booleans (and
// the literal strings "true"/"false") map to 1/0, everything else parses as
// a float with NaN on failure.
func coerceNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		switch x {
		case "true":
			return 1
		case "false":
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// truthy applies the boolean coercion rule used only by condition's first
// operand: the literal string "false" is false, any other non-empty string
// is true, including "0". That asymmetry with coerceNumber is load-bearing
// for existing derived-metric configs; do not reconcile the two.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		if x == "false" {
			return false
		}
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	default:
		return true
	}
}

// collapse turns an intermediate result into the number stored in the
// variable scope; explicit null becomes 0.
func collapse(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	default:
		return math.NaN()
	}
}

func compare(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
