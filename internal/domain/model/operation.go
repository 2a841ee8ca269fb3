package model

// ElementType is the fixed vocabulary of scouting form field types.
type ElementType string

// Element types. Counter-style types collect integers, derived elements are
// computed from an operation pipeline, and the h2/h3/spacer types are pure
// layout with no submitted value.
const (
	ElementCheckbox             ElementType = "checkbox"
	ElementCounter              ElementType = "counter"
	ElementCounterAllowNegative ElementType = "counterallownegative"
	ElementBadCounter           ElementType = "badcounter"
	ElementSlider               ElementType = "slider"
	ElementTimeSlider           ElementType = "timeslider"
	ElementDerived              ElementType = "derived"
	ElementMultiselect          ElementType = "multiselect"
	ElementTextBlock            ElementType = "textblock"
	ElementSpacer               ElementType = "spacer"
	ElementHeader2              ElementType = "h2"
	ElementHeader3              ElementType = "h3"
)

// Operator identifies one derived-metric operation kind.
type Operator string

// Operators. The comparison operators produce numeric 1 or 0, never a
// boolean, so their results can feed further arithmetic.
const (
	OpSum         Operator = "sum"
	OpAdd         Operator = "add" // alias of sum
	OpSubtract    Operator = "subtract"
	OpMultiply    Operator = "multiply"
	OpDivide      Operator = "divide"
	OpMin         Operator = "min"
	OpMax         Operator = "max"
	OpLog         Operator = "log"
	OpAbs         Operator = "abs"
	OpMultiselect Operator = "multiselect"
	OpCondition   Operator = "condition"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
)

// VariablePrefix is the sentinel that marks a string operand as a reference
// to a pipeline-local variable rather than a raw data field key.
const VariablePrefix = "$"

// Operation is one step of a derived-metric pipeline.
//
// Operands hold literal numbers (float64), variable references (strings
// starting with VariablePrefix), raw-data field keys (any other string), or
// explicit nulls (nil, condition branches only), matching the loose typing
// the stored JSON documents carry.
type Operation struct {
	Operator Operator `json:"operator"`
	Operands []any    `json:"operands"`

	// As names the pipeline variable receiving this operation's result.
	// The terminal operation of a pipeline leaves As empty and its result
	// becomes the derived element's value.
	As string `json:"as,omitempty"`

	// Quantifiers maps a multiselect option string to its numeric value;
	// only set when Operator is OpMultiselect.
	Quantifiers map[string]float64 `json:"quantifiers,omitempty"`
}

// Terminal reports whether this operation produces the pipeline's final
// value rather than assigning to a variable.
func (o Operation) Terminal() bool {
	return o.As == ""
}
