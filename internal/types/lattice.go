// Package types implements the portable SQL type lattice used by the
// catalog and the expression type resolver. It is deliberately narrow:
// one canonical enum plus a symmetric, reflexive compatibility relation,
// with Unknown acting as the top element absorbing literal NULLs and
// unresolved expressions so that a single bad subtree never cascades
// into a wall of type-mismatch diagnostics.
package types

import "fmt"

// Category is the coarse shape of a SqlType, used to drive the
// compatibility relation without a combinatorial switch over every
// concrete SqlType value.
type Category int

const (
	CategoryInteger Category = iota
	CategoryDecimal
	CategoryFloat
	CategoryBoolean
	CategoryText
	CategoryBytea
	CategoryDate
	CategoryTime
	CategoryTimestamp
	CategoryInterval
	CategoryUuid
	CategoryJson
	CategoryArray
	CategoryEnum
	CategoryUnknown
)

// SqlType is the canonical internal representation of a column or
// expression type. Only the fields relevant to Category are meaningful;
// the rest are zero.
type SqlType struct {
	Category Category

	// Integer
	IntWidth int // 8, 16, 32, 64

	// Decimal
	Precision     int
	Scale         int
	PrecisionKnown bool

	// Float
	FloatWidth int // 32, 64

	// Text
	Bounded bool

	// Timestamp
	WithTZ bool

	// Json
	Binary bool

	// Array
	Elem *SqlType

	// Enum
	EnumName string
}

// Unknown is the sentinel for literal NULL and any expression whose type
// could not be determined. It is compatible with everything.
var Unknown = SqlType{Category: CategoryUnknown}

// Boolean is the result type of comparisons and logical operators.
var Boolean = SqlType{Category: CategoryBoolean}

// Text constructs a (possibly bounded) string type.
func Text(bounded bool) SqlType { return SqlType{Category: CategoryText, Bounded: bounded} }

// Integer constructs an integer type of the given bit width.
func Integer(width int) SqlType { return SqlType{Category: CategoryInteger, IntWidth: width} }

// Decimal constructs a fixed-point type; pass precisionKnown=false for
// an unspecified-precision DECIMAL (the common case for literals and
// aggregate results).
func Decimal(precision, scale int, precisionKnown bool) SqlType {
	return SqlType{Category: CategoryDecimal, Precision: precision, Scale: scale, PrecisionKnown: precisionKnown}
}

// Float constructs a floating-point type of the given bit width.
func Float(width int) SqlType { return SqlType{Category: CategoryFloat, FloatWidth: width} }

// Bytea is a raw byte-string type (PostgreSQL's BYTEA, MySQL's BLOB family).
var Bytea = SqlType{Category: CategoryBytea}

// Date, Time, Interval, Uuid are simple nullary types.
var (
	Date     = SqlType{Category: CategoryDate}
	Time     = SqlType{Category: CategoryTime}
	Interval = SqlType{Category: CategoryInterval}
	Uuid     = SqlType{Category: CategoryUuid}
)

// Timestamp constructs a timestamp type, with or without a time zone.
func Timestamp(withTZ bool) SqlType { return SqlType{Category: CategoryTimestamp, WithTZ: withTZ} }

// Json constructs a JSON type; binary distinguishes PostgreSQL's JSONB
// from textual JSON.
func Json(binary bool) SqlType { return SqlType{Category: CategoryJson, Binary: binary} }

// Array constructs an array type over the given element type.
func Array(of SqlType) SqlType { return SqlType{Category: CategoryArray, Elem: &of} }

// Enum constructs a reference to a named enum type declared in the catalog.
func Enum(name string) SqlType { return SqlType{Category: CategoryEnum, EnumName: name} }

// IsUnknown reports whether t is the Unknown sentinel.
func (t SqlType) IsUnknown() bool { return t.Category == CategoryUnknown }

// IsNumeric reports whether t is an integer, decimal, or float.
func (t SqlType) IsNumeric() bool {
	switch t.Category {
	case CategoryInteger, CategoryDecimal, CategoryFloat:
		return true
	default:
		return false
	}
}

// String renders a human-readable type name for diagnostic messages.
func (t SqlType) String() string {
	switch t.Category {
	case CategoryInteger:
		if t.IntWidth == 0 {
			return "integer"
		}
		return fmt.Sprintf("int%d", t.IntWidth)
	case CategoryDecimal:
		if !t.PrecisionKnown {
			return "decimal"
		}
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case CategoryFloat:
		if t.FloatWidth == 0 {
			return "float"
		}
		return fmt.Sprintf("float%d", t.FloatWidth)
	case CategoryBoolean:
		return "boolean"
	case CategoryText:
		if t.Bounded {
			return "varchar"
		}
		return "text"
	case CategoryBytea:
		return "bytea"
	case CategoryDate:
		return "date"
	case CategoryTime:
		return "time"
	case CategoryTimestamp:
		if t.WithTZ {
			return "timestamptz"
		}
		return "timestamp"
	case CategoryInterval:
		return "interval"
	case CategoryUuid:
		return "uuid"
	case CategoryJson:
		if t.Binary {
			return "jsonb"
		}
		return "json"
	case CategoryArray:
		if t.Elem != nil {
			return t.Elem.String() + "[]"
		}
		return "array"
	case CategoryEnum:
		return "enum(" + t.EnumName + ")"
	default:
		return "unknown"
	}
}

// Compatible reports whether a and b may appear together in a
// comparison, arithmetic expression, JOIN key, or assignment without a
// type-mismatch diagnostic. The relation is symmetric and reflexive.
func Compatible(a, b SqlType) bool {
	if a.Category == CategoryUnknown || b.Category == CategoryUnknown {
		return true
	}
	if a.Category == b.Category {
		return compatibleSameCategory(a, b)
	}

	// Numeric widening: integers, decimals, and floats all mix freely.
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}

	// Enum <-> Text: an enum label is a string literal at the wire level.
	if a.Category == CategoryEnum && b.Category == CategoryText {
		return true
	}
	if b.Category == CategoryEnum && a.Category == CategoryText {
		return true
	}

	return false
}

func compatibleSameCategory(a, b SqlType) bool {
	switch a.Category {
	case CategoryArray:
		if a.Elem == nil || b.Elem == nil {
			return true
		}
		return Compatible(*a.Elem, *b.Elem)
	case CategoryEnum:
		return a.EnumName == b.EnumName
	default:
		return true
	}
}

// Meet returns the narrowest common supertype of a and b under
// Compatible, falling back to Unknown when no such type exists (the
// lattice meet described in spec.md's glossary). It is used to unify
// set-operation branches, CASE branches, and arithmetic operands.
func Meet(a, b SqlType) SqlType {
	if a.IsUnknown() {
		return b
	}
	if b.IsUnknown() {
		return a
	}
	if !Compatible(a, b) {
		return Unknown
	}
	if a.Category == b.Category {
		return meetSameCategory(a, b)
	}
	// Cross-category numeric widening: prefer the "wider" kind of number.
	if a.IsNumeric() && b.IsNumeric() {
		return meetNumeric(a, b)
	}
	if a.Category == CategoryEnum && b.Category == CategoryText {
		return b
	}
	if b.Category == CategoryEnum && a.Category == CategoryText {
		return a
	}
	return a
}

func meetSameCategory(a, b SqlType) SqlType {
	switch a.Category {
	case CategoryInteger:
		if b.IntWidth > a.IntWidth {
			return b
		}
		return a
	case CategoryFloat:
		if b.FloatWidth > a.FloatWidth {
			return b
		}
		return a
	case CategoryText:
		if a.Bounded && !b.Bounded {
			return b
		}
		return a
	case CategoryTimestamp:
		if a.WithTZ || b.WithTZ {
			return Timestamp(true)
		}
		return a
	case CategoryArray:
		if a.Elem == nil || b.Elem == nil {
			return a
		}
		inner := Meet(*a.Elem, *b.Elem)
		return Array(inner)
	default:
		return a
	}
}

func meetNumeric(a, b SqlType) SqlType {
	rank := func(t SqlType) int {
		switch t.Category {
		case CategoryInteger:
			return 0
		case CategoryDecimal:
			return 1
		case CategoryFloat:
			return 2
		}
		return -1
	}
	if rank(b) > rank(a) {
		return b
	}
	if rank(b) < rank(a) {
		return a
	}
	return meetSameCategory(a, b)
}
